package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scrumkit/planning-poker/internal/models"
)

type createRoomRequest struct {
	Name        string `json:"name"`
	PlayerName  string `json:"playerName"`
	IsSpectator bool   `json:"isSpectator"`
}

type joinRoomRequest struct {
	PlayerName  string `json:"playerName"`
	IsSpectator bool   `json:"isSpectator"`
}

type setPointsRequest struct {
	Points *models.PointValue `json:"points"`
}

type leaveRoomRequest struct {
	PlayerID string `json:"playerId"`
}

// GetDeck returns the numeric card values the server accepts, so clients
// render the same deck the session validates against.
func (h *Handler) GetDeck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"deck": h.api.Deck()})
}

// CreateRoom creates a room with the caller as its creator.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	room, creator, err := h.api.CreateRoom(req.Name, req.PlayerName, req.IsSpectator)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.setPlayerCookie(c, creator.ID)
	c.JSON(http.StatusCreated, gin.H{"room": room, "player": creator})
}

// GetRoom returns the room snapshot.
func (h *Handler) GetRoom(c *gin.Context) {
	room, err := h.api.GetRoom(c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// GetRoomPlayers returns the room's players in join order.
func (h *Handler) GetRoomPlayers(c *gin.Context) {
	players, err := h.api.GetRoomPlayers(c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

// JoinRoom adds the caller to an existing room.
func (h *Handler) JoinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	room, player, err := h.api.JoinRoom(c.Param("id"), req.PlayerName, req.IsSpectator)
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.setPlayerCookie(c, player.ID)
	c.JSON(http.StatusOK, gin.H{"room": room, "player": player})
}

// SetPoints records the player's pick for this round.
func (h *Handler) SetPoints(c *gin.Context) {
	var req setPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Points == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "points is required", "field": "points"})
		return
	}

	if err := h.api.SetPoints(c.Param("id"), *req.Points); err != nil {
		h.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reveal turns the room's cards face up.
func (h *Handler) Reveal(c *gin.Context) {
	if err := h.api.Reveal(c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reset starts a new round.
func (h *Handler) Reset(c *gin.Context) {
	if err := h.api.Reset(c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Summary returns the vote summary for the room.
func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.api.Summary(c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// LeaveRoom removes a player from the room. The player id comes from the
// request body when present, otherwise from the session cookie. Always
// responds 204: leaving is idempotent and duplicate teardown is expected.
func (h *Handler) LeaveRoom(c *gin.Context) {
	var req leaveRoomRequest
	_ = c.ShouldBindJSON(&req)
	playerID := req.PlayerID
	if playerID == "" {
		playerID = currentPlayerID(c)
	}

	h.api.LeaveRoom(playerID, c.Param("id"))
	c.Status(http.StatusNoContent)
}

// DeleteRoom deletes the room. Only the creator may do so.
func (h *Handler) DeleteRoom(c *gin.Context) {
	requesterID := currentPlayerID(c)
	if requesterID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	if err := h.api.DeleteRoom(c.Param("id"), requesterID); err != nil {
		h.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
