package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/scrumkit/planning-poker/internal/bus"
	"github.com/scrumkit/planning-poker/internal/session"
	"github.com/scrumkit/planning-poker/internal/store"
)

// playerCookie identifies the current player for a browser connection. How
// the cookie is produced is the session layer's concern; handlers only read
// and set it.
const playerCookie = "player_id"

// Handler wires the session API and the event bus to the HTTP surface.
type Handler struct {
	api     *session.API
	bus     *bus.Bus
	baseURL string
	log     *logrus.Entry
}

func New(api *session.API, b *bus.Bus, baseURL string) *Handler {
	return &Handler{
		api:     api,
		bus:     b,
		baseURL: baseURL,
		log:     logrus.WithField("component", "http"),
	}
}

// Register mounts all routes on the router.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/deck", h.GetDeck)
	r.POST("/rooms", h.CreateRoom)
	r.GET("/rooms/:id", h.GetRoom)
	r.DELETE("/rooms/:id", h.DeleteRoom)
	r.GET("/rooms/:id/players", h.GetRoomPlayers)
	r.POST("/rooms/:id/join", h.JoinRoom)
	r.POST("/rooms/:id/leave", h.LeaveRoom)
	r.POST("/rooms/:id/reveal", h.Reveal)
	r.POST("/rooms/:id/reset", h.Reset)
	r.GET("/rooms/:id/summary", h.Summary)
	r.GET("/rooms/:id/events", h.StreamEvents)
	r.GET("/rooms/:id/socket", h.Socket)
	r.GET("/rooms/:id/qr.png", h.JoinQR)
	r.POST("/players/:id/points", h.SetPoints)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	var verr *session.ValidationError
	switch {
	case errors.Is(err, store.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, session.ErrNotRoomCreator):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.log.WithError(err).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) setPlayerCookie(c *gin.Context, playerID string) {
	c.SetCookie(playerCookie, playerID, 0, "/", "", false, true)
}

// currentPlayerID reads the player cookie; empty when absent.
func currentPlayerID(c *gin.Context) string {
	id, err := c.Cookie(playerCookie)
	if err != nil {
		return ""
	}
	return id
}
