package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/scrumkit/planning-poker/internal/models"
	"github.com/scrumkit/planning-poker/internal/scoring"
	"github.com/scrumkit/planning-poker/internal/store"
)

// ErrNotRoomCreator is returned when someone other than the room's creator
// tries to delete it.
var ErrNotRoomCreator = errors.New("only the room creator can delete the room")

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// API is the thin session facade the transport layer calls. It validates
// input against the configured deck and delegates every mutation to the
// store; it holds no state of its own beyond configuration.
type API struct {
	store *store.RoomStore
	deck  []int
	log   *logrus.Entry
}

// New builds the session API. deck is the allowed set of numeric card values;
// it is configuration, not a store invariant.
func New(st *store.RoomStore, deck []int) *API {
	return &API{
		store: st,
		deck:  deck,
		log:   logrus.WithField("component", "session"),
	}
}

// Deck returns the allowed numeric card values.
func (a *API) Deck() []int {
	return slices.Clone(a.deck)
}

// CreateRoom creates a room and its creator player.
func (a *API) CreateRoom(roomName, creatorName string, isSpectator bool) (models.Room, models.Player, error) {
	roomName = strings.TrimSpace(roomName)
	creatorName = strings.TrimSpace(creatorName)
	if roomName == "" {
		return models.Room{}, models.Player{}, &ValidationError{Field: "name", Message: "room name is required"}
	}
	if creatorName == "" {
		return models.Room{}, models.Player{}, &ValidationError{Field: "playerName", Message: "player name is required"}
	}

	room, creator := a.store.CreateRoom(roomName, creatorName, isSpectator)
	a.log.WithFields(logrus.Fields{"room_id": room.ID, "player_id": creator.ID}).Info("room created")
	return room, creator, nil
}

// JoinRoom adds a player to an existing room.
func (a *API) JoinRoom(roomID, playerName string, isSpectator bool) (models.Room, models.Player, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return models.Room{}, models.Player{}, &ValidationError{Field: "playerName", Message: "player name is required"}
	}

	room, player, err := a.store.JoinRoom(roomID, playerName, isSpectator)
	if err != nil {
		return models.Room{}, models.Player{}, err
	}
	a.log.WithFields(logrus.Fields{"room_id": roomID, "player_id": player.ID}).Info("player joined")
	return room, player, nil
}

// SetPoints validates the pick against the deck and records it. The "?" card
// is always allowed. A pick for a player that no longer exists is silently
// dropped by the store.
func (a *API) SetPoints(playerID string, points models.PointValue) error {
	if !points.Unknown && !slices.Contains(a.deck, points.Value) {
		return &ValidationError{Field: "points", Message: fmt.Sprintf("%d is not in the deck", points.Value)}
	}
	a.store.SetPoints(playerID, points)
	return nil
}

// Reveal turns the room's cards face up.
func (a *API) Reveal(roomID string) error {
	return a.store.Reveal(roomID)
}

// Reset starts a new round in the room.
func (a *API) Reset(roomID string) error {
	return a.store.Reset(roomID)
}

// GetRoom returns a snapshot of the room.
func (a *API) GetRoom(roomID string) (models.Room, error) {
	return a.store.GetRoom(roomID)
}

// GetRoomPlayers returns the room's players in join order.
func (a *API) GetRoomPlayers(roomID string) ([]models.Player, error) {
	return a.store.GetRoomPlayers(roomID)
}

// Summary computes the vote summary over the room's current players.
func (a *API) Summary(roomID string) (scoring.Summary, error) {
	players, err := a.store.GetRoomPlayers(roomID)
	if err != nil {
		return scoring.Summary{}, err
	}
	return scoring.Summarize(players), nil
}

// LeaveRoom removes the player from the room. Safe to call repeatedly; stale
// teardown signals are expected.
func (a *API) LeaveRoom(playerID, roomID string) {
	a.store.LeaveRoom(playerID, roomID)
}

// DeleteRoom removes the room. Only its creator may do so.
func (a *API) DeleteRoom(roomID, requesterID string) error {
	room, err := a.store.GetRoom(roomID)
	if err != nil {
		return err
	}
	players, err := a.store.GetRoomPlayers(roomID)
	if err != nil {
		return err
	}
	allowed := false
	for _, p := range players {
		if p.ID == requesterID && p.Role == models.RoleCreator {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrNotRoomCreator
	}

	a.store.DeleteRoom(room.ID)
	a.log.WithField("room_id", roomID).Info("room deleted")
	return nil
}
