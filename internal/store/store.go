package store

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/scrumkit/planning-poker/internal/bus"
	"github.com/scrumkit/planning-poker/internal/models"
)

// ErrRoomNotFound is returned for operations against a room id that does not
// exist (or no longer exists).
var ErrRoomNotFound = errors.New("room not found")

// RoomStore owns the canonical room and player records. Every mutation goes
// through it; nothing else ever touches the tables. A single mutex serializes
// all mutations, and domain events are published to the bus while the lock is
// held, so any one subscriber observes events for a given room in mutation
// order.
type RoomStore struct {
	mu      sync.Mutex
	bus     *bus.Bus
	rooms   map[string]*models.Room
	players map[string]*models.Player

	// Monotonic counters, incremented under mu so the value a subscriber
	// sees is consistent with the payload it accompanies. Used by clients
	// only for duplicate detection.
	seq    uint64
	resets uint64
}

func New(b *bus.Bus) *RoomStore {
	return &RoomStore{
		bus:     b,
		rooms:   make(map[string]*models.Room),
		players: make(map[string]*models.Player),
	}
}

// CreateRoom creates a room together with its creator player and returns
// snapshots of both. No event is published: nobody can be subscribed to a
// room that did not exist yet.
func (s *RoomStore) CreateRoom(name, creatorName string, isSpectator bool) (models.Room, models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := s.newRoomID()
	playerID := s.newPlayerID()

	player := &models.Player{
		ID:          playerID,
		RoomID:      roomID,
		Name:        creatorName,
		Role:        models.RoleCreator,
		IsSpectator: isSpectator,
	}
	room := &models.Room{
		ID:        roomID,
		Name:      name,
		PlayerIDs: []string{playerID},
	}
	s.rooms[roomID] = room
	s.players[playerID] = player

	return copyRoom(room), copyPlayer(player)
}

// GetRoom returns a snapshot of the room.
func (s *RoomStore) GetRoom(id string) (models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return models.Room{}, ErrRoomNotFound
	}
	return copyRoom(room), nil
}

// GetRoomPlayers returns snapshots of the room's players in join order.
func (s *RoomStore) GetRoomPlayers(roomID string) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return s.roomPlayersLocked(room), nil
}

// JoinRoom adds a new player to an existing room and publishes PlayerJoined.
func (s *RoomStore) JoinRoom(roomID, playerName string, isSpectator bool) (models.Room, models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return models.Room{}, models.Player{}, ErrRoomNotFound
	}

	player := &models.Player{
		ID:          s.newPlayerID(),
		RoomID:      roomID,
		Name:        playerName,
		Role:        models.RolePlayer,
		IsSpectator: isSpectator,
	}
	s.players[player.ID] = player
	room.PlayerIDs = append(room.PlayerIDs, player.ID)

	s.bus.Publish(models.EventPlayerJoined, models.PlayerJoined{
		RoomID: roomID,
		Player: copyPlayer(player),
	})
	return copyRoom(room), copyPlayer(player), nil
}

// SetPoints records a player's pick and publishes PointsChosen. A stale call
// against a player that no longer exists is a silent no-op: late requests
// racing with teardown must never crash the room, and must not publish.
func (s *RoomStore) SetPoints(playerID string, points models.PointValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[playerID]
	if !ok {
		return
	}
	// Room deletion is terminal: an orphaned player must not produce events
	// for the dead room id.
	if _, ok := s.rooms[player.RoomID]; !ok {
		return
	}
	pv := points
	player.Points = &pv
	s.seq++

	s.bus.Publish(models.EventPointsChosen, models.PointsChosen{
		RoomID:         player.RoomID,
		PlayerID:       playerID,
		Points:         points,
		SequenceNumber: s.seq,
	})
}

// Reveal turns the room's cards face up and publishes CardsRevealed.
// Revealing an already-revealed room is legal and re-publishes the event;
// clients must tolerate duplicate reveal notifications.
func (s *RoomStore) Reveal(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.Revealed = true

	s.bus.Publish(models.EventCardsRevealed, models.CardsRevealed{RoomID: roomID})
	return nil
}

// Reset hides the cards, clears every remaining player's points and publishes
// RoomReset with the post-reset snapshot. Players already removed from the
// room are skipped, never resurrected.
func (s *RoomStore) Reset(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.Revealed = false
	for _, id := range room.PlayerIDs {
		if player, ok := s.players[id]; ok {
			player.Points = nil
		}
	}
	s.resets++

	s.bus.Publish(models.EventRoomReset, models.RoomReset{
		Room:       copyRoom(room),
		Players:    s.roomPlayersLocked(room),
		ResetCount: s.resets,
	})
	return nil
}

// LeaveRoom removes the player from the player table and from the room's
// join-order list, then publishes PlayerLeft. If neither record exists
// anymore the call is a silent no-op (duplicate teardown signals are
// expected) and nothing is published.
func (s *RoomStore) LeaveRoom(playerID, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, hadPlayer := s.players[playerID]
	delete(s.players, playerID)

	room, roomExists := s.rooms[roomID]
	removed := false
	if roomExists {
		if i := slices.Index(room.PlayerIDs, playerID); i >= 0 {
			room.PlayerIDs = slices.Delete(room.PlayerIDs, i, i+1)
			removed = true
		}
	}
	// Nothing happened, or the room is already gone (terminal): stay silent.
	if !roomExists || (!hadPlayer && !removed) {
		return
	}

	s.bus.Publish(models.EventPlayerLeft, models.PlayerLeft{
		PlayerID: playerID,
		RoomID:   roomID,
	})
}

// DeleteRoom removes the room. Deletion is terminal: no further events are
// published for that id. Remaining player records are left behind
// deliberately; their own teardown cleans them up.
func (s *RoomStore) DeleteRoom(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// roomPlayersLocked returns join-ordered player snapshots. Caller holds mu.
func (s *RoomStore) roomPlayersLocked(room *models.Room) []models.Player {
	players := make([]models.Player, 0, len(room.PlayerIDs))
	for _, id := range room.PlayerIDs {
		if player, ok := s.players[id]; ok {
			players = append(players, copyPlayer(player))
		}
	}
	return players
}

func (s *RoomStore) newRoomID() string {
	id := uuid.New().String()
	if _, exists := s.rooms[id]; exists {
		panic("room id collision: " + id)
	}
	return id
}

func (s *RoomStore) newPlayerID() string {
	id := uuid.New().String()
	if _, exists := s.players[id]; exists {
		panic("player id collision: " + id)
	}
	return id
}

func copyRoom(r *models.Room) models.Room {
	c := *r
	c.PlayerIDs = slices.Clone(r.PlayerIDs)
	return c
}

func copyPlayer(p *models.Player) models.Player {
	c := *p
	if p.Points != nil {
		pv := *p.Points
		c.Points = &pv
	}
	return c
}
