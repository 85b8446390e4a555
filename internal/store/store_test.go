package store_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrumkit/planning-poker/internal/bus"
	"github.com/scrumkit/planning-poker/internal/models"
	"github.com/scrumkit/planning-poker/internal/store"
)

// eventRecorder captures every domain event published on the bus.
type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	name    string
	payload any
}

func (r *eventRecorder) record(name string) bus.Handler {
	return func(payload any) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, recordedEvent{name: name, payload: payload})
	}
}

func (r *eventRecorder) all() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *eventRecorder) named(name string) []recordedEvent {
	var out []recordedEvent
	for _, e := range r.all() {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

func newTestStore() (*store.RoomStore, *eventRecorder) {
	b := bus.New()
	rec := &eventRecorder{}
	for _, name := range []string{
		models.EventPlayerJoined,
		models.EventPointsChosen,
		models.EventCardsRevealed,
		models.EventRoomReset,
		models.EventPlayerLeft,
	} {
		b.Subscribe(name, rec.record(name))
	}
	return store.New(b), rec
}

func TestCreateRoomLinksCreator(t *testing.T) {
	s, rec := newTestStore()

	room, creator := s.CreateRoom("Sprint 1", "Ann", false)

	assert.Equal(t, "Sprint 1", room.Name)
	assert.False(t, room.Revealed)
	require.Equal(t, []string{creator.ID}, room.PlayerIDs)
	assert.Equal(t, models.RoleCreator, creator.Role)
	assert.Equal(t, room.ID, creator.RoomID)
	assert.False(t, creator.IsSpectator)
	assert.Nil(t, creator.Points)
	assert.Empty(t, rec.all(), "room creation publishes nothing")
}

func TestJoinOrderAndUniqueness(t *testing.T) {
	s, rec := newTestStore()
	room, creator := s.CreateRoom("Sprint 1", "Ann", false)

	var joined []string
	for i := 0; i < 5; i++ {
		_, player, err := s.JoinRoom(room.ID, fmt.Sprintf("player-%d", i), false)
		require.NoError(t, err)
		joined = append(joined, player.ID)
	}

	got, err := s.GetRoom(room.ID)
	require.NoError(t, err)
	require.Len(t, got.PlayerIDs, 6, "creator plus five joins")
	assert.Equal(t, append([]string{creator.ID}, joined...), got.PlayerIDs, "join order preserved")

	seen := make(map[string]bool)
	for _, id := range got.PlayerIDs {
		assert.False(t, seen[id], "player id %s appears twice", id)
		seen[id] = true
	}

	events := rec.named(models.EventPlayerJoined)
	require.Len(t, events, 5)
	for i, e := range events {
		payload := e.payload.(models.PlayerJoined)
		assert.Equal(t, room.ID, payload.RoomID)
		assert.Equal(t, joined[i], payload.Player.ID)
		assert.Equal(t, models.RolePlayer, payload.Player.Role)
	}
}

func TestJoinRoomNotFound(t *testing.T) {
	s, rec := newTestStore()

	_, _, err := s.JoinRoom("missing", "Bo", false)

	assert.ErrorIs(t, err, store.ErrRoomNotFound)
	assert.Empty(t, rec.all())
}

func TestSetPointsPublishesIncreasingSequence(t *testing.T) {
	s, rec := newTestStore()
	room, ann := s.CreateRoom("Sprint 1", "Ann", false)
	_, bo, err := s.JoinRoom(room.ID, "Bo", false)
	require.NoError(t, err)

	s.SetPoints(ann.ID, models.PointValue{Value: 5})
	s.SetPoints(bo.ID, models.PointValue{Unknown: true})

	events := rec.named(models.EventPointsChosen)
	require.Len(t, events, 2)
	first := events[0].payload.(models.PointsChosen)
	second := events[1].payload.(models.PointsChosen)
	assert.Equal(t, ann.ID, first.PlayerID)
	assert.Equal(t, 5, first.Points.Value)
	assert.True(t, second.Points.Unknown)
	assert.Greater(t, second.SequenceNumber, first.SequenceNumber)

	players, err := s.GetRoomPlayers(room.ID)
	require.NoError(t, err)
	require.Len(t, players, 2)
	require.NotNil(t, players[0].Points)
	assert.Equal(t, 5, players[0].Points.Value)
	require.NotNil(t, players[1].Points)
	assert.True(t, players[1].Points.Unknown)
}

func TestSetPointsMissingPlayerIsSilentNoOp(t *testing.T) {
	s, rec := newTestStore()
	s.CreateRoom("Sprint 1", "Ann", false)

	require.NotPanics(t, func() {
		s.SetPoints("gone", models.PointValue{Value: 8})
	})
	assert.Empty(t, rec.named(models.EventPointsChosen), "no event for a stale pick")
}

func TestRevealIsIdempotentAndRepublishes(t *testing.T) {
	s, rec := newTestStore()
	room, _ := s.CreateRoom("Sprint 1", "Ann", false)

	require.NoError(t, s.Reveal(room.ID))
	require.NoError(t, s.Reveal(room.ID))

	got, err := s.GetRoom(room.ID)
	require.NoError(t, err)
	assert.True(t, got.Revealed)
	assert.Len(t, rec.named(models.EventCardsRevealed), 2, "duplicate reveals re-publish")

	assert.ErrorIs(t, s.Reveal("missing"), store.ErrRoomNotFound)
}

func TestResetClearsRoundAndSnapshotsPostReset(t *testing.T) {
	s, rec := newTestStore()
	room, ann := s.CreateRoom("Sprint 1", "Ann", false)
	_, bo, err := s.JoinRoom(room.ID, "Bo", false)
	require.NoError(t, err)

	s.SetPoints(ann.ID, models.PointValue{Value: 13})
	s.SetPoints(bo.ID, models.PointValue{Value: 8})
	require.NoError(t, s.Reveal(room.ID))

	require.NoError(t, s.Reset(room.ID))

	players, err := s.GetRoomPlayers(room.ID)
	require.NoError(t, err)
	for _, p := range players {
		assert.Nil(t, p.Points, "reset clears %s's points", p.Name)
	}
	got, err := s.GetRoom(room.ID)
	require.NoError(t, err)
	assert.False(t, got.Revealed)

	resets := rec.named(models.EventRoomReset)
	require.Len(t, resets, 1)
	payload := resets[0].payload.(models.RoomReset)
	assert.Equal(t, uint64(1), payload.ResetCount)
	assert.False(t, payload.Room.Revealed, "payload carries the post-reset room")
	require.Len(t, payload.Players, 2)
	for _, p := range payload.Players {
		assert.Nil(t, p.Points, "payload carries post-reset players")
	}

	require.NoError(t, s.Reset(room.ID))
	resets = rec.named(models.EventRoomReset)
	require.Len(t, resets, 2)
	assert.Equal(t, uint64(2), resets[1].payload.(models.RoomReset).ResetCount)
}

func TestResetDoesNotResurrectRemovedPlayers(t *testing.T) {
	s, _ := newTestStore()
	room, _ := s.CreateRoom("Sprint 1", "Ann", false)
	_, bo, err := s.JoinRoom(room.ID, "Bo", false)
	require.NoError(t, err)

	s.LeaveRoom(bo.ID, room.ID)
	require.NoError(t, s.Reset(room.ID))

	players, err := s.GetRoomPlayers(room.ID)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Ann", players[0].Name)
}

func TestLeaveRoomIsIdempotent(t *testing.T) {
	s, rec := newTestStore()
	room, _ := s.CreateRoom("Sprint 1", "Ann", false)
	_, bo, err := s.JoinRoom(room.ID, "Bo", false)
	require.NoError(t, err)

	s.LeaveRoom(bo.ID, room.ID)
	s.LeaveRoom(bo.ID, room.ID)

	got, err := s.GetRoom(room.ID)
	require.NoError(t, err)
	assert.NotContains(t, got.PlayerIDs, bo.ID)

	left := rec.named(models.EventPlayerLeft)
	require.Len(t, left, 1, "duplicate teardown publishes nothing")
	payload := left[0].payload.(models.PlayerLeft)
	assert.Equal(t, bo.ID, payload.PlayerID)
	assert.Equal(t, room.ID, payload.RoomID)
}

func TestDeleteRoomIsTerminal(t *testing.T) {
	s, rec := newTestStore()
	room, ann := s.CreateRoom("Sprint 1", "Ann", false)

	s.DeleteRoom(room.ID)

	_, err := s.GetRoom(room.ID)
	assert.ErrorIs(t, err, store.ErrRoomNotFound)
	assert.Empty(t, rec.all(), "deletion publishes nothing")

	// Orphaned players must not produce events for the dead room id.
	s.SetPoints(ann.ID, models.PointValue{Value: 3})
	s.LeaveRoom(ann.ID, room.ID)
	assert.Empty(t, rec.all())
}

func TestSnapshotsAreIsolatedFromStoreState(t *testing.T) {
	s, _ := newTestStore()
	room, ann := s.CreateRoom("Sprint 1", "Ann", false)

	room.PlayerIDs[0] = "tampered"
	room.Name = "tampered"
	s.SetPoints(ann.ID, models.PointValue{Value: 5})

	got, err := s.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sprint 1", got.Name)
	assert.Equal(t, []string{ann.ID}, got.PlayerIDs)

	players, err := s.GetRoomPlayers(room.ID)
	require.NoError(t, err)
	*players[0].Points = models.PointValue{Value: 99}
	players, err = s.GetRoomPlayers(room.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, players[0].Points.Value)
}

func TestConcurrentSetPointsLosesNothing(t *testing.T) {
	s, rec := newTestStore()
	room, ann := s.CreateRoom("Sprint 1", "Ann", false)
	_, bo, err := s.JoinRoom(room.ID, "Bo", false)
	require.NoError(t, err)

	const rounds = 50
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func(v int) {
			defer wg.Done()
			s.SetPoints(ann.ID, models.PointValue{Value: v})
		}(i)
		go func(v int) {
			defer wg.Done()
			s.SetPoints(bo.ID, models.PointValue{Value: v})
		}(i)
	}
	wg.Wait()

	events := rec.named(models.EventPointsChosen)
	require.Len(t, events, 2*rounds, "no update is silently lost")
	seen := make(map[uint64]bool)
	for _, e := range events {
		seq := e.payload.(models.PointsChosen).SequenceNumber
		assert.False(t, seen[seq], "sequence number %d delivered twice", seq)
		seen[seq] = true
	}

	got, err := s.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ann.ID, bo.ID}, got.PlayerIDs, "join order survives concurrent picks")
}
