package channel

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/scrumkit/planning-poker/internal/bus"
	"github.com/scrumkit/planning-poker/internal/models"
)

// Message is one named, ordered, UTF-8 text event for the push connection.
// Data is the JSON encoding of the event payload (or a bare JSON literal for
// the revealCards signal).
type Message struct {
	Event string
	Data  string
}

// Sink is the outbound half of one push connection. Send must be safe to call
// from a single goroutine; the channel never calls it concurrently.
type Sink interface {
	Send(msg Message) error
}

// signalRevealCards tells the client to put the cards face down again. It
// precedes every state-changing event except cardsRevealed itself and
// playerLeft, so new information never arrives pre-revealed.
const signalRevealCards = "revealCards"

// outBufferSize bounds how far a slow connection may fall behind before
// events are dropped for it. Delivery is best-effort.
const outBufferSize = 32

// RoomChannel bridges the process-wide bus to one push connection scoped to
// one room. Handlers filter events by room id and enqueue translated
// messages; a single pump goroutine (Run) writes them to the sink, so sink
// writes are serialized and bus dispatch never blocks on a connection.
type RoomChannel struct {
	roomID string
	bus    *bus.Bus
	out    chan Message
	subs   []bus.Subscription
	log    *logrus.Entry
}

// New subscribes to all five event kinds immediately, so events published
// between construction and Run are queued rather than lost. The caller must
// follow up with Run, which releases the subscriptions when it returns.
func New(b *bus.Bus, roomID string) *RoomChannel {
	rc := &RoomChannel{
		roomID: roomID,
		bus:    b,
		out:    make(chan Message, outBufferSize),
		log:    logrus.WithFields(logrus.Fields{"component": "channel", "room_id": roomID}),
	}
	rc.subs = []bus.Subscription{
		b.Subscribe(models.EventPlayerJoined, rc.onPlayerJoined),
		b.Subscribe(models.EventPointsChosen, rc.onPointsChosen),
		b.Subscribe(models.EventCardsRevealed, rc.onCardsRevealed),
		b.Subscribe(models.EventRoomReset, rc.onRoomReset),
		b.Subscribe(models.EventPlayerLeft, rc.onPlayerLeft),
	}
	return rc
}

// Run forwards matching events to the sink until ctx is cancelled or a write
// fails. On return every subscription has been released; nothing outlives the
// connection.
func (rc *RoomChannel) Run(ctx context.Context, sink Sink) error {
	defer func() {
		for _, sub := range rc.subs {
			rc.bus.Unsubscribe(sub)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-rc.out:
			if err := sink.Send(msg); err != nil {
				rc.log.WithError(err).Debug("sink write failed, closing channel")
				return err
			}
		}
	}
}

func (rc *RoomChannel) onPlayerJoined(payload any) {
	ev, ok := payload.(models.PlayerJoined)
	if !ok || ev.RoomID != rc.roomID {
		return
	}
	rc.enqueue(Message{Event: signalRevealCards, Data: "false"})
	rc.enqueueEvent(models.EventPlayerJoined, ev)
}

func (rc *RoomChannel) onPointsChosen(payload any) {
	ev, ok := payload.(models.PointsChosen)
	if !ok || ev.RoomID != rc.roomID {
		return
	}
	rc.enqueue(Message{Event: signalRevealCards, Data: "false"})
	rc.enqueueEvent(models.EventPointsChosen, ev)
}

func (rc *RoomChannel) onCardsRevealed(payload any) {
	ev, ok := payload.(models.CardsRevealed)
	if !ok || ev.RoomID != rc.roomID {
		return
	}
	rc.enqueueEvent(models.EventCardsRevealed, ev)
}

func (rc *RoomChannel) onRoomReset(payload any) {
	ev, ok := payload.(models.RoomReset)
	if !ok || ev.Room.ID != rc.roomID {
		return
	}
	rc.enqueue(Message{Event: signalRevealCards, Data: "false"})
	rc.enqueueEvent(models.EventRoomReset, ev)
}

func (rc *RoomChannel) onPlayerLeft(payload any) {
	ev, ok := payload.(models.PlayerLeft)
	if !ok || ev.RoomID != rc.roomID {
		return
	}
	rc.enqueueEvent(models.EventPlayerLeft, ev)
}

func (rc *RoomChannel) enqueueEvent(event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		rc.log.WithError(err).WithField("event", event).Warn("failed to encode event payload")
		return
	}
	rc.enqueue(Message{Event: event, Data: string(data)})
}

func (rc *RoomChannel) enqueue(msg Message) {
	select {
	case rc.out <- msg:
	default:
		rc.log.WithField("event", msg.Event).Warn("outbound queue full, dropping event for slow connection")
	}
}
