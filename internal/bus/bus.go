package bus

import (
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
)

// Handler receives the payload of a published event.
type Handler func(payload any)

// Subscription identifies one registered handler so it can be removed later.
type Subscription struct {
	event string
	id    uint64
}

type entry struct {
	id uint64
	fn Handler
}

// Bus is a process-wide named-event multiplexer. Publishing delivers the
// payload synchronously to every handler registered for that name, in
// subscription order. There is no buffering and no filtering; a handler that
// subscribes after a publish never sees that event.
//
// A Bus is passed by reference to whoever needs it; there is no package-level
// singleton, so tests can run isolated buses.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string][]entry
}

func New() *Bus {
	return &Bus{handlers: make(map[string][]entry)}
}

// Subscribe registers fn for every future publish of event.
func (b *Bus) Subscribe(event string, fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[event] = append(b.handlers[event], entry{id: b.nextID, fn: fn})
	return Subscription{event: event, id: b.nextID}
}

// Unsubscribe removes the handler. Once it returns, no new delivery to that
// handler can begin. Unsubscribing twice is harmless.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.handlers[sub.event]
	for i, e := range entries {
		if e.id == sub.id {
			b.handlers[sub.event] = slices.Delete(entries, i, i+1)
			return
		}
	}
}

// Publish delivers payload to every handler registered for event, in
// subscription order, before returning. A panicking handler is logged and
// skipped so it cannot break delivery to the others.
func (b *Bus) Publish(event string, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, e := range b.handlers[event] {
		dispatch(event, e.fn, payload)
	}
}

func dispatch(event string, fn Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"event": event,
				"panic": r,
			}).Warn("event handler panicked, skipping subscriber")
		}
	}()
	fn(payload)
}
