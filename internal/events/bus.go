// Package events implements the per-session publish/subscribe router that
// fans domain events out to the side-effect consumers. One bus is created
// per active game session and torn down with it; there is no package-global
// instance.
package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Timtam/hitster-sub000/internal/game"
)

// Handler consumes one published event. Handlers run synchronously on the
// publishing goroutine, in subscription order. A handler may publish further
// events; published payloads are immutable so cascades cannot loop on
// identical payload identity.
type Handler func(game.Event)

// Subscription identifies one registered handler for later removal.
type Subscription struct {
	name string
	id   uuid.UUID
}

type subscriber struct {
	id uuid.UUID
	fn Handler
}

// Bus routes events to handlers keyed by event name. Late subscribers never
// receive past events.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]subscriber
	log  logrus.FieldLogger
}

// NewBus creates an empty bus. A nil logger falls back to the standard
// logrus logger.
func NewBus(log logrus.FieldLogger) *Bus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bus{
		subs: make(map[string][]subscriber),
		log:  log,
	}
}

// Subscribe registers a handler for the named event and returns its
// subscription token.
func (b *Bus) Subscribe(name string, fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.New()
	b.subs[name] = append(b.subs[name], subscriber{id: id, fn: fn})
	return Subscription{name: name, id: id}
}

// Unsubscribe removes a subscription. Removing one that is already gone is
// a no-op.
func (b *Bus) Unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[s.name]
	for i := range list {
		if list[i].id == s.id {
			b.subs[s.name] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Publish delivers the event synchronously to every current subscriber of
// the name, in subscription order. A panicking handler is logged and must
// not keep the remaining handlers from running.
func (b *Bus) Publish(name string, ev game.Event) {
	b.mu.Lock()
	list := make([]subscriber, len(b.subs[name]))
	copy(list, b.subs[name])
	b.mu.Unlock()

	for _, sub := range list {
		b.dispatch(name, sub, ev)
	}
}

// dispatch invokes one handler behind a recover boundary so a faulty
// consumer cannot break the engine or its peers.
func (b *Bus) dispatch(name string, sub subscriber, ev game.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{
				"event":        name,
				"subscription": sub.id,
				"panic":        r,
			}).Error("event handler panicked; continuing fan-out")
		}
	}()
	sub.fn(ev)
}
