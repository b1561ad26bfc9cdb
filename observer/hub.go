// Package observer implements subscription/fan-out glue: a Hub delivers
// every published value to its subscribers in the deterministic order
// they subscribed, isolating a panicking or erroring subscriber so it
// neither blocks delivery to the remaining subscribers nor corrupts the
// emitting operator's next increment.
package observer

import (
	"sync"

	"go.uber.org/zap"

	"github.com/streamhouse/dbsp/internal/telemetry"
)

// Callback receives one published value. A callback that returns an
// error or panics is isolated per Hub's documented behavior; it must not
// assume delivery order relative to other subscribers beyond
// "subscribed earlier is delivered earlier".
type Callback[A any] func(value A) error

// Subscription is the handle returned by Subscribe, used to Unsubscribe
// later.
type Subscription struct {
	id int64
}

type subscriber[A any] struct {
	id int64
	cb Callback[A]
}

// Hub is a single-producer fan-out point for circuit output deltas.
type Hub[A any] struct {
	mu     sync.Mutex
	nextID int64
	subs   []subscriber[A]
	log    telemetry.Logger
}

// New builds an empty Hub. A nil logger defaults to a no-op logger.
func New[A any](log telemetry.Logger) *Hub[A] {
	if log == nil {
		log = telemetry.NewNop()
	}
	return &Hub[A]{log: log}
}

// Subscribe registers cb for future Publish calls, appended after every
// currently registered subscriber.
func (h *Hub[A]) Subscribe(cb Callback[A]) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscriber[A]{id: id, cb: cb})
	return Subscription{id: id}
}

// Unsubscribe removes a previously registered subscription. It is a
// no-op if the subscription was already removed.
func (h *Hub[A]) Unsubscribe(sub Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s.id == sub.id {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers value to every current subscriber in insertion order.
// A subscriber that panics or returns an error is logged at WARN and
// skipped; delivery continues to the remaining subscribers, and the
// panic/error never propagates to Publish's caller (the emitting
// operator's own state is never rolled back on account of a subscriber
// failure).
func (h *Hub[A]) Publish(value A) {
	h.mu.Lock()
	subs := make([]subscriber[A], len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, s := range subs {
		h.deliverOne(s, value)
	}
}

func (h *Hub[A]) deliverOne(s subscriber[A], value A) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Warn("observer: subscriber panicked, isolating",
				zap.Int64("subscriber_id", s.id),
				zap.Any("recovered", r),
			)
		}
	}()

	if err := s.cb(value); err != nil {
		h.log.Warn("observer: subscriber returned an error, isolating",
			zap.Int64("subscriber_id", s.id),
			zap.Error(err),
		)
	}
}

// Len returns the current number of registered subscribers.
func (h *Hub[A]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
