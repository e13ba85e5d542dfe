package events

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/darwinyusef/termsim/pkg/termsim"
)

// Handler receives events.
type Handler func(ctx context.Context, e Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers events synchronously, in publish order, to typed subscribers
// first and then to catch-all subscribers. Panicking handlers are recovered
// and logged. Bus is safe for concurrent use.
type Bus struct {
	mu      sync.RWMutex
	typed   map[Type][]subscription
	allSubs []subscription
	nextID  atomic.Uint64
	logger  termsim.Logger
}

// NewBus creates an event bus. logger may be nil.
func NewBus(logger termsim.Logger) *Bus {
	return &Bus{
		typed:  make(map[Type][]subscription),
		logger: logger,
	}
}

// Publish delivers e to every matching subscriber before returning.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	typed := append([]subscription(nil), b.typed[e.Type]...)
	all := append([]subscription(nil), b.allSubs...)
	b.mu.RUnlock()

	for _, sub := range typed {
		b.dispatch(ctx, e, sub)
	}
	for _, sub := range all {
		b.dispatch(ctx, e, sub)
	}
}

func (b *Bus) dispatch(ctx context.Context, e Event, sub subscription) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.Error("event handler panicked on %s: %v", e.Type, r)
		}
	}()
	sub.handler(ctx, e)
}

// Subscribe registers a handler for one event type.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(t Type, handler Handler) func() {
	id := b.nextID.Add(1)

	b.mu.Lock()
	b.typed[t] = append(b.typed[t], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.typed[t]
		for i, s := range subs {
			if s.id == id {
				b.typed[t] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeAll registers a handler that receives every event.
// Returns an unsubscribe function.
func (b *Bus) SubscribeAll(handler Handler) func() {
	id := b.nextID.Add(1)

	b.mu.Lock()
	b.allSubs = append(b.allSubs, subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.allSubs {
			if s.id == id {
				b.allSubs = append(b.allSubs[:i:i], b.allSubs[i+1:]...)
				return
			}
		}
	}
}
