package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
)

// SubscriptionID identifies an adapter listener
type SubscriptionID string

// hub fans re-shaped store events out to an adapter's own listeners
type hub[E any] struct {
	name   string
	logger *zap.Logger

	mu   sync.Mutex
	subs []hubSub[E]

	store *registry.Store
	sub   registry.SubscriptionID
}

type hubSub[E any] struct {
	id SubscriptionID
	fn func(context.Context, E)
}

// attach subscribes the hub to store; shape turns each store event into
// the adapter vocabulary, returning false to drop it
func (h *hub[E]) attach(store *registry.Store, shape func(registry.Event) (E, bool)) {
	h.store = store
	h.sub = store.Subscribe(registry.ListenerFunc(func(ctx context.Context, ev registry.Event) {
		out, ok := shape(ev)
		if !ok {
			return
		}
		h.publish(ctx, out)
	}))
}

func (h *hub[E]) detach() {
	if h.store != nil {
		h.store.Unsubscribe(h.sub)
	}
}

func (h *hub[E]) subscribe(fn func(context.Context, E)) SubscriptionID {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := SubscriptionID(uuid.NewString())
	h.subs = append(h.subs, hubSub[E]{id: id, fn: fn})
	return id
}

func (h *hub[E]) unsubscribe(id SubscriptionID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, s := range h.subs {
		if s.id == id {
			h.subs = append(h.subs[:i:i], h.subs[i+1:]...)
			return true
		}
	}
	return false
}

func (h *hub[E]) publish(ctx context.Context, ev E) {
	h.mu.Lock()
	subs := append([]hubSub[E](nil), h.subs...)
	h.mu.Unlock()

	for _, s := range subs {
		h.call(ctx, s, ev)
	}
}

func (h *hub[E]) call(ctx context.Context, s hubSub[E], ev E) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Adapter listener panicked",
				zap.String("adapter", h.name),
				zap.String("subscription", string(s.id)),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	s.fn(ctx, ev)
}
