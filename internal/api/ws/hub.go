package ws

import (
	"context"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/monitoring"
)

const sendBuffer = 64

// Message is one frame sent to clients
type Message struct {
	Type  string          `json:"type"`
	Event *registry.Event `json:"event,omitempty"`
	Error string          `json:"error,omitempty"`
}

type client struct {
	id     string
	send   chan []byte
	types  map[registry.EventType]bool
	closed bool
}

func (c *client) wants(t registry.EventType) bool {
	return len(c.types) == 0 || c.types[t]
}

// Hub fans store events out to connected clients
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client

	store   *registry.Store
	sub     registry.SubscriptionID
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewHub subscribes to store and starts broadcasting
func NewHub(store *registry.Store, logger *zap.Logger, metrics *monitoring.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		clients: make(map[string]*client),
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
	h.sub = store.Subscribe(h)
	return h
}

// HandleEvent broadcasts ev. It never blocks the store's dispatcher: a
// client whose buffer is full is dropped.
func (h *Hub) HandleEvent(_ context.Context, ev registry.Event) {
	data, err := encode(Message{Type: "event", Event: &ev})
	if err != nil {
		h.logger.Error("Failed to encode event", zap.String("event", string(ev.Type)), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		if !c.wants(ev.Type) {
			continue
		}
		select {
		case c.send <- data:
			h.metrics.RecordWSMessage("out", string(ev.Type))
		default:
			h.logger.Warn("Dropping slow websocket client", zap.String("client", id))
			h.removeLocked(id)
		}
	}
}

// Clients reports the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close unsubscribes from the store and disconnects every client
func (h *Hub) Close() {
	h.store.Unsubscribe(h.sub)
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.clients {
		h.removeLocked(id)
	}
}

func encode(m Message) ([]byte, error) {
	return sonic.ConfigStd.Marshal(m)
}

// add registers a client whose first frame is the connected greeting
func (h *Hub) add(types []registry.EventType) *client {
	c := &client{
		id:   uuid.NewString(),
		send: make(chan []byte, sendBuffer),
	}
	welcome, _ := encode(Message{Type: "connected"})
	c.send <- welcome
	if len(types) > 0 {
		c.types = make(map[registry.EventType]bool, len(types))
		for _, t := range types {
			c.types[t] = true
		}
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.metrics.IncWSConnections()
	return c
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id)
}

func (h *Hub) removeLocked(id string) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	h.metrics.DecWSConnections()
}
