package adapter

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/convert"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// Management is the editing surface of the registry
type Management struct {
	store  *registry.Store
	hub    hub[ManagementEvent]
	logger *zap.Logger
}

// NewManagement creates a management adapter over store
func NewManagement(store *registry.Store, opts ...Option) *Management {
	o := buildOptions(opts)
	m := &Management{store: store, logger: o.logger}
	m.hub.name = "management"
	m.hub.logger = o.logger
	m.hub.attach(store, toManagementEvent)
	return m
}

// Close detaches the adapter from the store
func (m *Management) Close() {
	m.hub.detach()
}

// Create registers a new agent
func (m *Management) Create(ctx context.Context, in convert.ManagedInput) (convert.ManagedAgent, error) {
	a, err := m.store.Create(ctx, convert.ManagedInputToAgentInput(in))
	if err != nil {
		return convert.ManagedAgent{}, err
	}
	m.logger.Info("Agent created", zap.String("id", a.ID), zap.String("name", a.Name))
	return convert.ToManaged(a), nil
}

// Update applies a partial update. Config and metadata siblings the update
// leaves out are read under the store's write lock.
func (m *Management) Update(ctx context.Context, id string, u convert.ManagedUpdate) (convert.ManagedAgent, error) {
	return m.applyFunc(ctx, id, func(current types.Agent) (types.AgentPatch, error) {
		return convert.ManagedUpdateToPatch(u, current), nil
	})
}

// SetStatus changes only the status
func (m *Management) SetStatus(ctx context.Context, id string, status types.AgentStatus) (convert.ManagedAgent, error) {
	return m.apply(ctx, id, types.AgentPatch{Status: &status})
}

func (m *Management) apply(ctx context.Context, id string, patch types.AgentPatch) (convert.ManagedAgent, error) {
	return m.applyFunc(ctx, id, func(types.Agent) (types.AgentPatch, error) { return patch, nil })
}

func (m *Management) applyFunc(ctx context.Context, id string, fn func(types.Agent) (types.AgentPatch, error)) (convert.ManagedAgent, error) {
	ok, err := m.store.UpdateFunc(ctx, id, fn)
	if err != nil {
		return convert.ManagedAgent{}, err
	}
	if !ok {
		return convert.ManagedAgent{}, agentNotFound(id)
	}
	a, ok := m.store.Get(id)
	if !ok {
		return convert.ManagedAgent{}, agentNotFound(id)
	}
	return convert.ToManaged(a), nil
}

// Delete removes an agent
func (m *Management) Delete(ctx context.Context, id string) error {
	if !m.store.Delete(ctx, id) {
		return agentNotFound(id)
	}
	m.logger.Info("Agent deleted", zap.String("id", id))
	return nil
}

// Get returns one agent
func (m *Management) Get(id string) (convert.ManagedAgent, error) {
	a, ok := m.store.Get(id)
	if !ok {
		return convert.ManagedAgent{}, agentNotFound(id)
	}
	return convert.ToManaged(a), nil
}

// List returns every agent
func (m *Management) List() []convert.ManagedAgent {
	return convert.Map(m.store.List(), convert.ToManaged)
}

// Search runs a free-text search
func (m *Management) Search(query string) []convert.ManagedAgent {
	return convert.Map(m.store.Search(query), convert.ToManaged)
}

// Filter applies predicates
func (m *Management) Filter(f types.AgentFilter) []convert.ManagedAgent {
	return convert.Map(m.store.Filter(f), convert.ToManaged)
}

// Subscribe registers fn for every store event. Writes made from fn must
// use the ctx it receives.
func (m *Management) Subscribe(fn func(context.Context, ManagementEvent)) SubscriptionID {
	return m.hub.subscribe(fn)
}

// Unsubscribe removes a listener
func (m *Management) Unsubscribe(id SubscriptionID) bool {
	return m.hub.unsubscribe(id)
}
