package adapter

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/convert"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// Discovery is the browsing surface of the registry
type Discovery struct {
	store  *registry.Store
	hub    hub[DiscoveryEvent]
	logger *zap.Logger
}

// NewDiscovery creates a discovery adapter over store
func NewDiscovery(store *registry.Store, opts ...Option) *Discovery {
	o := buildOptions(opts)
	d := &Discovery{store: store, logger: o.logger}
	d.hub.name = "discovery"
	d.hub.logger = o.logger
	d.hub.attach(store, toDiscoveryEvent)
	return d
}

// Close detaches the adapter from the store
func (d *Discovery) Close() {
	d.hub.detach()
}

// List returns every agent
func (d *Discovery) List() []convert.DiscoveryAgent {
	return convert.Map(d.store.List(), convert.ToDiscovery)
}

// Get returns one agent
func (d *Discovery) Get(id string) (convert.DiscoveryAgent, error) {
	a, ok := d.store.Get(id)
	if !ok {
		return convert.DiscoveryAgent{}, agentNotFound(id)
	}
	return convert.ToDiscovery(a), nil
}

// Search runs a free-text search
func (d *Discovery) Search(query string) []convert.DiscoveryAgent {
	return convert.Map(d.store.Search(query), convert.ToDiscovery)
}

// Filter applies predicates
func (d *Discovery) Filter(f types.AgentFilter) []convert.DiscoveryAgent {
	return convert.Map(d.store.Filter(f), convert.ToDiscovery)
}

// Rate folds one review into the agent's running average
func (d *Discovery) Rate(ctx context.Context, id string, rating float64) (convert.DiscoveryAgent, error) {
	if rating < 1 || rating > 5 {
		return convert.DiscoveryAgent{}, &registry.ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}

	ok, err := d.store.UpdateFunc(ctx, id, func(current types.Agent) (types.AgentPatch, error) {
		stats := types.AgentStats{}
		if current.Stats != nil {
			stats = *current.Stats
		}
		total := stats.Rating*float64(stats.Reviews) + rating
		stats.Reviews++
		stats.Rating = total / float64(stats.Reviews)
		return types.AgentPatch{Stats: &stats}, nil
	})
	if err != nil {
		return convert.DiscoveryAgent{}, err
	}
	if !ok {
		return convert.DiscoveryAgent{}, agentNotFound(id)
	}

	d.logger.Debug("Agent rated", zap.String("id", id), zap.Float64("rating", rating))
	return d.Get(id)
}

// Snapshot returns the canonical records for the query engine
func (d *Discovery) Snapshot() []types.Agent {
	return d.store.List()
}

// Lookup returns one canonical record for the query engine
func (d *Discovery) Lookup(id string) (types.Agent, bool) {
	return d.store.Get(id)
}

// Subscribe registers fn for every store event. Writes made from fn must
// use the ctx it receives.
func (d *Discovery) Subscribe(fn func(context.Context, DiscoveryEvent)) SubscriptionID {
	return d.hub.subscribe(fn)
}

// Unsubscribe removes a listener
func (d *Discovery) Unsubscribe(id SubscriptionID) bool {
	return d.hub.unsubscribe(id)
}
