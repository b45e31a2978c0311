package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/adapter"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/query"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/providers/ledger"
)

// Components are the domain services behind the API, shared by the server
// and the CLI
type Components struct {
	Slot       persistence.Slot
	Store      *registry.Store
	Discovery  *adapter.Discovery
	Management *adapter.Management
	Ledger     *adapter.Ledger
	Gateway    ledger.Gateway
	Engine     *query.Engine
	Hub        *ws.Hub
}

// Build opens the slot and wires every component on top of it
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := registry.DefaultSeed()
	if cfg.Store.SeedDir != "" {
		extra, err := registry.LoadSeedDir(cfg.Store.SeedDir)
		if err != nil {
			return nil, fmt.Errorf("load seed dir: %w", err)
		}
		seed = append(seed, extra...)
		logger.Info("Loaded seed fixtures", zap.String("dir", cfg.Store.SeedDir), zap.Int("records", len(extra)))
	}

	slot, err := OpenSlot(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s slot: %w", cfg.Store.Driver, err)
	}

	store := registry.Open(ctx, slot,
		registry.WithLogger(logger.Named("store")),
		registry.WithMetrics(metrics),
		registry.WithSeed(seed),
		registry.WithSnapshotKey(cfg.Store.SlotKey),
	)

	gateway, err := NewGateway(cfg.Ledger, metrics)
	if err != nil {
		store.Close()
		_ = slot.Close()
		return nil, err
	}

	adapterOpts := []adapter.Option{adapter.WithLogger(logger.Named("adapter"))}
	c := &Components{
		Slot:       slot,
		Store:      store,
		Discovery:  adapter.NewDiscovery(store, adapterOpts...),
		Management: adapter.NewManagement(store, adapterOpts...),
		Ledger:     adapter.NewLedger(store, gateway, adapterOpts...),
		Gateway:    gateway,
		Hub:        ws.NewHub(store, logger.Named("ws"), metrics),
	}

	queryOpts := []query.Option{
		query.WithTTL(cfg.Query.CacheTTL),
		query.WithCacheSize(cfg.Query.CacheSize),
		query.WithMaxPageSize(cfg.Query.MaxPageSize),
		query.WithLogger(logger.Named("query")),
		query.WithMetrics(metrics),
	}
	if cfg.Query.InvalidateOnWrite {
		queryOpts = append(queryOpts, query.WithInvalidateOnWrite(store))
	}
	c.Engine, err = query.New(c.Discovery, queryOpts...)
	if err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// NewGateway builds the configured ledger gateway
func NewGateway(cfg config.LedgerConfig, metrics *monitoring.Metrics) (ledger.Gateway, error) {
	switch cfg.Mode {
	case "", "simulated":
		return ledger.NewSimulated(ledger.WithNetwork(cfg.NetworkID)), nil
	case "http":
		return ledger.NewHTTPGateway(ledger.HTTPConfig{
			Endpoint:  cfg.Endpoint,
			NetworkID: cfg.NetworkID,
			Token:     cfg.APIToken,
			Timeout:   cfg.Timeout,
			RetryMax:  3,
			Metrics:   metrics,
		})
	default:
		return nil, fmt.Errorf("unknown ledger mode %q", cfg.Mode)
	}
}

// Close detaches every component and closes the slot
func (c *Components) Close() error {
	if c.Engine != nil {
		c.Engine.Close()
	}
	if c.Hub != nil {
		c.Hub.Close()
	}
	c.Discovery.Close()
	c.Management.Close()
	c.Ledger.Close()
	c.Store.Close()

	if err := c.Slot.Close(); err != nil {
		return fmt.Errorf("close slot: %w", err)
	}
	return nil
}
