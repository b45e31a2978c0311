// Package query runs filter, search, sort and paginate over a snapshot of
// the registry and caches each page under a fingerprint of its parameters.
//
// Cached pages are served until their TTL elapses; store mutations do not
// invalidate them unless the engine was built WithInvalidateOnWrite.
package query

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

const (
	DefaultTTL         = 5 * time.Minute
	DefaultCacheSize   = 1024
	DefaultMaxPageSize = 100
)

// Source supplies the records a query runs over
type Source interface {
	Snapshot() []types.Agent
	Lookup(id string) (types.Agent, bool)
}

// Notifier is the event feed used for invalidate-on-write
type Notifier interface {
	Subscribe(registry.Listener) registry.SubscriptionID
	Unsubscribe(registry.SubscriptionID) bool
}

// Engine answers paginated queries over a Source
type Engine struct {
	source      Source
	cache       *cache
	maxPageSize int
	now         func() time.Time
	logger      *zap.Logger
	metrics     *monitoring.Metrics

	notifier Notifier
	sub      registry.SubscriptionID
}

type config struct {
	ttl         time.Duration
	size        int
	maxPageSize int
	now         func() time.Time
	logger      *zap.Logger
	metrics     *monitoring.Metrics
	notifier    Notifier
}

// Option configures an Engine
type Option func(*config)

// WithTTL sets how long a cached page stays fresh
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheSize bounds the number of cached pages
func WithCacheSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithMaxPageSize caps the page size
func WithMaxPageSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxPageSize = n
		}
	}
}

// WithClock overrides the time source for TTLs and GeneratedAt
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables cache and query metrics
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithInvalidateOnWrite clears the cache on every event from n
func WithInvalidateOnWrite(n Notifier) Option {
	return func(c *config) { c.notifier = n }
}

// New creates an engine over source
func New(source Source, opts ...Option) (*Engine, error) {
	cfg := config{
		ttl:         DefaultTTL,
		size:        DefaultCacheSize,
		maxPageSize: DefaultMaxPageSize,
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	c, err := newCache(cfg.size, cfg.ttl, cfg.now)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		source:      source,
		cache:       c,
		maxPageSize: cfg.maxPageSize,
		now:         cfg.now,
		logger:      cfg.logger,
		metrics:     cfg.metrics,
	}
	if cfg.notifier != nil {
		e.notifier = cfg.notifier
		e.sub = cfg.notifier.Subscribe(registry.ListenerFunc(func(context.Context, registry.Event) {
			e.ClearCache()
		}))
	}
	return e, nil
}

// Close stops invalidate-on-write
func (e *Engine) Close() {
	if e.notifier != nil {
		e.notifier.Unsubscribe(e.sub)
	}
}

// Search returns one page of agents matching f and sp, ordered by so
func (e *Engine) Search(ctx context.Context, sp SearchParams, so SortParams, f types.AgentFilter) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	key := Fingerprint(sp, so, f, e.maxPageSize)

	if cached, ok, expired := e.cache.get(key); ok {
		e.metrics.RecordCacheLookup("hit")
		e.metrics.ObserveQuery(time.Since(start), true)
		out := cached.clone()
		out.Cached = true
		return out, nil
	} else if expired {
		e.metrics.RecordCacheLookup("expired")
	} else {
		e.metrics.RecordCacheLookup("miss")
	}

	gen := e.cache.generation()
	items, page := Run(e.source.Snapshot(), sp, so, f, e.maxPageSize)
	result := Result{Items: items, Pagination: page, GeneratedAt: e.now()}

	if e.cache.put(key, result.clone(), gen) {
		e.metrics.SetCacheEntries(e.cache.len())
	}
	e.metrics.ObserveQuery(time.Since(start), false)

	e.logger.Debug("Query executed",
		zap.String("fingerprint", key[:12]),
		zap.Int("total", page.Total),
		zap.Int("page", page.Page),
	)
	return result, nil
}

// GetDetails returns one agent straight from the source
func (e *Engine) GetDetails(id string) (types.Agent, bool) {
	return e.source.Lookup(id)
}

// ClearCache drops every cached page
func (e *Engine) ClearCache() {
	e.cache.clear()
	e.metrics.SetCacheEntries(0)
}

// CacheStats reports cache counters
func (e *Engine) CacheStats() CacheStats {
	return e.cache.stats()
}
