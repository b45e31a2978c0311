package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
// Every method is safe to call on a nil *Metrics, which records nothing.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Store metrics
	StoreMutations   *prometheus.CounterVec
	AgentsTotal      prometheus.Gauge
	ContractsTotal   prometheus.Gauge
	EventsDispatched *prometheus.CounterVec
	ListenerPanics   prometheus.Counter

	// Persistence metrics
	PersistenceWrites   *prometheus.CounterVec
	PersistenceDuration *prometheus.HistogramVec
	PersistenceErrors   *prometheus.CounterVec

	// Query metrics
	CacheLookups  *prometheus.CounterVec
	CacheEntries  prometheus.Gauge
	QueryDuration *prometheus.HistogramVec

	// Ledger gateway metrics
	LedgerCalls    *prometheus.CounterVec
	LedgerDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	registry *prometheus.Registry
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON stats endpoint
type Snapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	AverageLatencyMS  float64 `json:"average_latency_ms"`
	Mutations         int64   `json:"mutations"`
	PersistenceErrors int64   `json:"persistence_errors"`
	CacheHits         int64   `json:"cache_hits"`
	CacheMisses       int64   `json:"cache_misses"`
	ActiveConnections int64   `json:"active_connections"`

	totalDuration float64
}

// NewMetrics creates collectors on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := NewMetricsWith(reg)
	m.registry = reg
	return m
}

// NewMetricsWith registers collectors on reg
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentregistry_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentregistry_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		StoreMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentregistry_store_mutations_total",
				Help: "Store mutations by entity and action",
			},
			[]string{"entity", "action"},
		),
		AgentsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentregistry_agents",
				Help: "Number of agent records in the store",
			},
		),
		ContractsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentregistry_contracts",
				Help: "Number of contract records in the store",
			},
		),
		EventsDispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentregistry_events_dispatched_total",
				Help: "Store events delivered to listeners",
			},
			[]string{"type"},
		),
		ListenerPanics: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "agentregistry_listener_panics_total",
				Help: "Listener panics recovered during event dispatch",
			},
		),

		PersistenceWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentregistry_persistence_operations_total",
				Help: "Snapshot slot operations by driver, operation and status",
			},
			[]string{"driver", "operation", "status"},
		),
		PersistenceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentregistry_persistence_duration_seconds",
				Help:    "Snapshot slot operation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"driver", "operation"},
		),
		PersistenceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentregistry_persistence_errors_total",
				Help: "Snapshot failures by stage (load, decode, encode, save)",
			},
			[]string{"stage"},
		),

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentregistry_query_cache_lookups_total",
				Help: "Query cache lookups by result (hit, miss, expired)",
			},
			[]string{"result"},
		),
		CacheEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentregistry_query_cache_entries",
				Help: "Entries currently held in the query cache",
			},
		),
		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentregistry_query_duration_seconds",
				Help:    "Query engine search duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
			},
			[]string{"cached"},
		),

		LedgerCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentregistry_ledger_calls_total",
				Help: "Ledger gateway calls by operation and status",
			},
			[]string{"operation", "status"},
		),
		LedgerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentregistry_ledger_duration_seconds",
				Help:    "Ledger gateway call duration in seconds",
				Buckets: []float64{.001, .01, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentregistry_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentregistry_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}
}

// Gatherer returns the registry the metrics were created on, if owned
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil || m.registry == nil {
		return prometheus.DefaultGatherer
	}
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordMutation records a store mutation
func (m *Metrics) RecordMutation(entity, action string) {
	if m == nil {
		return
	}
	m.StoreMutations.WithLabelValues(entity, action).Inc()
	m.mu.Lock()
	m.snapshot.Mutations++
	m.mu.Unlock()
}

// SetRecordCounts sets the agent and contract gauges
func (m *Metrics) SetRecordCounts(agents, contracts int) {
	if m == nil {
		return
	}
	m.AgentsTotal.Set(float64(agents))
	m.ContractsTotal.Set(float64(contracts))
}

// RecordEvent records one event delivered to listeners
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.EventsDispatched.WithLabelValues(eventType).Inc()
}

// RecordListenerPanic records a recovered listener panic
func (m *Metrics) RecordListenerPanic() {
	if m == nil {
		return
	}
	m.ListenerPanics.Inc()
}

// RecordPersistence records a slot operation
func (m *Metrics) RecordPersistence(driver, operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.PersistenceWrites.WithLabelValues(driver, operation, status).Inc()
	m.PersistenceDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
}

// RecordPersistenceError records a snapshot failure at stage
func (m *Metrics) RecordPersistenceError(stage string) {
	if m == nil {
		return
	}
	m.PersistenceErrors.WithLabelValues(stage).Inc()
	m.mu.Lock()
	m.snapshot.PersistenceErrors++
	m.mu.Unlock()
}

// RecordCacheLookup records a query cache lookup result
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
	m.mu.Lock()
	if result == "hit" {
		m.snapshot.CacheHits++
	} else {
		m.snapshot.CacheMisses++
	}
	m.mu.Unlock()
}

// SetCacheEntries sets the cache size gauge
func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}

// ObserveQuery records a query engine search
func (m *Metrics) ObserveQuery(duration time.Duration, cached bool) {
	if m == nil {
		return
	}
	label := "false"
	if cached {
		label = "true"
	}
	m.QueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordLedgerCall records a ledger gateway call
func (m *Metrics) RecordLedgerCall(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.LedgerCalls.WithLabelValues(operation, status).Inc()
	m.LedgerDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current JSON-friendly values
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.snapshot
	if out.TotalRequests > 0 {
		out.AverageLatencyMS = out.totalDuration / float64(out.TotalRequests) * 1000
	}
	return out
}
