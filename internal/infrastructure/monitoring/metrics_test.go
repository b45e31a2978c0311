package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordMutation("agent", "create")
		m.RecordCacheLookup("hit")
		m.RecordPersistence("memory", "save", nil, time.Millisecond)
		m.IncWSConnections()
		_ = m.Snapshot()
	})
}

func TestIndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetricsWith(prometheus.NewRegistry())
		NewMetricsWith(prometheus.NewRegistry())
	})
}

func TestCountersAndSnapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordMutation("agent", "create")
	m.RecordMutation("agent", "create")
	m.RecordCacheLookup("hit")
	m.RecordCacheLookup("miss")
	m.RecordCacheLookup("expired")
	m.RecordPersistence("file", "save", errors.New("disk full"), time.Millisecond)
	m.RecordPersistenceError("save")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreMutations.WithLabelValues("agent", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceWrites.WithLabelValues("file", "save", "error")))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Mutations)
	assert.Equal(t, int64(1), snap.CacheHits)
	assert.Equal(t, int64(2), snap.CacheMisses)
	assert.Equal(t, int64(1), snap.PersistenceErrors)
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/api/agents/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/metrics", gin.WrapH(Handler(m)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/agents/agent_1", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/agents/:id", "404")))
	assert.Equal(t, int64(1), m.Snapshot().TotalErrors)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "agentregistry_http_requests_total")
}
