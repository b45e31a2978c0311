package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Middleware creates a Gin middleware for metrics collection.
// Routes are labelled by their template so ids do not explode cardinality.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Handler exposes the metrics in Prometheus text format
func Handler(metrics *Metrics) http.Handler {
	return promhttp.HandlerFor(metrics.Gatherer(), promhttp.HandlerOpts{})
}

// Timer measures a ledger gateway operation
type Timer struct {
	start     time.Time
	metrics   *Metrics
	operation string
}

// NewTimer starts timing operation
func NewTimer(metrics *Metrics, operation string) *Timer {
	return &Timer{
		start:     time.Now(),
		metrics:   metrics,
		operation: operation,
	}
}

// Stop records the duration with status
func (t *Timer) Stop(status string) {
	t.metrics.RecordLedgerCall(t.operation, status, time.Since(t.start))
}
