package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/adapter"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/query"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "0.3.0"

// Deps are the components the handlers serve
type Deps struct {
	Store           *registry.Store
	Discovery       *adapter.Discovery
	Management      *adapter.Management
	Ledger          *adapter.Ledger
	Engine          *query.Engine
	DefaultPageSize int
	Logger          *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store           *registry.Store
	discovery       *adapter.Discovery
	management      *adapter.Management
	ledger          *adapter.Ledger
	engine          *query.Engine
	sanitizer       *utils.Sanitizer
	defaultPageSize int
	logger          *zap.Logger
	started         time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pageSize := d.DefaultPageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return &Handlers{
		store:           d.Store,
		discovery:       d.Discovery,
		management:      d.Management,
		ledger:          d.Ledger,
		engine:          d.Engine,
		sanitizer:       utils.NewSanitizer(),
		defaultPageSize: pageSize,
		logger:          logger,
		started:         time.Now(),
	}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	api := r.Group("/api")

	// Discovery
	api.GET("/agents", h.SearchAgents)
	api.GET("/agents/:id", h.GetAgent)
	api.GET("/stats", h.Stats)
	api.POST("/discovery/agents/:id/rating", h.RateAgent)

	// Management
	manage := api.Group("/manage/agents")
	manage.POST("", h.CreateAgent)
	manage.GET("", h.ListManaged)
	manage.GET("/:id", h.GetManaged)
	manage.PATCH("/:id", h.UpdateAgent)
	manage.PUT("/:id/status", h.SetStatus)
	manage.DELETE("/:id", h.DeleteAgent)

	// Ledger
	ledger := api.Group("/ledger/agents")
	ledger.GET("", h.ListRegistered)
	ledger.POST("/:id/register", h.RegisterAgent)
	ledger.POST("/:id/sync", h.SyncAgent)
	ledger.DELETE("/:id", h.UnregisterAgent)
	ledger.POST("/:id/contracts", h.DeployContract)
	ledger.GET("/:id/contracts", h.ListContracts)

	// Query cache
	api.GET("/cache/stats", h.CacheStats)
	api.DELETE("/cache", h.ClearCache)
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Agent Registry",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"agents":    h.store.Len(),
		"contracts": len(h.store.ListContracts()),
		"cache":     h.engine.CacheStats(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
	})
}

// Stats returns aggregate registry statistics
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Stats())
}

// CacheStats reports query cache counters
func (h *Handlers) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.CacheStats())
}

// ClearCache drops every cached query page
func (h *Handlers) ClearCache(c *gin.Context) {
	h.engine.ClearCache()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
