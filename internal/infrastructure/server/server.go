package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentOS/agentregistry/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/tracing"
)

const shutdownTimeout = 15 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	components *Components
	tracer     *tracing.Tracer
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing Agent Registry",
		zap.String("port", cfg.Server.Port),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("ledger_mode", cfg.Ledger.Mode),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("agent-registry", logger.Component("tracing"))

	components, err := Build(ctx, cfg, logger.Logger, metrics)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := NewRouter(cfg, components, logger.Logger, metrics, tracer)

	logger.Info("Server initialized successfully", zap.Int("agents", components.Store.Len()))

	return &Server{
		router:     router,
		components: components,
		tracer:     tracer,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
	}, nil
}

// NewRouter mounts middleware and every route over components
func NewRouter(cfg *config.Config, c *Components, logger *zap.Logger, metrics *monitoring.Metrics, tracer *tracing.Tracer) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	if tracer != nil {
		router.Use(tracing.HTTPMiddleware(tracer))
	}
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Store:           c.Store,
		Discovery:       c.Discovery,
		Management:      c.Management,
		Ledger:          c.Ledger,
		Engine:          c.Engine,
		DefaultPageSize: cfg.Query.DefaultPageSize,
		Logger:          logger.Named("http"),
	})
	handlers.Register(router)

	router.GET("/ws/events", c.Hub.HandleConnection)
	router.GET("/metrics", gin.WrapH(monitoring.Handler(metrics)))

	return router
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// Close releases every component
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	err := s.components.Close()
	if err != nil {
		s.logger.Error("Failed to close components", zap.Error(err))
	}
	s.tracer.Close()

	_ = s.logger.Sync()
	return err
}
