// Package http provides the Gin HTTP API server for the pipeline.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	eventsHTTP "github.com/allisson/rfp-pipeline/internal/events/http"
	ingestionHTTP "github.com/allisson/rfp-pipeline/internal/ingestion/http"
	"github.com/allisson/rfp-pipeline/internal/metrics"
	"github.com/allisson/rfp-pipeline/internal/pipeline"
	workItemHTTP "github.com/allisson/rfp-pipeline/internal/workitem/http"
)

// RouterConfig holds the handlers and middleware settings for the API router.
type RouterConfig struct {
	IngestionHandler *ingestionHTTP.IngestionHandler
	WorkItemHandler  *workItemHTTP.WorkItemHandler
	EventHandler     *eventsHTTP.EventHandler

	// PipelineHealth reports per-consumer liveness when a coordinator runs in
	// this process; nil omits the endpoint's consumer section.
	PipelineHealth func() []pipeline.ConsumerHealth

	CORSEnabled      bool
	CORSAllowOrigins string

	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int

	// MeterProvider enables HTTP request metrics when non-nil.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
}

// Server represents the HTTP API server.
type Server struct {
	db     *sql.DB
	router *gin.Engine
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new HTTP server.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the Gin router with middleware and registers all routes.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	// Health and readiness endpoints
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	if cfg.PipelineHealth != nil {
		router.GET("/v1/pipeline/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"consumers": cfg.PipelineHealth()})
		})
	}

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	if cfg.IngestionHandler != nil {
		v1.POST("/work-items", cfg.IngestionHandler.CreateHandler)
	}

	if cfg.WorkItemHandler != nil {
		v1.GET("/work-items", cfg.WorkItemHandler.ListHandler)
		v1.GET("/work-items/:id", cfg.WorkItemHandler.GetHandler)
		v1.PUT("/work-items/:id/status", cfg.WorkItemHandler.UpdateStatusHandler)
	}

	if cfg.EventHandler != nil {
		v1.GET("/events/dead-letters", cfg.EventHandler.ListDeadLettersHandler)
		v1.POST("/events/dead-letters/:id/requeue", cfg.EventHandler.RequeueHandler)
	}

	s.router = router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness to serve traffic, checking the database.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else if err := s.db.PingContext(c.Request.Context()); err != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// Start starts the HTTP server. SetupRouter must be called first.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not initialized: call SetupRouter before Start")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
