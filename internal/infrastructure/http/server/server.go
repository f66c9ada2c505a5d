// Package server wires the chi router, middleware stack and API routes.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/macroplan/v1/internal/infrastructure/config"
	"github.com/macroplan/v1/internal/infrastructure/http/handlers"
	"github.com/macroplan/v1/internal/infrastructure/http/middleware"
	"github.com/macroplan/v1/internal/infrastructure/monitoring"
	"github.com/macroplan/v1/internal/ports/inbound"
	"github.com/macroplan/v1/internal/ports/outbound"
	"github.com/macroplan/v1/pkg/healthcheck"
	"go.uber.org/zap"
)

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	router  *chi.Mux
	server  *http.Server
	suggest *handlers.SuggestHandlers
	health  *healthcheck.HealthCheck
	metrics *monitoring.MetricsCollector
}

// NewServer creates a new HTTP server instance
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	suggestionService inbound.SuggestionService,
	gateway outbound.ProviderGateway,
	health *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
) *Server {
	s := &Server{
		config:  cfg,
		logger:  logger,
		suggest: handlers.NewSuggestHandlers(suggestionService, gateway, logger),
		health:  health,
		metrics: metrics,
	}

	s.router = s.setupRouter()
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	if s.metrics != nil {
		r.Use(middleware.Metrics(s.metrics))
	}
	r.Use(chimiddleware.Timeout(s.config.Server.RequestTimeout))

	r.Get("/health", s.health.Handler())
	r.Get("/health/live", s.health.LivenessHandler())
	r.Get("/health/ready", s.health.ReadinessHandler())
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(s.config.Auth.JWTSecret, s.logger))

		r.Route("/ai", func(r chi.Router) {
			r.Post("/suggest", s.suggest.Submit)
			r.Get("/suggest/{id}", s.suggest.Poll)
			r.Post("/suggest/{id}/cancel", s.suggest.Cancel)
			r.Get("/models", s.suggest.Models)
		})
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting http server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// Router exposes the router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
