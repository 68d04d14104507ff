// Package server provides the HTTP server for the meal plan API
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealplan/internal/infrastructure/config"
	"github.com/alchemorsel/mealplan/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/mealplan/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealplan/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealplan/pkg/healthcheck"
)

// APIPrefix is the mount point of the REST API
const APIPrefix = "/api/v1"

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *zap.Logger
	router *chi.Mux
	server *http.Server
}

// NewServer creates a new HTTP server instance. metrics may be nil when
// metrics are disabled.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	api *handlers.APIHandlers,
	health *healthcheck.HealthCheck,
	metrics *monitoring.Metrics,
) *Server {
	s := &Server{
		config: cfg,
		logger: logger.Named("server"),
	}

	s.router = s.setupRouter(api, health, metrics)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           otelhttp.NewHandler(s.router, "mealplan-api"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter(api *handlers.APIHandlers, health *healthcheck.HealthCheck, metrics *monitoring.Metrics) *chi.Mux {
	mw := middleware.New(s.config, s.logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	if metrics != nil {
		r.Use(metrics.HTTPMiddleware)
	}
	r.Use(middleware.Security)

	r.Get(s.config.Monitoring.HealthCheckPath, health.Handler())
	r.Get("/live", health.LivenessHandler())
	r.Get("/ready", health.ReadinessHandler())

	if metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Handle(s.config.Monitoring.MetricsPath, metrics.Handler())
	}

	r.Route(APIPrefix, func(r chi.Router) {
		if s.config.RateLimit.Enable {
			r.Use(mw.RateLimit)
		}
		r.Use(chimiddleware.AllowContentType("application/json"))
		api.Routes(r)
	})

	return r
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
