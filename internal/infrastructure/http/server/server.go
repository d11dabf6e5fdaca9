// Package server provides the HTTP server and route table
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"github.com/pantrychef/backend/internal/infrastructure/config"
	"github.com/pantrychef/backend/internal/infrastructure/http/handlers"
	"github.com/pantrychef/backend/internal/infrastructure/http/middleware"
	"github.com/pantrychef/backend/internal/infrastructure/monitoring"
)

const defaultRequestTimeout = 60 * time.Second

// Handlers groups the REST handlers mounted by the server
type Handlers struct {
	Pantry  *handlers.PantryHandlers
	Kitchen *handlers.KitchenHandlers
	Health  *handlers.HealthHandlers
}

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	logger   *zap.Logger
	handlers Handlers
	metrics  *monitoring.MetricsCollector
	limiter  *middleware.RateLimiter
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new HTTP server instance. metrics and limiter may be nil.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	h Handlers,
	metrics *monitoring.MetricsCollector,
	limiter *middleware.RateLimiter,
) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger.Named("http-server"),
		handlers: h,
		metrics:  metrics,
		limiter:  limiter,
	}

	s.router = s.setupRouter()

	s.server = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	return s
}

// Router exposes the configured handler
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	fallback := handlers.NewFallback(s.logger)
	r.NotFound(fallback.NotFound)
	r.MethodNotAllowed(fallback.MethodNotAllowed)

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)

	timeout := s.config.Server.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	r.Use(chimiddleware.Timeout(timeout))

	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware)
	}
	r.Use(middleware.Security(s.config.IsProduction()))
	r.Use(middleware.CORS(s.config.Server.AllowedOrigins))

	if s.config.Server.EnableCompression {
		r.Use(middleware.Compression(5))
	}

	if s.config.Monitoring.EnableTracing {
		r.Use(otelhttp.NewMiddleware(s.config.App.Name,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		))
	}

	s.setupHealthRoutes(r)
	s.setupPantryRoutes(r)
	s.setupKitchenRoutes(r)

	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Handle("/metrics", s.metrics.Handler())
	}

	return r
}

func (s *Server) setupHealthRoutes(r chi.Router) {
	h := s.handlers.Health

	r.Get("/api/health", h.Health)
	r.Get("/health", h.Health)
	r.Get("/api/ready", h.Ready)
}

// setupPantryRoutes mounts pantry CRUD with the legacy paths older clients call
func (s *Server) setupPantryRoutes(r chi.Router) {
	h := s.handlers.Pantry

	r.Route("/api/pantry", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Post("/add", h.Add)
		r.Put("/{id}", h.Update)
		r.Put("/update/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Delete("/delete/{id}", h.Delete)
	})

	r.Get("/pantry", h.List)
	r.Post("/pantry", h.Add)
	r.Delete("/pantry/{id}", h.Delete)

	r.Post("/api/shopping-list", h.ShoppingList)
	r.Post("/shopping-list", h.ShoppingList)
}

// setupKitchenRoutes mounts the generation endpoints behind the rate limiter
func (s *Server) setupKitchenRoutes(r chi.Router) {
	h := s.handlers.Kitchen

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Handler)
		}

		r.Post("/api/generate_recipe", h.GenerateRecipe)
		r.Post("/api/meal-plan", h.MealPlan)
		r.Post("/api/plan-meal", h.PlanMeal)
		r.Post("/plan-meal", h.PlanMeal)
	})
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	// Enable HTTP/2
	if err := http2.ConfigureServer(s.server, nil); err != nil {
		s.logger.Error("Failed to configure HTTP/2", zap.Error(err))
	}

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
