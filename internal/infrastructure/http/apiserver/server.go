// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/planifia/planner/internal/domain/shared"
	"github.com/planifia/planner/internal/infrastructure/config"
	"github.com/planifia/planner/internal/infrastructure/http/handlers"
	"github.com/planifia/planner/internal/infrastructure/http/middleware"
	"github.com/planifia/planner/internal/infrastructure/monitoring"
	"github.com/planifia/planner/internal/ports/inbound"
	apperrors "github.com/planifia/planner/pkg/errors"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker func(ctx context.Context) error

// Services groups the use cases the API exposes
type Services struct {
	Meals     inbound.MealService
	Inventory inbound.InventoryService
	Shopping  inbound.ShoppingService
	Sync      inbound.ReconciliationService
}

// Server is the planner's JSON API server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  *chi.Mux
	limiter *middleware.RateLimiter

	// background work started by Start, stopped by Shutdown
	bgCtx  context.Context
	cancel context.CancelFunc

	services Services
	metrics  *monitoring.Metrics
	checks   map[string]HealthChecker
	clock    shared.Clock
}

// NewServer creates the API server. metrics may be nil when disabled.
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	services Services,
	metrics *monitoring.Metrics,
	checks map[string]HealthChecker,
	clock shared.Clock,
) *Server {
	s := &Server{
		config:   cfg,
		logger:   log.Named("api"),
		services: services,
		metrics:  metrics,
		checks:   checks,
		clock:    clock,
	}
	s.bgCtx, s.cancel = context.WithCancel(context.Background())
	if cfg.RateLimit.Enable {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstSize, 10*time.Minute)
	}

	s.router = s.setupRoutes()

	var handler http.Handler = s.router
	if cfg.Monitoring.EnableTracing {
		handler = otelhttp.NewHandler(handler, "planifia-api")
	}

	s.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}
	return s
}

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	if s.metrics != nil {
		r.Use(middleware.Metrics(s.metrics))
	}
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	if s.config.Server.EnableCompression {
		r.Use(chimiddleware.Compress(5))
	}
	r.NotFound(s.handleNotFound)

	healthPath := s.config.Monitoring.HealthCheckPath
	if healthPath == "" {
		healthPath = "/health"
	}
	r.Get(healthPath, s.handleHealthCheck)

	if s.metrics != nil {
		metricsPath := s.config.Monitoring.MetricsPath
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.Method(http.MethodGet, metricsPath, s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Handler)
		}
		r.Use(middleware.JSONOnly())
		s.setupAPIV1Routes(r)
	})

	return r
}

func (s *Server) setupAPIV1Routes(r chi.Router) {
	mealH := handlers.NewMealHandlers(s.services.Meals, s.logger)
	invH := handlers.NewInventoryHandlers(s.services.Inventory, s.logger)
	shopH := handlers.NewShoppingHandlers(s.services.Shopping, s.services.Sync, s.clock, s.logger)

	r.Get("/dishes/resolve", mealH.Resolve)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Route("/meals", func(r chi.Router) {
			r.Get("/", mealH.List)
			r.Post("/", mealH.Schedule)
			r.Delete("/{mealID}", mealH.Delete)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", invH.List)
			r.Put("/", invH.Upsert)
			r.Post("/{itemID}/adjust", invH.Adjust)
			r.Delete("/{itemID}", invH.Delete)
		})

		r.Route("/shopping", func(r chi.Router) {
			r.Get("/", shopH.List)
			r.Post("/items", shopH.AddItem)
			r.Post("/groups/toggle", shopH.ToggleGroup)
			r.Post("/groups/delete", shopH.DeleteGroup)
			r.Get("/notes", shopH.GetNotes)
			r.Put("/notes", shopH.UpdateNotes)
			r.Get("/sync", shopH.Status)
			r.Post("/sync", shopH.Sync)
		})
	})
}

// Handler exposes the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	if s.limiter != nil {
		go s.limiter.Run(s.bgCtx, s.config.RateLimit.CleanupInterval)
	}

	s.logger.Info("Starting JSON API server", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	s.cancel()
	return s.server.Shutdown(ctx)
}

type healthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Timestamp int64             `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// handleHealthCheck runs every registered check with a short deadline
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:    "healthy",
		Service:   s.config.App.Name,
		Version:   s.config.App.Version,
		Timestamp: s.clock().Unix(),
		Checks:    make(map[string]string, len(s.checks)),
	}
	status := http.StatusOK
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// handleNotFound answers unknown routes with the error envelope
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	appErr := apperrors.NewNotFoundError("route " + r.URL.Path)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(apperrors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context()))); err != nil {
		s.logger.Error("Failed to encode not found response", zap.Error(err))
	}
}
