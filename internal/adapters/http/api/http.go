// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/growthboard/internal/adapters/cache"
	"github.com/okian/growthboard/internal/adapters/http/swagger"
	"github.com/okian/growthboard/internal/domain/model"
	"github.com/okian/growthboard/internal/domain/report"
	"github.com/okian/growthboard/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	Summary(ctx context.Context, q model.Query) (report.Summary, error)
	Chart(ctx context.Context, q model.Query) (report.Chart, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	analyticsHandler *AnalyticsHandler

	corsOrigins []string
	logger      logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	cache       cache.Store
	corsOrigins []string
	logger      logger.Logger
}

// WithCache serves repeated queries from store.
func WithCache(store cache.Store) Option {
	return func(o *serverOptions) {
		o.cache = store
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(o *serverOptions) {
		if len(origins) > 0 {
			o.corsOrigins = origins
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{corsOrigins: []string{"*"}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Named("api")
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		analyticsHandler: NewAnalyticsHandler(deps, o.cache, o.logger),
		corsOrigins:      o.corsOrigins,
		logger:           o.logger,
	}
}

// Router builds the chi router with every route and middleware attached.
func (s *Server) Router(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Method(http.MethodGet, "/metrics", MetricsHandler())
	r.Get("/api/v1/analytics", MetricsMiddleware(s.analyticsHandler.HandleAnalytics, "analytics"))
	swagger.Register(ctx, r)

	s.logger.Debug(ctx, "routes registered", logger.Int("cors_origins", len(s.corsOrigins)))
	return r
}

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) int {
	status, code, msg := classify(err)
	writeJSON(w, status, errorResponse{Success: false, Code: code, Error: msg})
	return status
}
