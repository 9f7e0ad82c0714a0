// Package api serves the latest lineup report over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/lineups/internal/domain/derive"
	"github.com/okian/lineups/internal/domain/interval"
	"github.com/okian/lineups/internal/domain/splits"
	"github.com/okian/lineups/pkg/logger"
	"github.com/okian/lineups/pkg/metrics"
)

const (
	defaultMaxLimit = 100
	defaultLimit    = 25
	defaultTimeout  = 30 * time.Second
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	RunID(ctx context.Context) string
	TopLineups(ctx context.Context, metric string, n int) ([]derive.Row, error)
	Lineup(ctx context.Context, key string) (derive.Row, error)
	LineupProgression(ctx context.Context, key string) ([]interval.Row, error)
	Combos(ctx context.Context, size int, minMinutes float64) ([]splits.ComboRow, error)
	Players(ctx context.Context, query string) ([]splits.PlayerRow, error)
}

// Server wires HTTP routes for the report API.
type Server struct {
	deps     Dependencies
	maxLimit int
	origins  []string
	timeout  time.Duration
	logger   logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMaxLimit caps the limit query parameter of /lineups.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithCORS allows browser requests from the given origins.
func WithCORS(origins ...string) Option {
	return func(s *Server) { s.origins = append(s.origins, origins...) }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:     deps,
		maxLimit: defaultMaxLimit,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.OrNop(s.logger)
	return s
}

// Router builds the chi router with all routes attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
	r.Use(LoggingMiddleware(s.logger))
	r.Use(MetricsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	r.Route("/lineups", func(r chi.Router) {
		r.Get("/", s.handleLineups)
		r.Get("/{key}", s.handleLineup)
		r.Get("/{key}/progression", s.handleProgression)
	})
	r.Get("/progression", s.handleProgression)
	r.Get("/combos", s.handleCombos)
	r.Get("/players", s.handlePlayers)
	return r
}

type healthResponse struct {
	Status string `json:"status"`
	RunID  string `json:"run_id,omitempty"`
}

// handleHealth handles GET /healthz. It reports ok even before the first
// report so orchestrators do not restart a server that is still loading.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", RunID: s.deps.RunID(r.Context())})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail writes the status mapped from err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "query failed", logger.String("path", r.URL.Path), logger.Error(err))
	}
	writeError(w, status, code, err)
}
