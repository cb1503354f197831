package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/avivbaron/uri-analyzer/internal/cache"
	"github.com/avivbaron/uri-analyzer/internal/metrics"
	"github.com/avivbaron/uri-analyzer/internal/ratelimit"
)

type Deps struct {
	Cache        cache.Cache
	Visits       Visits
	Records      func() int // optional, surfaced by /ready
	DefaultLevel int
	MaxBodyBytes int64
	CORSOrigins  []string
}

type Server struct {
	srv    *http.Server
	logger zerolog.Logger
	deps   Deps
}

func New(addr string, logger zerolog.Logger, limiter *ratelimit.Limiter, deps Deps, metricsEnabled bool) *Server {
	s := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(logger, limiter, deps, metricsEnabled),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{srv: s, logger: logger, deps: deps}
}

// NewRouter builds the full handler tree; tests drive it through httptest.
func NewRouter(logger zerolog.Logger, limiter *ratelimit.Limiter, deps Deps, metricsEnabled bool) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", HandleHealth())
	mux.HandleFunc("GET /ready", HandleReady(deps))
	mux.HandleFunc("GET /version", HandleVersion())

	if metricsEnabled {
		metrics.Init(true)
		mux.Handle("GET /metrics", metrics.Handler())
	}

	if deps.Visits != nil {
		h := NewHandler(deps.Visits, deps.DefaultLevel, deps.MaxBodyBytes)
		mux.HandleFunc("POST /api/visits", h.handleIngest)
		mux.HandleFunc("GET /api/visits/domains", h.handleDomains)
		mux.HandleFunc("GET /api/visits/sites", h.handleSites)
	}

	chain := mwChain(
		mwRecover(),
		mwRequestID(),
		mwCORS(deps.CORSOrigins),
		mwRateLimit(limiter),
		mwMetrics(),
		mwAccessLog(logger),
	)
	return chain(mux)
}

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
