// Package server exposes the router over HTTP: JSON endpoints for routing
// and classification, and an SSE endpoint that routes then streams a
// provider response.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/zen-systems/helmsman/pkg/adapter"
	"github.com/zen-systems/helmsman/pkg/analytics"
	"github.com/zen-systems/helmsman/pkg/config"
	"github.com/zen-systems/helmsman/pkg/router"
)

// Server serves routing decisions over HTTP.
type Server struct {
	router   *router.Router
	registry *adapter.Registry
	store    *analytics.Store
	pricing  config.PricingTable
	logger   *slog.Logger

	http            *http.Server
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry sets the provider registry used by the chat endpoint.
func WithRegistry(registry *adapter.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithStore sets the analytics store. Decisions are recorded best-effort;
// store failures are logged and never block a response.
func WithStore(store *analytics.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithPricing sets the table used to attach cost estimates to chat responses.
func WithPricing(pricing config.PricingTable) Option {
	return func(s *Server) {
		s.pricing = pricing
	}
}

// New builds a Server around a router.
func New(rt *router.Router, cfg config.ServerConfig, opts ...Option) *Server {
	s := &Server{
		router:          rt,
		logger:          slog.New(slog.NewTextHandler(os.Stderr, nil)),
		shutdownTimeout: cfg.ShutdownTimeout(),
	}

	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("system", "http")

	chain := &Chain{}
	chain.Use(RequestID())
	chain.Use(Logger(s.logger))
	if cfg.RatePerSec > 0 {
		chain.Use(RateLimit(rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst)))
	}

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      chain.Apply(s.routes()),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}

	return s
}

// Handler returns the fully wrapped HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/route", s.handleRoute)
	mux.HandleFunc("POST /v1/classify", s.handleClassify)
	mux.HandleFunc("POST /v1/chat", s.handleChat)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown error", "error", err)
		return err
	}
	s.logger.Info("server shutdown complete")
	return nil
}

// record persists a decision if a store is configured.
func (s *Server) record(ctx context.Context, prompt string, d router.Decision) {
	if s.store == nil {
		return
	}
	if err := s.store.Insert(ctx, analytics.FromDecision(prompt, d)); err != nil {
		s.logger.Error("record decision", "error", err)
	}
}
