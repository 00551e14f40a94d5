package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/davidbz/kiln/internal/config"
	"github.com/davidbz/kiln/internal/http/middleware"
	"github.com/davidbz/kiln/internal/observability"
)

// Server represents the HTTP server.
type Server struct {
	config      config.ServerConfig
	handler     *Handler
	middlewares middleware.Middleware
	srv         *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.ServerConfig,
	handler *Handler,
	middlewares middleware.Middleware,
) *Server {
	s := &Server{
		config:      *cfg,
		handler:     handler,
		middlewares: middlewares,
	}
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
	return s
}

// Routes returns the routed handler wrapped in the middleware chain.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/rank", s.handler.HandleRank)
	mux.HandleFunc("POST /v1/detail", s.handler.HandleDetail)
	mux.HandleFunc("POST /v1/alternatives", s.handler.HandleAlternatives)
	mux.HandleFunc("POST /v1/context", s.handler.HandleContext)
	mux.HandleFunc("POST /v1/scenario", s.handler.HandleScenario)
	mux.HandleFunc("POST /v1/thoughts", s.handler.HandleThoughts)
	mux.HandleFunc("DELETE /v1/inflight/{fingerprint}", s.handler.HandleCancel)

	mux.HandleFunc("GET /v1/usage", s.handler.HandleUsage)
	mux.HandleFunc("POST /v1/usage/flush", s.handler.HandleUsageFlush)
	mux.HandleFunc("DELETE /v1/usage", s.handler.HandleUsageReset)

	mux.HandleFunc("GET /health", s.handler.HandleHealth)

	if s.middlewares == nil {
		return mux
	}
	return s.middlewares(mux)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	ctx := context.Background()
	observability.FromContext(ctx).Info("starting HTTP server", observability.Int("port", s.config.Port))

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.FromContext(ctx).Info("shutting down HTTP server")

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
