package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/upbit-mcp/internal/app"
	"github.com/bobmcallan/upbit-mcp/internal/common"
)

// Server manages the HTTP server and routes.
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
	logger *common.Logger
}

// New creates a new HTTP server with the given app.
func New(application *app.App) *Server {
	s := &Server{
		app:    application,
		logger: application.Logger,
	}

	s.router = s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.withMiddleware(s.router),
		// a tool call can spend up to (retries+1) upstream timeouts plus backoff
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.server.Addr).
		Str("url", fmt.Sprintf("http://%s/mcp", s.server.Addr)).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
