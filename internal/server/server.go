package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/kintari/internal/app"
	"github.com/ternarybob/kintari/internal/common"
)

// Server manages the HTTP server and routes
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server
}

// New creates a new HTTP server with the given app
func New(application *app.App) *Server {
	s := &Server{
		app: application,
	}

	s.router = s.setupRoutes()

	// Uploads block on extraction and chat blocks on the model, so writes get the longer of the two plus slack
	cfg := application.Config
	work := common.ParseDuration(cfg.Extraction.Timeout, 60*time.Second)
	if model := common.ParseDuration(cfg.Chat.ModelTimeout, 30*time.Second); model > work {
		work = model
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: work + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler returns the full middleware-wrapped handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.app.Logger.Info().
		Str("address", s.server.Addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
