package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumina/partnerdesk/internal/auth"
)

// Server wraps the HTTP stack: router, handlers and the net/http server.
type Server struct {
	handler  http.Handler
	handlers *Handlers
	router   *chi.Mux
	server   *http.Server
}

// NewServer assembles the router over the handler set.
func NewServer(h *Handlers, hc *HealthChecker, authManager *auth.Manager, cronSecret string, allowedOrigins []string) *Server {
	router := SetupRoutes(h, hc, authManager, cronSecret, allowedOrigins)
	return &Server{
		handler:  router,
		handlers: h,
		router:   router,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
