// Package web provides the HTTP server and handlers for the thickness
// file ingestion API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ShirinGhmm/Thickness-files/internal/config"
	"github.com/ShirinGhmm/Thickness-files/internal/core"
	"github.com/ShirinGhmm/Thickness-files/internal/staging"
	mw "github.com/ShirinGhmm/Thickness-files/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the thickness ingestion service.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes. Each thickness endpoint accepts an
// opaque application/octet-stream body; the path carries the format and the
// operation, mirroring the gauge-upload clients in the field.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/thickness", func(r chi.Router) {
		r.Post("/xlsx/data/tablebody", s.handleTable(staging.FormatSpreadsheet))
		r.Post("/txt/data/tablebody", s.handleTable(staging.FormatText))

		r.Post("/xlsx/data/databasevaluesbody", s.handleDatabaseValues(staging.FormatSpreadsheet))
		r.Post("/txt/data/databasevaluesbody", s.handleDatabaseValues(staging.FormatText))

		r.Post("/xlsx/validation/body", s.handleValidation(staging.FormatSpreadsheet))
		r.Post("/txt/validation/body", s.handleValidation(staging.FormatText))
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
