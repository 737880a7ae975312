// Package web serves comparisons over HTTP: clients upload two CSV files,
// receive a report, and can then page and sort its tables by report ID.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tordrt/tablediff/internal/config"
	"github.com/tordrt/tablediff/internal/table"
	"github.com/tordrt/tablediff/internal/web/middleware"
)

// Server is the HTTP server for the comparison API.
type Server struct {
	cfg       *config.Config
	tokenizer table.Tokenizer
	reports   *reportStore
	router    *chi.Mux
	server    *http.Server
}

// NewServer creates a Server from validated configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	reports, err := newReportStore(cfg.Server.ReportCacheSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		tokenizer: table.Tokenizer{DoubledQuoteLiteral: cfg.Compare.DoubledQuotes},
		reports:   reports,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/compare", s.handleCompare)
		r.Post("/columns", s.handleColumns)

		r.Get("/reports/{id}", s.handleGetReport)
		r.Get("/reports/{id}/columns/{column}", s.handleColumnEntries)
		r.Get("/reports/{id}/missing/{side}", s.handleMissingRows)
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
