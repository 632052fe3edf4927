// Package server provides the HTTP API for sentembed.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/sentembed/internal/config"
	"github.com/hyperjump/sentembed/internal/metrics"
	"github.com/hyperjump/sentembed/internal/model"
	"go.uber.org/zap"
)

// Server is the HTTP server for the embedding API.
type Server struct {
	manager *model.Manager
	config  *config.Config
	metrics *metrics.Metrics
	logger  *zap.Logger
	version string
	server  *http.Server
}

// NewServer creates a server with the given dependencies. met may be nil.
func NewServer(
	manager *model.Manager,
	cfg *config.Config,
	met *metrics.Metrics,
	logger *zap.Logger,
	version string,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		manager: manager,
		config:  cfg,
		metrics: met,
		logger:  logger,
		version: version,
	}
	s.server = &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: s.Router(),
	}
	return s
}

// Router builds the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.config.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.Server.RequestTimeout))
	}
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleInfo)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/embed", s.handleEmbed)
		r.Post("/embed/batch", s.handleEmbedBatch)
		r.Post("/similar", s.handleSimilar)
	})

	if s.metrics != nil && s.config.Metrics.EnabledOrDefault() {
		r.Handle(s.config.Metrics.Path, s.metrics.Handler())
	}
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
