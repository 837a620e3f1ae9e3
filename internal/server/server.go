// Package server exposes the placement pipeline as a JSON HTTP API.
//
// Routes:
//
//	POST /v1/scenes      store a scene document, returns its hash
//	POST /v1/placements  run one placement search against an inline or stored scene
//	GET  /healthz        liveness probe
//	GET  /version        build version
//	GET  /metrics        Prometheus exposition (when metrics are enabled)
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/spotfinder/pkg/buildinfo"
	"github.com/matzehuels/spotfinder/pkg/config"
	"github.com/matzehuels/spotfinder/pkg/observability"
	"github.com/matzehuels/spotfinder/pkg/pipeline"
)

// Server serves the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	metrics *observability.Metrics
	logger  *log.Logger
	cfg     config.Config
}

// New creates a server. metrics may be nil to disable /metrics.
func New(runner *pipeline.Runner, metrics *observability.Metrics, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:  runner,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.withRequestID)
	r.Use(s.instrument)

	r.Get("/healthz", handleHealthCheck)
	r.Get("/version", s.handleVersion)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/scenes", s.handleStoreScene)
		r.Post("/placements", s.handlePlacement)
	})
	return r
}

// HTTPServer builds an http.Server for addr using the configured timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
}

// ListenAndServe runs srv until ctx is done, then shuts it down gracefully.
func ListenAndServe(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutting down the server failed", "addr", srv.Addr, "err", err)
		return err
	}
	logger.Info("stopping server", "addr", srv.Addr)
	return nil
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, buildinfo.Get())
}
