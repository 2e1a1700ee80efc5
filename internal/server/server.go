package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thinkscotty/stylebot/internal/config"
	"github.com/thinkscotty/stylebot/internal/models"
)

// StatsSource reads the rewrite log.
type StatsSource interface {
	GetStats() (models.Stats, error)
	RecentRewrites(limit int) ([]models.RewriteLog, error)
}

// Server is the keep-alive HTTP endpoint hosting platforms ping, plus a small
// status API.
type Server struct {
	cfg     config.ServerConfig
	stats   StatsSource
	version string
	started time.Time
	router  *chi.Mux
	httpSrv *http.Server
}

func New(cfg config.ServerConfig, stats StatsSource, version string) *Server {
	s := &Server{
		cfg:     cfg,
		stats:   stats,
		version: version,
		started: time.Now(),
		router:  chi.NewRouter(),
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(recoveryMiddleware)
	s.router.Use(loggingMiddleware)
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.With(s.requireStatsKey).Get("/stats", s.handleStats)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second,
	}

	slog.Info("Starting server", "addr", addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
