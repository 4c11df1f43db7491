// Package server exposes the conversation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/olsonja88/ICS499-Bears/internal/auth"
	"github.com/olsonja88/ICS499-Bears/internal/chat"
	"github.com/olsonja88/ICS499-Bears/internal/metrics"
)

// shutdownTimeout bounds how long in-flight requests get to finish.
const shutdownTimeout = 10 * time.Second

// Server wires the HTTP surface to the chat service.
type Server struct {
	service   *chat.Service
	sessions  *chat.SessionStore
	inspector *auth.Inspector
	collector *metrics.Collector
	strict    bool
	logger    *slog.Logger

	http *http.Server
}

// New creates a server listening on addr. With strict set, requests
// carrying an invalid credential are rejected instead of degraded to the
// viewer role.
func New(
	addr string,
	service *chat.Service,
	sessions *chat.SessionStore,
	inspector *auth.Inspector,
	collector *metrics.Collector,
	strict bool,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service:   service,
		sessions:  sessions,
		inspector: inspector,
		collector: collector,
		strict:    strict,
		logger:    logger,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(RequestLogging(logger), gin.Recovery())

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/api/stats", s.handleStats)
	engine.POST("/api/ask", s.handleAsk)
	engine.DELETE("/api/ask/history", s.handleResetHistory)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
	return s
}

// Handler returns the HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
