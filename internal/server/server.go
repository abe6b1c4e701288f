// Package server exposes detection over HTTP for `copycheck serve`.
//
// The reference corpus is loaded once at startup and shared read-only by
// every request. Each request builds its own vector space, so requests are
// independent; a semaphore bounds how many run at once.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"github.com/chriscorrea/copycheck/internal/config"
	"github.com/chriscorrea/copycheck/internal/detect"
	"github.com/chriscorrea/copycheck/internal/metrics"
	"github.com/chriscorrea/copycheck/internal/source"
)

// Server holds the dependencies shared by all handlers.
type Server struct {
	cfg        config.ServerConfig
	detector   *detect.Detector
	references []detect.Document
	threshold  float64
	sourceOpts source.Options
	metrics    *metrics.Metrics
	sem        *semaphore.Weighted
}

// New creates a Server. references must not be modified afterwards.
func New(cfg config.ServerConfig, detector *detect.Detector, references []detect.Document, threshold float64, sourceOpts source.Options, m *metrics.Metrics) *Server {
	if m == nil {
		m = metrics.New()
	}
	m.ReferenceDocuments.Set(float64(len(references)))

	return &Server{
		cfg:        cfg,
		detector:   detector,
		references: references,
		threshold:  threshold,
		sourceOpts: sourceOpts,
		metrics:    m,
		sem:        semaphore.NewWeighted(int64(max(cfg.MaxConcurrent, 1))),
	}
}

// StartServer starts serving handler on cfg.Addr in a goroutine and returns
// the http.Server for graceful shutdown. Listen errors are sent on the
// returned channel.
func StartServer(handler http.Handler, cfg config.ServerConfig) (*http.Server, <-chan error) {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("failed to start server: %w", err)
		}
		close(errc)
	}()

	return srv, errc
}

// ShutdownServer waits up to timeout for in-flight requests to finish.
func ShutdownServer(srv *http.Server, timeout time.Duration) error {
	slog.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("HTTP server shutdown complete")
	return nil
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(), MetricsMiddleware(s.metrics))

	router.GET("/health", s.Health)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := router.Group("/api/v1")
	if s.cfg.RateLimitRPS > 0 {
		limiter := NewRateLimiter(s.cfg.RateLimitRPS, max(1, int(s.cfg.RateLimitRPS*2)))
		api.Use(RateLimitMiddleware(limiter))
	}
	{
		api.POST("/detect", s.Detect)
		api.POST("/detect/upload", s.DetectUpload)
	}

	return router
}
