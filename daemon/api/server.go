// Package api wires the agent's two HTTP surfaces onto one chi router: the
// hand-rolled device exposition at GET /metrics (spec.md §6) and the
// agent's own process-health metrics at /internal/metrics via
// promhttp.Handler(), grounded in services/api/router.go's route-grouping
// style and services/api/metrics.go's promauto registry split.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/all-smi-go/agent/daemon/logger"
)

// Scraper is the subset of exporter.Scraper the HTTP layer depends on,
// kept as a local interface so daemon/api never imports daemon/exporter's
// concrete type directly.
type Scraper interface {
	Render(ctx context.Context) string
	DeviceCount(ctx context.Context) int
}

// Server is the agent's local HTTP surface.
type Server struct {
	httpServer *http.Server
	ready      atomic.Bool
}

// NewServer builds the chi router and binds it to bindAddress. The server
// is not started until Serve is called.
func NewServer(bindAddress string, scraper Scraper, readTimeout, writeTimeout time.Duration) *Server {
	s := &Server{}
	s.ready.Store(true)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(readTimeout))

	r.Get("/metrics", s.handleScrape(scraper))
	r.Get("/internal/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/healthz", s.handleHealthz)

	s.httpServer = &http.Server{
		Addr:         bindAddress,
		Handler:      r,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// handleScrape serves the device exposition text, per spec.md §6's response
// contract: 200 with explicit Content-Length/Cache-Control/Connection
// headers, or 503 once the server has begun shutting down.
func (s *Server) handleScrape(scraper Scraper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			http.Error(w, "Service temporarily unavailable", http.StatusServiceUnavailable)
			return
		}

		start := time.Now()
		body := scraper.Render(r.Context())
		deviceCount := scraper.DeviceCount(r.Context())
		duration := time.Since(start)

		scrapeDuration.Observe(duration.Seconds())
		scrapeDeviceCount.Set(float64(deviceCount))
		logger.LogScrapeRequest(r.RemoteAddr, deviceCount, duration)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "max-age=2, must-revalidate")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

// handleHealthz reports liveness/readiness separately from the scrape
// endpoint, so an orchestrator can distinguish "process is up" from "device
// data is servable".
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Serve blocks, running the HTTP server until ctx is cancelled, at which
// point it marks the server non-ready, stops accepting new scrapes, and
// performs a bounded graceful shutdown, per spec.md §5's shutdown sequence.
func (s *Server) Serve(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.ready.Store(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
