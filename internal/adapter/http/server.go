// Package http exposes the fetch process over HTTP: liveness, fetch
// progress, and Prometheus metrics. The analysis itself has no server
// surface; this exists so a long fetch run can be watched.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Progress tracks how far a fetch run has come. It is safe for concurrent
// use; the fetch loop updates it while the server reads it.
type Progress struct {
	chunksDone  atomic.Int64
	chunksTotal atomic.Int64
}

// SetTotal records how many chunks the run will fetch in total.
func (p *Progress) SetTotal(n int) {
	p.chunksTotal.Store(int64(n))
}

// ChunkDone marks one chunk as fetched (successfully or skipped).
func (p *Progress) ChunkDone() {
	p.chunksDone.Add(1)
}

// CheckReadiness reports an error until at least one chunk has completed,
// so orchestration can tell "starting up" from "making progress".
func (p *Progress) CheckReadiness(_ context.Context) error {
	if p.chunksDone.Load() == 0 {
		return errors.New("no chunks fetched yet")
	}
	return nil
}

func (p *Progress) snapshot() map[string]int64 {
	return map[string]int64{
		"chunks_done":  p.chunksDone.Load(),
		"chunks_total": p.chunksTotal.Load(),
	}
}

// Server exposes health, readiness, progress, and metrics HTTP endpoints
// for a running fetch.
type Server struct {
	httpServer *http.Server
	progress   *Progress
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /progress, and
// /metrics routes.
func NewServer(addr string, progress *Progress, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		progress: progress,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /progress", s.handleProgress)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.progress.CheckReadiness(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.progress.snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
