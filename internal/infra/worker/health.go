package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// RunStatus describes the most recent sweep.
type RunStatus struct {
	StartedAt  time.Time `json:"startedAt"`
	DurationMS int64     `json:"durationMs"`
	Checked    int       `json:"checked"`
	Error      string    `json:"error,omitempty"`
}

// HealthServer serves the probes and the metrics of the worker:
//
//	GET /health        always 200
//	GET /health/ready  200 once SetReady(true), else 503; includes the last run
//	GET /metrics       the given handler, when set
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	metrics http.Handler
	ready   atomic.Bool

	mu      sync.RWMutex
	lastRun *RunStatus
	server  *http.Server
}

func NewHealthServer(addr string, metrics http.Handler, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthServer{addr: addr, metrics: metrics, logger: logger}
}

// Handler returns the probe routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
	return mux
}

// Start serves until ctx is cancelled and then shuts down within 5s. It
// returns http.ErrServerClosed after a clean shutdown.
func (h *HealthServer) Start(ctx context.Context) error {
	h.mu.Lock()
	h.server = &http.Server{
		Addr:              h.addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	srv := h.server
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("health server failed", slog.Any("error", err))
		}
		return err
	}
}

func (h *HealthServer) SetReady(ready bool) {
	h.ready.Store(ready)
	h.logger.Info("worker readiness changed", slog.Bool("ready", ready))
}

// RecordRun keeps st for the readiness response.
func (h *HealthServer) RecordRun(st RunStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRun = &st
}

type healthResponse struct {
	Status  string     `json:"status"`
	LastRun *RunStatus `json:"lastRun,omitempty"`
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.write(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	var last *RunStatus
	if h.lastRun != nil {
		cp := *h.lastRun
		last = &cp
	}
	h.mu.RUnlock()

	if !h.ready.Load() {
		h.write(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready", LastRun: last})
		return
	}
	h.write(w, http.StatusOK, healthResponse{Status: "ok", LastRun: last})
}

func (h *HealthServer) write(w http.ResponseWriter, code int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("failed to encode health response", slog.Any("error", err))
	}
}
