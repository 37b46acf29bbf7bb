package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/observability/metrics"
	"tlwd-backend/internal/usecase/notify"
)

// Pinger is the subset of *sql.DB the health checks need.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"`  // "OK" or "ERROR"
	Message   string                 `json:"message"` // "Server is running" or the failing check
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus reports one dependency.
type CheckStatus struct {
	Status  string         `json:"status"` // "healthy", "degraded" or "unhealthy"
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ListenerHealth exposes the breaker state of the event listeners.
type ListenerHealth interface {
	GetListenerHealth() []notify.ListenerHealthStatus
}

// HealthHandler answers GET /health. It returns 503 when the database ping
// fails. An open listener breaker only degrades the listeners check.
type HealthHandler struct {
	DB        Pinger
	Listeners ListenerHealth
	Version   string
	Now       func() time.Time
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}

	resp := HealthResponse{
		Status:    "OK",
		Message:   "Server is running",
		Timestamp: now().UTC().Format(time.RFC3339),
		Version:   h.Version,
		Checks:    map[string]CheckStatus{},
	}
	code := http.StatusOK

	db := h.checkDatabase(ctx)
	resp.Checks["database"] = db
	if db.Status == "unhealthy" {
		resp.Status = "ERROR"
		resp.Message = "Database unavailable"
		code = http.StatusServiceUnavailable
	}
	if h.Listeners != nil {
		resp.Checks["listeners"] = checkListeners(h.Listeners.GetListenerHealth())
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{Status: "unhealthy", Message: "not configured"}
	}
	start := time.Now()
	err := h.DB.PingContext(ctx)
	metrics.RecordDBQuery("ping", time.Since(start))
	if err != nil {
		slog.Default().Warn("health: database ping failed", slog.Any("error", respond.SanitizeError(err)))
		return CheckStatus{Status: "unhealthy", Message: respond.SanitizeError(err)}
	}

	sqlDB, ok := h.DB.(*sql.DB)
	if !ok {
		return CheckStatus{Status: "healthy"}
	}

	stats := sqlDB.Stats()
	metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
		details["utilization_percent"] = utilization
		if utilization >= 80.0 {
			return CheckStatus{Status: "degraded", Message: "connection pool utilization above 80%", Details: details}
		}
	}
	return CheckStatus{Status: "healthy", Details: details}
}

func checkListeners(statuses []notify.ListenerHealthStatus) CheckStatus {
	details := make(map[string]any, len(statuses))
	check := CheckStatus{Status: "healthy", Details: details}
	for _, st := range statuses {
		details[st.Name] = st.State
		if st.CircuitBreakerOpen {
			check.Status = "degraded"
			check.Message = "listener circuit open"
		}
	}
	return check
}

// ReadyHandler answers the readiness probe: 200 "ready" once the database answers.
type ReadyHandler struct {
	DB Pinger
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler answers the liveness probe and never touches dependencies.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("alive"))
}
