// Package http provides the HTTP surface of the digest service:
// subscription management, the manual cycle trigger, health checks and
// Prometheus metrics.
package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"newsdigest/internal/repository"
)

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the status of a single health check.
type CheckStatus struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthHandler reports whether the service can run a cycle: the
// recipient store must be readable, and the database reachable when
// the postgres backend is active.
type HealthHandler struct {
	Repo    repository.RecipientRepository
	DB      *sql.DB // nil for the file backend
	Version string
}

// ServeHTTP performs the health checks. Returns 200 when every check
// passes and 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	allHealthy := true

	storeCheck := h.checkStore(ctx)
	checks["recipient_store"] = storeCheck
	if storeCheck.Status != "healthy" {
		allHealthy = false
	}

	if h.DB != nil {
		dbCheck := h.checkDatabase(ctx)
		checks["database"] = dbCheck
		if dbCheck.Status != "healthy" {
			allHealthy = false
		}
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("health: failed to encode response", slog.Any("error", err))
	}
}

// checkStore verifies the recipient list is readable. An unreadable
// store is the one condition that makes a cycle impossible.
func (h *HealthHandler) checkStore(ctx context.Context) CheckStatus {
	if h.Repo == nil {
		return CheckStatus{Status: "unhealthy", Message: "not configured"}
	}

	recipients, err := h.Repo.List(ctx)
	if err != nil {
		return CheckStatus{Status: "unhealthy", Message: err.Error()}
	}

	return CheckStatus{
		Status:  "healthy",
		Details: map[string]interface{}{"recipients": len(recipients)},
	}
}

// checkDatabase pings the database and reports pool statistics.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: "unhealthy", Message: err.Error()}
	}

	stats := h.DB.Stats()
	return CheckStatus{
		Status: "healthy",
		Details: map[string]interface{}{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		},
	}
}

// LiveHandler answers liveness probes: 200 whenever the process can
// serve requests.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		slog.Error("live: failed to write response", slog.Any("error", err))
	}
}
