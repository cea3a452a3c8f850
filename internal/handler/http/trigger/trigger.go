// Package trigger exposes the manual cycle trigger. The endpoint is
// JWT-protected so only operators can force an off-schedule digest.
package trigger

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/handler/http/requestid"
	"newsdigest/internal/handler/http/respond"
	"newsdigest/internal/usecase/digest"
)

// CycleRunner runs one digest cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (digest.CycleStats, error)
}

// triggerResponse summarizes the manually triggered cycle.
type triggerResponse struct {
	Date       string `json:"date"`
	Sections   int    `json:"sections"`
	Fallbacks  int    `json:"fallbacks"`
	Recipients int    `json:"recipients"`
	Delivered  int    `json:"delivered"`
	Failed     int    `json:"failed"`
	Archived   bool   `json:"archived"`
	DurationMS int64  `json:"duration_ms"`
}

// Handler runs a cycle on demand and reports its stats.
type Handler struct{ Runner CycleRunner }

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := requestid.FromContext(r.Context())
	logger := slog.With(slog.String("request_id", requestID))

	logger.Info("manual digest cycle triggered")

	start := time.Now()
	stats, err := h.Runner.RunCycle(r.Context())
	if err != nil {
		logger.Error("manual cycle failed",
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.Any("error", err))
		code := http.StatusInternalServerError
		if entityIs(err, entity.ErrStoreUnreadable) {
			code = http.StatusServiceUnavailable
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, triggerResponse{
		Date:       stats.CycleDate.Format("2006-01-02"),
		Sections:   stats.Sections,
		Fallbacks:  stats.Fallbacks,
		Recipients: stats.Recipients,
		Delivered:  stats.Delivered,
		Failed:     stats.Failed,
		Archived:   stats.Archived,
		DurationMS: stats.Duration.Milliseconds(),
	})
}

// Register wires the trigger route behind JWT auth.
func Register(mux *http.ServeMux, runner CycleRunner, jwtSecret []byte) {
	mux.Handle("POST /trigger", Authz(jwtSecret, Handler{Runner: runner}))
}
