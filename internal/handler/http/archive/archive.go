// Package archive exposes read-only access to archived digest snapshots.
package archive

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/handler/http/requestid"
	"newsdigest/internal/handler/http/respond"
)

// SnapshotLoader loads the markdown source of an archived digest by date key.
type SnapshotLoader interface {
	Load(dateKey string) (string, error)
}

// GetHandler serves the archived digest source for a single cycle date.
func GetHandler(loader SnapshotLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dateKey := r.PathValue("date")
		if _, err := time.Parse(entity.DateKeyLayout, dateKey); err != nil {
			respond.Error(w, http.StatusBadRequest, errors.New("invalid date, expected YYYY-MM-DD"))
			return
		}

		source, err := loader.Load(dateKey)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				respond.Error(w, http.StatusNotFound, errors.New("digest not found"))
				return
			}
			slog.Error("archive lookup failed",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.String("date", dateKey),
				slog.Any("error", err),
			)
			respond.SafeError(w, http.StatusInternalServerError, err)
			return
		}

		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(source))
	}
}

// Register mounts the archive routes on the mux.
func Register(mux *http.ServeMux, loader SnapshotLoader) {
	mux.HandleFunc("GET /archive/{date}", GetHandler(loader))
}
