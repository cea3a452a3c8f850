// Package respond provides helpers for writing JSON HTTP responses.
// Error responses are sanitized so store paths and relay details never
// reach clients.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent; log only.
			slog.Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes a JSON error response with the raw error message.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// safeSubstrings marks error messages that are fit for clients:
// validation wording rather than infrastructure detail.
var safeSubstrings = []string{
	"required",
	"invalid",
	"not found",
	"already",
	"must be",
	"must not",
	"cannot be",
}

// SafeError sanitizes errors before returning them. Validation-style
// messages pass through; anything else, and every 5xx, is replaced
// with a generic message and logged with the detail.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	safe := false
	for _, s := range safeSubstrings {
		if strings.Contains(lower, s) {
			safe = true
			break
		}
	}
	if code >= 500 {
		safe = false
	}

	if safe {
		JSON(w, code, map[string]string{"error": msg})
		return
	}

	slog.Error("request failed",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.Any("error", err))
	JSON(w, code, map[string]string{"error": "internal server error"})
}
