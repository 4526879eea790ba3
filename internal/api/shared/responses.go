package shared

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/chayma544/BookMate-back/internal/platform/logger"
	"github.com/chayma544/BookMate-back/internal/redact"
)

// ErrorResponse is the JSON body returned for every failed request. Code is
// kept for internal use and never serialized.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"-"`
	TraceID string `json:"trace_id,omitempty"`
}

// RespondWithJSON writes payload as JSON with the given status code. Encoding
// failures are logged and surfaced as a plain 500 since the header is already
// committed in the happy path.
func RespondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("failed to encode response payload", slog.String("error", redact.Error(err)))
	}
}

// RespondWithError writes a standard error body carrying the request's trace
// ID so clients can quote it back to us.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    status,
		TraceID: GetTraceID(r.Context()),
	})
}

// RespondWithErrorAndLog logs the underlying error with request context and
// then responds with the safe client-facing message. Server faults log at
// error level, client faults at warn.
func RespondWithErrorAndLog(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	log := loggerFrom(r.Context()).With(
		slog.String("trace_id", GetTraceID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
	)

	attrs := []any{slog.String("message", message)}
	if err != nil {
		attrs = append(attrs, slog.String("error", redact.Error(err)))
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", attrs...)
	} else {
		log.Warn("request rejected", attrs...)
	}

	RespondWithError(w, r, status, message)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx)
}
