package middleware

import (
	"log/slog"
	"net/http"

	"github.com/chayma544/BookMate-back/internal/api/shared"
	"github.com/chayma544/BookMate-back/internal/platform/logger"
)

// TraceMiddleware assigns each request a trace ID, exposes it via the
// X-Trace-ID response header, and attaches a request-scoped logger carrying
// the ID so every log line for the request can be correlated.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		w.Header().Set("X-Trace-ID", traceID)

		reqLogger := logger.FromContext(ctx).With(slog.String("trace_id", traceID))
		ctx = logger.WithLogger(ctx, reqLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
