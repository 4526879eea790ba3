package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// ContextKey is a dedicated type for request-scoped context values so they
// cannot collide with keys from other packages.
type ContextKey string

const (
	// ActorContextKey holds the authenticated caller placed by the auth
	// middleware.
	ActorContextKey ContextKey = "actor"

	// TraceIDKey holds the per-request trace identifier.
	TraceIDKey ContextKey = "trace_id"
)

// SetTraceID generates a random trace identifier and stores it in the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" when absent.
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(TraceIDKey).(string); ok {
		return id
	}
	return ""
}

func newTraceID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read failing means the system entropy source is broken;
		// fall back to something unique enough for log correlation.
		return fmt.Sprintf("trace-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
