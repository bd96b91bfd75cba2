package logtrace

import (
	"context"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request id between client and server.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// NewRequestID returns a time ordered request id.
func NewRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// WithRequestID returns a copy of ctx carrying the given request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIdFromContext extracts the request ID from the context.
// Returns an empty string if the context is nil or if no request ID is found.
func RequestIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := ctx.Value(requestIDKey{}).(string)
	if !ok {
		return ""
	}
	return r
}

// EnsureRequestID returns ctx and its request id, attaching a fresh id when none is present.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestIdFromContext(ctx); id != "" {
		return ctx, id
	}
	id := NewRequestID()
	return WithRequestID(ctx, id), id
}
