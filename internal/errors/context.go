package errors

import (
	"context"

	"github.com/google/uuid"
)

// requestIDKey is unexported so only this package can write the value.
type requestIDKey struct{}

// GenerateRequestID returns a fresh request ID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// WithRequestID attaches a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// GetRequestID returns the request ID from the context, or "" when the
// request never passed through RequestIDMiddleware.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}
