// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Engine operations take a context as their first argument. The engine never
// blocks on it; it only reads the correlation values below for audit logging
// and tracing.
//
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//	ctx = requestcontext.WithSession(ctx, "script:store.script")
//	now := requestcontext.Now(ctx)
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	sessionKey     struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeySession     = sessionKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Session retrieves the caller session tag (script name, operator, ...).
func Session(ctx context.Context) string {
	if s, ok := ctx.Value(ContextKeySession).(string); ok {
		return s
	}
	return ""
}

// WithSession tags the context with a caller session.
func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, ContextKeySession, session)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (CLI, tests, background work).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
