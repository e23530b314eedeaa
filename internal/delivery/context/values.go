// Package context carries the request, session and event identifiers that tag log lines
// from the HTTP layer down to the marketplace stores and the notifier.
package context

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// KeyRequestID is the key for the request ID.
	KeyRequestID ContextKey = "request_id"

	// KeySessionID is the key for the authenticated session ID.
	KeySessionID ContextKey = "session_id"

	// KeyLogger is the key for the request-scoped logger.
	KeyLogger ContextKey = "logger"

	// HeaderXRequestID is the HTTP header name for request ID.
	HeaderXRequestID = "X-Request-Id"
)

// GetRequestID returns the request ID for response metadata: the echo value first,
// then the one on the request context.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(string(KeyRequestID)).(string); ok && id != "" {
		return id
	}

	return RequestIDFromContext(c.Request().Context())
}

// SetRequestID sets the request ID in echo.Context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(string(KeyRequestID), requestID)
}

// RequestIDFromContext returns the request ID, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(KeyRequestID).(string)

	return id
}

// WithRequest stores the request ID and returns the context with a logger tagged by it.
// The HTTP middleware and the notifier's push handler both start here.
func WithRequest(ctx context.Context, requestID string, logger *slog.Logger) (context.Context, *slog.Logger) {
	reqLogger := logger.With(slog.String("request_id", requestID))
	ctx = context.WithValue(ctx, KeyRequestID, requestID)

	return WithLogger(ctx, reqLogger), reqLogger
}

// WithSession stores the session ID and tags the current logger with it, so usecase
// and store log lines can be traced back to one marketplace session.
func WithSession(ctx context.Context, sessionID string, fallback *slog.Logger) context.Context {
	logger := GetLoggerOrDefault(ctx, fallback).With(slog.String("session_id", sessionID))
	ctx = context.WithValue(ctx, KeySessionID, sessionID)

	return WithLogger(ctx, logger)
}

// SessionIDFromContext returns the session ID, or "" before authentication.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(KeySessionID).(string)

	return id
}

// GetLogger extracts the request-scoped logger, or nil.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(KeyLogger).(*slog.Logger)

	return logger
}

// GetLoggerOrDefault extracts the request-scoped logger, falling back when absent.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := GetLogger(ctx); logger != nil {
		return logger
	}

	return fallback
}

// WithLogger returns a new context with the logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, KeyLogger, logger)
}
