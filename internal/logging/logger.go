// Package logging defines a minimal structured-logging interface used across
// the client. Implementations can wrap slog, zap, zerolog, etc.
package logging

import (
	"context"
	"strconv"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "session restored", "user_id", id, "token", logging.Redact(tok))
type Logger interface {
	// Debug logs diagnostic details that are noisy in normal operation.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Redact shortens a bearer credential so it can appear in logs without
// leaking the secret: only the first four characters and the length remain.
func Redact(token string) string {
	if token == "" {
		return "<none>"
	}
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "…(" + strconv.Itoa(len(token)) + ")"
}
