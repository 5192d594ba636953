// Package observability provides structured logging for mesalog.
//
// Logger wraps log/slog with a persistent session field. All storage-layer
// warnings flow through it; the storage coordinator downgrades backend
// failures to log events rather than errors.
package observability

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog with persistent session context.
type Logger struct {
	inner   *slog.Logger
	session string
}

// NewLogger creates a structured logger for a session.
// Output defaults to os.Stderr if w is nil.
func NewLogger(sessionID string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return &Logger{
		inner:   slog.New(handler),
		session: sessionID,
	}
}

// NewLoggerWithHandler creates a logger with a custom slog handler.
func NewLoggerWithHandler(sessionID string, h slog.Handler) *Logger {
	return &Logger{
		inner:   slog.New(h),
		session: sessionID,
	}
}

// With returns a new Logger with an additional persistent field.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{
		inner:   l.inner.With(slog.Any(key, value)),
		session: l.session,
	}
}

// attrs prepends the session ID to the arguments.
func (l *Logger) attrs(msg string, args []any) (string, []any) {
	return msg, append([]any{slog.String("session", l.session)}, args...)
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) {
	msg, args = l.attrs(msg, args)
	l.inner.Debug(msg, args...)
}

// Info logs at INFO level.
func (l *Logger) Info(msg string, args ...any) {
	msg, args = l.attrs(msg, args)
	l.inner.Info(msg, args...)
}

// Warn logs at WARN level.
func (l *Logger) Warn(msg string, args ...any) {
	msg, args = l.attrs(msg, args)
	l.inner.Warn(msg, args...)
}

// Error logs at ERROR level.
func (l *Logger) Error(msg string, args ...any) {
	msg, args = l.attrs(msg, args)
	l.inner.Error(msg, args...)
}

// StorageEvent logs a storage backend event (probe, load, save, wipe).
func (l *Logger) StorageEvent(op, backend string, args ...any) {
	allArgs := append([]any{
		slog.String("session", l.session),
		slog.String("op", op),
		slog.String("backend", backend),
	}, args...)
	l.inner.Info("storage", allArgs...)
}

// SessionID returns the session ID associated with this logger.
func (l *Logger) SessionID() string {
	return l.session
}
