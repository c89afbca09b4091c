package logger

import "context"

// Logger defines the interface for structured logging with context support.
type Logger interface {
	// Debug logs a debug-level message with optional fields
	Debug(ctx context.Context, msg string, fields map[string]interface{})

	// Info logs an info-level message with optional fields
	Info(ctx context.Context, msg string, fields map[string]interface{})

	// Warn logs a warning-level message with optional fields
	Warn(ctx context.Context, msg string, fields map[string]interface{})

	// Error logs an error-level message with optional fields
	Error(ctx context.Context, msg string, fields map[string]interface{})

	// WithField returns a new logger with the given field added to all subsequent log entries
	WithField(key string, value interface{}) Logger

	// WithFields returns a new logger with the given fields added to all subsequent log entries
	WithFields(fields map[string]interface{}) Logger
}

// NopLogger discards all log entries. Useful as a default when callers
// do not supply a logger.
type NopLogger struct{}

// NewNopLogger creates a logger that discards everything.
func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {}
func (*NopLogger) Info(ctx context.Context, msg string, fields map[string]interface{})  {}
func (*NopLogger) Warn(ctx context.Context, msg string, fields map[string]interface{})  {}
func (*NopLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {}

func (l *NopLogger) WithField(key string, value interface{}) Logger  { return l }
func (l *NopLogger) WithFields(fields map[string]interface{}) Logger { return l }
