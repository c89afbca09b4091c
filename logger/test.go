package logger

import (
	"context"
	"sync"
)

// LogEntry represents a single log entry captured by the test logger.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// TestLogger is a logger implementation for testing that captures log
// entries. Derived loggers from WithField/WithFields record into the
// same root so a test can assert on everything that was logged.
type TestLogger struct {
	root   *testLoggerRoot
	fields map[string]interface{}
}

type testLoggerRoot struct {
	mu      sync.RWMutex
	entries []LogEntry
}

// NewTestLogger creates a new test logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{
		root:   &testLoggerRoot{},
		fields: make(map[string]interface{}),
	}
}

// Debug logs a debug-level message.
func (l *TestLogger) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log("debug", msg, fields)
}

// Info logs an info-level message.
func (l *TestLogger) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log("info", msg, fields)
}

// Warn logs a warning-level message.
func (l *TestLogger) Warn(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log("warn", msg, fields)
}

// Error logs an error-level message.
func (l *TestLogger) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	l.log("error", msg, fields)
}

// WithField returns a new logger with the given field added.
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	newFields := make(map[string]interface{})
	for k, v := range l.fields {
		newFields[k] = v
	}
	newFields[key] = value

	return &TestLogger{
		root:   l.root,
		fields: newFields,
	}
}

// WithFields returns a new logger with the given fields added.
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	newFields := make(map[string]interface{})
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &TestLogger{
		root:   l.root,
		fields: newFields,
	}
}

// log adds a log entry to the captured entries.
func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	l.root.mu.Lock()
	defer l.root.mu.Unlock()

	allFields := make(map[string]interface{})
	for k, v := range l.fields {
		allFields[k] = v
	}
	for k, v := range fields {
		allFields[k] = v
	}

	l.root.entries = append(l.root.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  allFields,
	})
}

// Entries returns all captured log entries.
func (l *TestLogger) Entries() []LogEntry {
	l.root.mu.RLock()
	defer l.root.mu.RUnlock()

	entries := make([]LogEntry, len(l.root.entries))
	copy(entries, l.root.entries)
	return entries
}

// Messages returns just the messages of all captured entries, in order.
func (l *TestLogger) Messages() []string {
	l.root.mu.RLock()
	defer l.root.mu.RUnlock()

	msgs := make([]string, len(l.root.entries))
	for i, entry := range l.root.entries {
		msgs[i] = entry.Message
	}
	return msgs
}

// HasEntry reports whether an entry with the given level and message
// was captured.
func (l *TestLogger) HasEntry(level, msg string) bool {
	l.root.mu.RLock()
	defer l.root.mu.RUnlock()

	for _, entry := range l.root.entries {
		if entry.Level == level && entry.Message == msg {
			return true
		}
	}
	return false
}

// Reset clears all captured log entries.
func (l *TestLogger) Reset() {
	l.root.mu.Lock()
	defer l.root.mu.Unlock()
	l.root.entries = nil
}
