package logger

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a logger implementation for testing that captures all log messages
type TestLogger struct {
	store   *messageStore
	fields  map[string]interface{}
	zerolog *zerolog.Logger
}

// messageStore is shared between a test logger and its WithField children
type messageStore struct {
	mu       sync.Mutex
	messages []LogMessage
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nopLogger := zerolog.Nop()
	return &TestLogger{
		store:   &messageStore{messages: make([]LogMessage, 0)},
		fields:  make(map[string]interface{}),
		zerolog: &nopLogger,
	}
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	l.store.messages = append(l.store.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  merged,
	})
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

// WithField returns a child logger that shares the message store
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	newFields := make(map[string]interface{}, len(l.fields)+1)
	for k, v := range l.fields {
		newFields[k] = v
	}
	newFields[key] = value

	return &TestLogger{
		store:   l.store,
		fields:  newFields,
		zerolog: l.zerolog,
	}
}

// WithFields returns a child logger that shares the message store
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	result := Logger(l)
	for k, v := range fields {
		result = result.WithField(k, v)
	}
	return result
}

// WithError returns a child logger with an error field
func (l *TestLogger) WithError(err error) Logger {
	return l.WithField("error", err)
}

// GetZerolog returns a no-op zerolog instance
func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return l.zerolog
}

// Messages returns all captured messages
func (l *TestLogger) Messages() []LogMessage {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	out := make([]LogMessage, len(l.store.messages))
	copy(out, l.store.messages)
	return out
}

// HasMessage checks if a message containing the substring was logged at the level
func (l *TestLogger) HasMessage(level, substring string) bool {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	for _, m := range l.store.messages {
		if m.Level == level && strings.Contains(m.Message, substring) {
			return true
		}
	}
	return false
}

// Reset clears all captured messages
func (l *TestLogger) Reset() {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	l.store.messages = l.store.messages[:0]
}
