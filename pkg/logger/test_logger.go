package logger

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger captures log messages for assertions in tests.
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	zerolog  *zerolog.Logger
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nop := zerolog.Nop()
	return &TestLogger{zerolog: &nop}
}

func (l *TestLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, LogMessage{Level: level, Message: msg, Fields: fields})
}

func (l *TestLogger) Debug(msg string) { l.record("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.record("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.record("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.record("ERROR", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.record("FATAL", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.record("DEBUG", msg, fields)
}
func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.record("INFO", msg, fields)
}
func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.record("WARN", msg, fields)
}
func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.record("ERROR", msg, fields)
}
func (l *TestLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.record("FATAL", msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return &testLoggerContext{parent: l, fields: map[string]interface{}{key: value}}
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return &testLoggerContext{parent: l, fields: fields}
}

func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return &testLoggerContext{parent: l, fields: map[string]interface{}{"error": err.Error()}}
}

func (l *TestLogger) WithContext(ctx context.Context) Logger { return l }

func (l *TestLogger) GetZerolog() *zerolog.Logger { return l.zerolog }

// Messages returns a copy of all captured log messages.
func (l *TestLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// MessagesByLevel returns all captured messages of a specific level.
func (l *TestLogger) MessagesByLevel(level string) []LogMessage {
	var filtered []LogMessage
	for _, m := range l.Messages() {
		if m.Level == level {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// HasMessage checks if a message with the given text was logged.
func (l *TestLogger) HasMessage(text string) bool {
	for _, m := range l.Messages() {
		if m.Message == text {
			return true
		}
	}
	return false
}

// testLoggerContext carries bound fields back to the parent TestLogger.
type testLoggerContext struct {
	parent *TestLogger
	fields map[string]interface{}
}

func (c *testLoggerContext) merged(extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(c.fields)+len(extra))
	for k, v := range c.fields {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (c *testLoggerContext) Debug(msg string) { c.parent.record("DEBUG", msg, c.fields) }
func (c *testLoggerContext) Info(msg string)  { c.parent.record("INFO", msg, c.fields) }
func (c *testLoggerContext) Warn(msg string)  { c.parent.record("WARN", msg, c.fields) }
func (c *testLoggerContext) Error(msg string) { c.parent.record("ERROR", msg, c.fields) }
func (c *testLoggerContext) Fatal(msg string) { c.parent.record("FATAL", msg, c.fields) }

func (c *testLoggerContext) DebugWithFields(msg string, fields map[string]interface{}) {
	c.parent.record("DEBUG", msg, c.merged(fields))
}
func (c *testLoggerContext) InfoWithFields(msg string, fields map[string]interface{}) {
	c.parent.record("INFO", msg, c.merged(fields))
}
func (c *testLoggerContext) WarnWithFields(msg string, fields map[string]interface{}) {
	c.parent.record("WARN", msg, c.merged(fields))
}
func (c *testLoggerContext) ErrorWithFields(msg string, fields map[string]interface{}) {
	c.parent.record("ERROR", msg, c.merged(fields))
}
func (c *testLoggerContext) FatalWithFields(msg string, fields map[string]interface{}) {
	c.parent.record("FATAL", msg, c.merged(fields))
}

func (c *testLoggerContext) WithField(key string, value interface{}) Logger {
	return &testLoggerContext{parent: c.parent, fields: c.merged(map[string]interface{}{key: value})}
}

func (c *testLoggerContext) WithFields(fields map[string]interface{}) Logger {
	return &testLoggerContext{parent: c.parent, fields: c.merged(fields)}
}

func (c *testLoggerContext) WithError(err error) Logger {
	if err == nil {
		return c
	}
	return c.WithField("error", err.Error())
}

func (c *testLoggerContext) WithContext(ctx context.Context) Logger { return c }

func (c *testLoggerContext) GetZerolog() *zerolog.Logger { return c.parent.zerolog }
