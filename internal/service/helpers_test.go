package service

import (
	"testing"

	"ai-scribe-be/internal/pkg/logger"
)

// testLogger satisfies ILogger without touching the filesystem.
type testLogger struct {
	t *testing.T
}

func newTestLogger(t *testing.T) logger.ILogger {
	return &testLogger{t: t}
}

func (l *testLogger) Debug(module, message string, details map[string]interface{}) {}
func (l *testLogger) Info(module, message string, details map[string]interface{})  {}

func (l *testLogger) Warn(module, message string, details map[string]interface{}) {
	l.t.Logf("[WARN] %s: %s %v", module, message, details)
}

func (l *testLogger) Error(module, message string, details map[string]interface{}) {
	l.t.Logf("[ERROR] %s: %s %v", module, message, details)
}

func (l *testLogger) Sync() error { return nil }
