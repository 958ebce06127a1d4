package logger

import (
	"os"

	"github.com/user/annexdec/pkg/ports"
)

// NoopLogger discards all messages. Used for quiet mode and tests.
type NoopLogger struct{}

// NewNoop creates a new no-op logger.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

func (l *NoopLogger) Debug(msg string, args ...interface{}) {}
func (l *NoopLogger) Info(msg string, args ...interface{})  {}
func (l *NoopLogger) Warn(msg string, args ...interface{})  {}
func (l *NoopLogger) Error(msg string, args ...interface{}) {}

// WithComponent returns the same no-op logger.
func (l *NoopLogger) WithComponent(component string) ports.Logger {
	return l
}

// New returns the logger for a level and format name.
// Quiet level always yields a NoopLogger.
func New(level ports.LogLevel, format string) ports.Logger {
	if level == ports.LevelQuiet {
		return NewNoop()
	}
	switch format {
	case "json", "text":
		return NewStructured(level, format, os.Stderr)
	default:
		return NewConsole(level)
	}
}
