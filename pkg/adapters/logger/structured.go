package logger

import (
	"io"

	"github.com/ideamans/go-l10n"
	"github.com/sirupsen/logrus"

	"github.com/user/annexdec/pkg/ports"
)

// StructuredLogger emits one logrus entry per message, with the component as a field.
type StructuredLogger struct {
	entry *logrus.Entry
}

// NewStructured creates a logrus-backed logger writing to w.
// format is "json" or "text".
func NewStructured(level ports.LogLevel, format string, w io.Writer) *StructuredLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(toLogrusLevel(level))
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006/01/02 15:04:05",
		})
	}
	return &StructuredLogger{entry: logrus.NewEntry(l)}
}

func toLogrusLevel(level ports.LogLevel) logrus.Level {
	switch level {
	case ports.LevelDebug:
		return logrus.DebugLevel
	case ports.LevelInfo:
		return logrus.InfoLevel
	case ports.LevelWarn:
		return logrus.WarnLevel
	case ports.LevelError:
		return logrus.ErrorLevel
	default:
		// quiet: nothing at or below panic is ever logged by this package
		return logrus.PanicLevel
	}
}

// Debug logs a debug message.
func (l *StructuredLogger) Debug(msg string, args ...interface{}) {
	if l.entry.Logger.IsLevelEnabled(logrus.DebugLevel) {
		l.entry.Debug(l10n.F(msg, args...))
	}
}

// Info logs an informational message.
func (l *StructuredLogger) Info(msg string, args ...interface{}) {
	if l.entry.Logger.IsLevelEnabled(logrus.InfoLevel) {
		l.entry.Info(l10n.F(msg, args...))
	}
}

// Warn logs a warning message.
func (l *StructuredLogger) Warn(msg string, args ...interface{}) {
	if l.entry.Logger.IsLevelEnabled(logrus.WarnLevel) {
		l.entry.Warn(l10n.F(msg, args...))
	}
}

// Error logs an error message.
func (l *StructuredLogger) Error(msg string, args ...interface{}) {
	if l.entry.Logger.IsLevelEnabled(logrus.ErrorLevel) {
		l.entry.Error(l10n.F(msg, args...))
	}
}

// WithComponent returns a logger that adds a "component" field.
func (l *StructuredLogger) WithComponent(component string) ports.Logger {
	return &StructuredLogger{entry: l.entry.WithField("component", component)}
}

var _ ports.Logger = (*StructuredLogger)(nil)
