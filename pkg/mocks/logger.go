package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/user/annexdec/pkg/ports"
)

// LogEntry is one message recorded by Logger.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Message   string
}

// Logger records formatted messages for assertions.
type Logger struct {
	component string
	shared    *logBook
}

type logBook struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates a recording logger.
func NewLogger() *Logger {
	return &Logger{shared: &logBook{}}
}

func (m *Logger) Debug(msg string, args ...interface{}) { m.add(ports.LevelDebug, msg, args) }
func (m *Logger) Info(msg string, args ...interface{})  { m.add(ports.LevelInfo, msg, args) }
func (m *Logger) Warn(msg string, args ...interface{})  { m.add(ports.LevelWarn, msg, args) }
func (m *Logger) Error(msg string, args ...interface{}) { m.add(ports.LevelError, msg, args) }

func (m *Logger) WithComponent(component string) ports.Logger {
	return &Logger{component: component, shared: m.shared}
}

func (m *Logger) add(level ports.LogLevel, msg string, args []interface{}) {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	m.shared.entries = append(m.shared.entries, LogEntry{
		Level:     level,
		Component: m.component,
		Message:   fmt.Sprintf(msg, args...),
	})
}

// Entries returns every recorded message, including those of component loggers.
func (m *Logger) Entries() []LogEntry {
	m.shared.mu.Lock()
	defer m.shared.mu.Unlock()
	return append([]LogEntry(nil), m.shared.entries...)
}

// Count returns how many messages at level contain substr.
func (m *Logger) Count(level ports.LogLevel, substr string) int {
	n := 0
	for _, e := range m.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			n++
		}
	}
	return n
}

var _ ports.Logger = (*Logger)(nil)
