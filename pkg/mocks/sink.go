package mocks

import (
	"image"
	"sync"

	"github.com/user/annexdec/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Description *ports.FormatDescription
	SPS         []byte
	PPS         []byte
	UnitsJSON   []byte
	Previews    map[int]image.Image

	SavePreviewFunc func(index int, img image.Image) error
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:  enabled,
		Previews: make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveFormatDescription(desc *ports.FormatDescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Description = desc
	m.SPS = desc.SPS
	m.PPS = desc.PPS
	return nil
}

func (m *DebugSink) SaveUnitsJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UnitsJSON = data
	return nil
}

func (m *DebugSink) SavePreview(index int, img image.Image) error {
	if m.SavePreviewFunc != nil {
		return m.SavePreviewFunc(index, img)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Previews[index] = img
	return nil
}

// PreviewCount returns the number of saved previews.
func (m *DebugSink) PreviewCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Previews)
}

var _ ports.DebugSink = (*DebugSink)(nil)
