// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/annexdec/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveFormatDescription does nothing.
func (s *Sink) SaveFormatDescription(desc *ports.FormatDescription) error {
	return nil
}

// SaveUnitsJSON does nothing.
func (s *Sink) SaveUnitsJSON(data []byte) error {
	return nil
}

// SavePreview does nothing.
func (s *Sink) SavePreview(index int, img image.Image) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
