// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/annexdec/pkg/ports"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveFormatDescription writes sps.bin, pps.bin and avcC.bin.
func (s *Sink) SaveFormatDescription(desc *ports.FormatDescription) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	if err := s.fs.WriteFile(filepath.Join(s.baseDir, "sps.bin"), desc.SPS); err != nil {
		return err
	}
	if err := s.fs.WriteFile(filepath.Join(s.baseDir, "pps.bin"), desc.PPS); err != nil {
		return err
	}
	if desc.AvcC == nil {
		return nil
	}

	var buf bytes.Buffer
	if err := desc.AvcC.Encode(&buf); err != nil {
		return fmt.Errorf("encode avcC: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "avcC.bin"), buf.Bytes())
}

// SaveUnitsJSON saves the unit inventory as JSON.
func (s *Sink) SaveUnitsJSON(data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	path := filepath.Join(s.baseDir, "units.json")
	return s.fs.WriteFile(path, data)
}

// SavePreview saves a preview picture as PNG.
func (s *Sink) SavePreview(index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, "previews")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", index))
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
