// Package summarizer provides summary generation for decode runs.
package summarizer

import "time"

// Summary contains all data collected during a decode run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time `json:"generated_at"`

	// Input stream
	Input InputInfo `json:"input"`

	// Units found by the scan pass
	Stream StreamInfo `json:"stream"`

	// Decode session results
	Decode DecodeInfo `json:"decode"`

	// Raw output details
	Output OutputInfo `json:"output"`
}

// InputInfo describes the input file.
type InputInfo struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// StreamInfo contains the unit inventory and the stream's picture format.
type StreamInfo struct {
	Units   int            `json:"units"`
	Counts  map[string]int `json:"counts"`
	Empty   int            `json:"empty"`
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Profile uint32         `json:"profile"`
	Level   uint32         `json:"level"`
}

// DecodeInfo contains submission and completion counters.
type DecodeInfo struct {
	Backend     string `json:"backend"`
	PixelFormat string `json:"pixel_format"`
	Submitted   int    `json:"submitted"`
	SubmitBytes int64  `json:"submit_bytes"`
	Pictures    int    `json:"pictures"`
	NoPicture   int    `json:"no_picture"`
	Failures    int    `json:"failures"`
	LateFrames  int    `json:"late_frames"`
}

// OutputInfo contains information about the written raw planes.
type OutputInfo struct {
	Path          string `json:"path"`
	FramesWritten int    `json:"frames_written"`
	BytesWritten  int64  `json:"bytes_written"`
	WriteErrors   int    `json:"write_errors"`
	TrimPadding   bool   `json:"trim_padding"`
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithInput sets input information.
func (b *Builder) WithInput(path string, size int64) *Builder {
	b.summary.Input = InputInfo{
		Path:  path,
		Bytes: size,
	}
	return b
}

// WithStream sets the stream inventory.
func (b *Builder) WithStream(stream StreamInfo) *Builder {
	b.summary.Stream = stream
	return b
}

// WithDecode sets decode counters.
func (b *Builder) WithDecode(decode DecodeInfo) *Builder {
	b.summary.Decode = decode
	return b
}

// WithOutput sets output information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
