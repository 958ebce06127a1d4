// Package annexdec provides a high-level API for decoding Annex-B H.264
// streams to raw planes.
package annexdec

import (
	"github.com/user/annexdec/pkg/config"
)

// ConfigBuilder provides a fluent interface for building config.Config.
type ConfigBuilder struct {
	config config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: config.Defaults(),
	}
}

// FromConfig creates a ConfigBuilder starting from cfg, typically one loaded
// from a file, so that command line values can override it.
func FromConfig(cfg config.Config) *ConfigBuilder {
	return &ConfigBuilder{config: cfg}
}

// Build returns the final Config, applying constraints.
func (b *ConfigBuilder) Build() config.Config {
	cfg := b.config

	// a preview narrower than 16 pixels cannot hold its label
	if cfg.PreviewWidth > 0 && cfg.PreviewWidth < 16 {
		cfg.PreviewWidth = 16
	}
	if cfg.PreviewEvery < 0 {
		cfg.PreviewEvery = 0
	}

	return cfg
}

// WithInput sets the Annex-B input path.
func (b *ConfigBuilder) WithInput(path string) *ConfigBuilder {
	b.config.InputPath = path
	return b
}

// WithOutput sets the raw output path. "-" writes to stdout.
func (b *ConfigBuilder) WithOutput(path string) *ConfigBuilder {
	b.config.OutputPath = path
	return b
}

// WithPixelFormat sets the requested output pixel format.
func (b *ConfigBuilder) WithPixelFormat(format string) *ConfigBuilder {
	b.config.PixelFormat = format
	return b
}

// WithTrimPadding writes only the visible bytes of each row.
func (b *ConfigBuilder) WithTrimPadding(trim bool) *ConfigBuilder {
	b.config.TrimPadding = trim
	return b
}

// WithBackend selects the decoder backend.
func (b *ConfigBuilder) WithBackend(backend string) *ConfigBuilder {
	b.config.Backend = backend
	return b
}

// WithFFmpegPath sets the ffmpeg executable used by the ffmpeg backend.
func (b *ConfigBuilder) WithFFmpegPath(path string) *ConfigBuilder {
	b.config.FFmpegPath = path
	return b
}

// WithLogging sets the log level and format.
func (b *ConfigBuilder) WithLogging(level, format string) *ConfigBuilder {
	if level != "" {
		b.config.LogLevel = level
	}
	if format != "" {
		b.config.LogFormat = format
	}
	return b
}

// WithDebug enables debug output under dir.
func (b *ConfigBuilder) WithDebug(dir string) *ConfigBuilder {
	b.config.Debug = true
	if dir != "" {
		b.config.DebugDir = dir
	}
	return b
}

// WithPreview sets how often and how wide debug previews are rendered.
func (b *ConfigBuilder) WithPreview(every, width int) *ConfigBuilder {
	b.config.PreviewEvery = every
	b.config.PreviewWidth = width
	return b
}

// WithSummary writes a run summary to path in format ("markdown" or "json").
func (b *ConfigBuilder) WithSummary(path, format string) *ConfigBuilder {
	b.config.SummaryPath = path
	if format != "" {
		b.config.SummaryFormat = format
	}
	return b
}
