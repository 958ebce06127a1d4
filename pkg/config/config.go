// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/annexdec/pkg/adapters/h264decoder"
	"github.com/user/annexdec/pkg/orchestrator"
	"github.com/user/annexdec/pkg/ports"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid value")

// Config represents the full configuration for annexdec.
type Config struct {
	// Input/Output
	InputPath  string `yaml:"input"`
	OutputPath string `yaml:"output"`

	// Decoding
	PixelFormat string `yaml:"pixel_format"`
	TrimPadding bool   `yaml:"trim_padding"`
	Backend     string `yaml:"backend"`
	FFmpegPath  string `yaml:"ffmpeg_path"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Debug
	Debug        bool   `yaml:"debug"`
	DebugDir     string `yaml:"debug_dir"`
	PreviewEvery int    `yaml:"preview_every"`
	PreviewWidth int    `yaml:"preview_width"`

	// Summary
	SummaryPath   string `yaml:"summary"`
	SummaryFormat string `yaml:"summary_format"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		PixelFormat: "nv12",
		Backend:     string(h264decoder.BackendAuto),

		LogLevel:  "info",
		LogFormat: "console",

		DebugDir:     "./debug",
		PreviewEvery: 30,
		PreviewWidth: 320,

		SummaryFormat: "markdown",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks enumerated values and numeric ranges. Paths are checked
// when the run opens them.
func (c Config) Validate() error {
	var errs []error

	if c.InputPath == "" {
		errs = append(errs, fmt.Errorf("%w: input is required", ErrInvalid))
	}
	if c.OutputPath == "" {
		errs = append(errs, fmt.Errorf("%w: output is required", ErrInvalid))
	}
	if _, ok := ports.ParsePixelFormat(c.PixelFormat); !ok {
		errs = append(errs, fmt.Errorf("%w: pixel_format %q", ErrInvalid, c.PixelFormat))
	}
	if _, err := h264decoder.ParseBackend(c.Backend); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error", "quiet":
	default:
		errs = append(errs, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel))
	}
	switch c.LogFormat {
	case "", "console", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: log_format %q", ErrInvalid, c.LogFormat))
	}
	switch c.SummaryFormat {
	case "", "markdown", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: summary_format %q", ErrInvalid, c.SummaryFormat))
	}
	if c.PreviewEvery < 0 {
		errs = append(errs, fmt.Errorf("%w: preview_every must not be negative", ErrInvalid))
	}
	if c.PreviewWidth < 0 {
		errs = append(errs, fmt.Errorf("%w: preview_width must not be negative", ErrInvalid))
	}

	return errors.Join(errs...)
}

// DecoderOptions returns the options for the platform decoder service.
func (c Config) DecoderOptions() h264decoder.Options {
	backend, _ := h264decoder.ParseBackend(c.Backend)
	return h264decoder.Options{
		Backend:    backend,
		FFmpegPath: c.FFmpegPath,
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	format, _ := ports.ParsePixelFormat(c.PixelFormat)
	return orchestrator.Config{
		InputPath:  c.InputPath,
		OutputPath: c.OutputPath,

		PixelFormat: format,
		Backend:     c.Backend,
		TrimPadding: c.TrimPadding,

		PreviewEvery: c.PreviewEvery,
		PreviewWidth: c.PreviewWidth,
	}
}
