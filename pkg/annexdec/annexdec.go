package annexdec

import (
	"context"
	"fmt"

	"github.com/user/annexdec/pkg/adapters/filesink"
	"github.com/user/annexdec/pkg/adapters/ggrenderer"
	"github.com/user/annexdec/pkg/adapters/h264decoder"
	"github.com/user/annexdec/pkg/adapters/nullsink"
	"github.com/user/annexdec/pkg/adapters/osfilesystem"
	"github.com/user/annexdec/pkg/config"
	"github.com/user/annexdec/pkg/orchestrator"
	"github.com/user/annexdec/pkg/pipeline"
	"github.com/user/annexdec/pkg/ports"
	"github.com/user/annexdec/pkg/summarizer"
)

// Decoder runs decodes against a decoder service and a file system.
type Decoder struct {
	svc      ports.DecoderService
	fs       ports.FileSystem
	renderer ports.Renderer
	logger   ports.Logger

	summaryOpts []summarizer.MarkdownOption
}

// New creates a Decoder using the platform decoder selected by cfg and the
// OS file system.
func New(cfg config.Config, logger ports.Logger) (*Decoder, error) {
	svc, err := h264decoder.New(cfg.DecoderOptions(), logger)
	if err != nil {
		return nil, err
	}
	return NewWithService(svc, osfilesystem.New(), logger), nil
}

// NewWithService creates a Decoder around an existing service.
func NewWithService(svc ports.DecoderService, fs ports.FileSystem, logger ports.Logger) *Decoder {
	return &Decoder{
		svc:      svc,
		fs:       fs,
		renderer: ggrenderer.New(),
		logger:   logger,
	}
}

// Decode runs one decode described by cfg and writes the summary if one was
// requested.
func (d *Decoder) Decode(ctx context.Context, cfg config.Config) (orchestrator.RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return orchestrator.RunResult{}, err
	}

	var sink ports.DebugSink
	if cfg.Debug {
		if err := d.fs.MkdirAll(cfg.DebugDir); err != nil {
			return orchestrator.RunResult{}, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, d.fs, d.renderer)
	} else {
		sink = nullsink.New()
	}

	oc := cfg.ToOrchestratorConfig()
	if b, ok := d.svc.(interface{ Backend() h264decoder.Backend }); ok {
		oc.Backend = string(b.Backend())
	}

	orch := orchestrator.New(d.svc, d.fs, sink, d.renderer, d.logger)
	result, runErr := orch.Run(ctx, oc)

	// a summary is still useful for a run that failed part way
	if cfg.SummaryPath != "" && result.InputBytes > 0 {
		w := summarizer.NewWriter(summarizer.NewFormatter(cfg.SummaryFormat, d.summaryOpts...), d.fs)
		if err := w.Write(cfg.SummaryPath, BuildSummary(result)); err != nil {
			d.logger.Warn("Failed to write summary: %s", err)
		} else {
			d.logger.Info("Summary saved to %s", cfg.SummaryPath)
		}
	}

	return result, runErr
}

// WithSummaryOptions sets the options passed to the markdown summary
// formatter.
func (d *Decoder) WithSummaryOptions(opts ...summarizer.MarkdownOption) *Decoder {
	d.summaryOpts = opts
	return d
}

// Scan inventories a stream without decoding it.
func (d *Decoder) Scan(ctx context.Context, inputPath string) (pipeline.ScanResult, error) {
	orch := orchestrator.New(d.svc, d.fs, nullsink.New(), d.renderer, d.logger)
	return orch.Scan(ctx, inputPath)
}

// Scan inventories a stream from the OS file system. No decoder is needed.
func Scan(ctx context.Context, inputPath string, logger ports.Logger) (pipeline.ScanResult, error) {
	orch := orchestrator.New(nil, osfilesystem.New(), nullsink.New(), nil, logger)
	return orch.Scan(ctx, inputPath)
}

// BuildSummary converts a run result into a summary.
func BuildSummary(r orchestrator.RunResult) *summarizer.Summary {
	return summarizer.NewBuilder().
		WithInput(r.InputPath, r.InputBytes).
		WithStream(summarizer.StreamInfo{
			Units:   r.Units,
			Counts:  r.Counts,
			Empty:   r.EmptyUnits,
			Width:   r.Width,
			Height:  r.Height,
			Profile: r.Profile,
			Level:   r.Level,
		}).
		WithDecode(summarizer.DecodeInfo{
			Backend:     r.Backend,
			PixelFormat: r.PixelFormat,
			Submitted:   r.Submitted,
			SubmitBytes: r.SubmitBytes,
			Pictures:    r.Pictures,
			NoPicture:   r.NoPicture,
			Failures:    r.DecodeFailures,
			LateFrames:  r.LateFrames,
		}).
		WithOutput(summarizer.OutputInfo{
			Path:          r.OutputPath,
			FramesWritten: r.FramesWritten,
			BytesWritten:  r.BytesWritten,
			WriteErrors:   r.WriteErrors,
			TrimPadding:   r.TrimPadding,
		}).
		Build()
}
