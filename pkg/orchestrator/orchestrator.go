// Package orchestrator coordinates the scan and decode passes of a run.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/user/annexdec/pkg/adapters/codecdetect"
	"github.com/user/annexdec/pkg/nalu"
	"github.com/user/annexdec/pkg/outputsink"
	"github.com/user/annexdec/pkg/paramset"
	"github.com/user/annexdec/pkg/pipeline"
	"github.com/user/annexdec/pkg/ports"
	"github.com/user/annexdec/pkg/stages/decode"
	"github.com/user/annexdec/pkg/stages/scan"
)

// ErrNoParameterSets is returned when the stream holds no SPS and PPS pair.
var ErrNoParameterSets = errors.New("orchestrator: failed to find SPS and PPS")

// Config contains all configuration for the orchestrator.
type Config struct {
	// Input/Output
	InputPath  string
	OutputPath string

	// Decoding
	PixelFormat ports.PixelFormat
	Backend     string // reported in the result only

	// Output
	TrimPadding bool

	// Debug previews
	PreviewEvery int
	PreviewWidth int
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		PixelFormat:  ports.PixelFormatNV12,
		PreviewEvery: 30,
		PreviewWidth: 320,
	}
}

// Orchestrator runs a decode: a scan pass fills the parameter set store,
// a decode pass submits every coded unit, and an output sink consumer writes
// pictures as the decoder completes them.
type Orchestrator struct {
	svc      ports.DecoderService
	fs       ports.FileSystem
	sink     ports.DebugSink
	renderer ports.Renderer
	logger   ports.Logger
}

// New creates a new Orchestrator.
func New(
	svc ports.DecoderService,
	fs ports.FileSystem,
	sink ports.DebugSink,
	renderer ports.Renderer,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		svc:      svc,
		fs:       fs,
		sink:     sink,
		renderer: renderer,
		logger:   logger,
	}
}

// Scan reads a stream and returns its unit inventory without decoding.
func (o *Orchestrator) Scan(ctx context.Context, inputPath string) (pipeline.ScanResult, error) {
	data, err := o.readInput(inputPath)
	if err != nil {
		return pipeline.ScanResult{}, err
	}
	return scan.NewStage(nil, o.logger).Execute(ctx, pipeline.ScanInput{Data: data})
}

// Run executes the complete decode. On an output write failure the result is
// still filled in and the error wraps outputsink.ErrOutputWrite.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	result := RunResult{
		InputPath:   config.InputPath,
		OutputPath:  config.OutputPath,
		Backend:     config.Backend,
		PixelFormat: config.PixelFormat.String(),
		TrimPadding: config.TrimPadding,
	}

	o.logger.Info("Decoding %s", config.InputPath)

	// 1. Read input
	data, err := o.readInput(config.InputPath)
	if err != nil {
		o.logger.Error("Failed to decode: %s", err)
		return result, err
	}
	result.InputBytes = int64(len(data))

	// 2. Scan pass
	store := paramset.New()
	inventory, err := scan.NewStage(store, o.logger).Execute(ctx, pipeline.ScanInput{Data: data})
	if err != nil {
		return result, fmt.Errorf("scan stage: %w", err)
	}
	result.Units = len(inventory.Units)
	result.Counts = inventory.Counts
	result.EmptyUnits = inventory.Empty
	o.logger.Info("Found %d NAL units (%d SPS, %d PPS)",
		len(inventory.Units), inventory.Counts[nalu.TypeSPS.String()], inventory.Counts[nalu.TypePPS.String()])

	if o.sink.Enabled() {
		if data, err := json.MarshalIndent(inventory, "", "  "); err == nil {
			o.saveDebug(o.sink.SaveUnitsJSON(data))
		}
	}

	if !store.IsReady() {
		o.logger.Error("Failed to find SPS and PPS")
		return result, ErrNoParameterSets
	}

	// 3. Format description
	desc, err := store.BuildFormatDescription(o.svc)
	if err != nil {
		o.logger.Error("Failed to decode: %s", err)
		return result, err
	}
	result.Width, result.Height = desc.Width, desc.Height
	result.Profile, result.Level = desc.Profile, desc.Level
	o.logger.Info("Video dimensions: %dx%d", desc.Width, desc.Height)

	if o.sink.Enabled() {
		o.saveDebug(o.sink.SaveFormatDescription(desc))
	}

	// 4. Decode pass with the output consumer running alongside
	out, err := o.fs.Create(config.OutputPath)
	if err != nil {
		o.logger.Error("Failed to write output: %s", err)
		return result, fmt.Errorf("create output: %w", err)
	}

	sink := outputsink.New(out, o.logger, outputsink.Options{
		TrimPadding:  config.TrimPadding,
		PreviewEvery: config.PreviewEvery,
		PreviewWidth: config.PreviewWidth,
	}).WithPreview(o.sink, o.renderer)

	// The consumer runs on ctx rather than gctx: a failed decode closes the
	// sink and pictures already delivered are still written.
	var decoded pipeline.DecodeResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sink.Run(ctx)
	})
	g.Go(func() error {
		defer sink.Close()
		var err error
		decoded, err = decode.NewStage(o.svc, o.logger).Execute(gctx, pipeline.DecodeInput{
			Data:        data,
			Description: desc,
			PixelFormat: config.PixelFormat,
			Handler:     sink.Deliver,
		})
		if err != nil {
			return fmt.Errorf("decode stage: %w", err)
		}
		return nil
	})
	runErr := g.Wait()
	if cerr := out.Close(); cerr != nil {
		runErr = errors.Join(runErr, fmt.Errorf("close output: %w", cerr))
	}

	stats := sink.Stats()
	result.Submitted = decoded.Submitted
	result.SubmitBytes = decoded.SubmitBytes
	result.Pictures = stats.FramesReceived
	result.NoPicture = stats.NoPicture
	result.DecodeFailures = stats.DecodeFailures
	result.LateFrames = stats.LateFrames
	result.FramesWritten = stats.FramesWritten
	result.BytesWritten = stats.BytesWritten
	result.WriteErrors = stats.WriteErrors
	o.logger.Info("Submitted %d access units", decoded.Submitted)

	if stats.DecodeFailures > 0 {
		o.logger.Warn("%d pictures failed to decode", stats.DecodeFailures)
	}
	if stats.LateFrames > 0 {
		o.logger.Warn("Decoder emitted a picture after close")
	}

	if runErr != nil {
		if errors.Is(runErr, outputsink.ErrOutputWrite) {
			o.logger.Error("Failed to write output: %s", runErr)
		} else {
			o.logger.Error("Failed to decode: %s", runErr)
		}
		return result, runErr
	}

	o.logger.Info("Wrote %d frames (%d bytes) to %s", stats.FramesWritten, stats.BytesWritten, config.OutputPath)
	o.logger.Info("Pipeline completed successfully")
	return result, nil
}

func (o *Orchestrator) readInput(path string) ([]byte, error) {
	data, err := o.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	o.logger.Debug("Read %d bytes from %s", len(data), path)

	if _, err := codecdetect.Detect(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (o *Orchestrator) saveDebug(err error) {
	if err != nil {
		o.logger.Warn("Failed to save debug output: %s", err)
	}
}

// RunResult contains the results of a run for summary generation.
type RunResult struct {
	// Input
	InputPath  string
	InputBytes int64

	// Scan pass
	Units      int
	Counts     map[string]int
	EmptyUnits int

	// Stream format
	Width   int
	Height  int
	Profile uint32
	Level   uint32

	// Decode pass
	Backend        string
	PixelFormat    string
	Submitted      int
	SubmitBytes    int64
	Pictures       int
	NoPicture      int
	DecodeFailures int
	LateFrames     int

	// Output
	OutputPath    string
	FramesWritten int
	BytesWritten  int64
	WriteErrors   int
	TrimPadding   bool
}
