package annexdec

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/annexdec/pkg/config"
	"github.com/user/annexdec/pkg/mocks"
	"github.com/user/annexdec/pkg/orchestrator"
	"github.com/user/annexdec/pkg/summarizer"
)

func annexB(payloads ...[]byte) []byte {
	var buf []byte
	for _, p := range payloads {
		buf = append(buf, 0x00, 0x00, 0x00, 0x01)
		buf = append(buf, p...)
	}
	return buf
}

var testStream = annexB(
	[]byte{0x67, 0x42, 0x00, 0x1f},
	[]byte{0x68, 0xce, 0x3c, 0x80},
	[]byte{0x65, 0x88, 0x84},
	[]byte{0x41, 0x9a, 0x02},
)

func TestConfigBuilder_Defaults(t *testing.T) {
	cfg := NewConfigBuilder().Build()

	if cfg != config.Defaults() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestConfigBuilder_Overrides(t *testing.T) {
	cfg := NewConfigBuilder().
		WithInput("in.h264").
		WithOutput("-").
		WithPixelFormat("nv12").
		WithTrimPadding(true).
		WithBackend("ffmpeg").
		WithFFmpegPath("/bin/ffmpeg").
		WithLogging("debug", "").
		WithDebug("").
		WithPreview(5, 160).
		WithSummary("run.md", "").
		Build()

	if cfg.InputPath != "in.h264" || cfg.OutputPath != "-" {
		t.Errorf("unexpected paths %q -> %q", cfg.InputPath, cfg.OutputPath)
	}
	if !cfg.TrimPadding || cfg.Backend != "ffmpeg" || cfg.FFmpegPath != "/bin/ffmpeg" {
		t.Errorf("unexpected decoding options %+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "console" {
		t.Errorf("empty format should keep the default, got %q/%q", cfg.LogLevel, cfg.LogFormat)
	}
	if !cfg.Debug || cfg.DebugDir != "./debug" {
		t.Errorf("empty debug dir should keep the default, got %v %q", cfg.Debug, cfg.DebugDir)
	}
	if cfg.PreviewEvery != 5 || cfg.PreviewWidth != 160 {
		t.Errorf("unexpected preview %d/%d", cfg.PreviewEvery, cfg.PreviewWidth)
	}
	if cfg.SummaryPath != "run.md" || cfg.SummaryFormat != "markdown" {
		t.Errorf("unexpected summary %q (%s)", cfg.SummaryPath, cfg.SummaryFormat)
	}
}

func TestConfigBuilder_Constraints(t *testing.T) {
	cfg := NewConfigBuilder().WithPreview(-3, 4).Build()

	if cfg.PreviewEvery != 0 {
		t.Errorf("negative preview_every should disable previews, got %d", cfg.PreviewEvery)
	}
	if cfg.PreviewWidth != 16 {
		t.Errorf("expected preview width clamped to 16, got %d", cfg.PreviewWidth)
	}
}

func TestFromConfig(t *testing.T) {
	base := config.Defaults()
	base.InputPath = "file.h264"
	base.Backend = "ffmpeg"

	cfg := FromConfig(base).WithBackend("videotoolbox").Build()
	if cfg.InputPath != "file.h264" || cfg.Backend != "videotoolbox" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestDecoder_Decode(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("in.h264", testStream)
	d := NewWithService(mocks.NewDecoderService(), fs, mocks.NewLogger())

	cfg := NewConfigBuilder().
		WithInput("in.h264").
		WithOutput("out.yuv").
		WithDebug("dbg").
		WithPreview(1, 0).
		WithSummary(filepath.Join("reports", "run.json"), "json").
		Build()

	result, err := d.Decode(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if result.FramesWritten != 2 {
		t.Errorf("expected 2 frames, got %d", result.FramesWritten)
	}

	for _, path := range []string{
		"out.yuv",
		filepath.Join("dbg", "sps.bin"),
		filepath.Join("dbg", "pps.bin"),
		filepath.Join("dbg", "units.json"),
		filepath.Join("dbg", "previews", "frame-0000.png"),
		filepath.Join("dbg", "previews", "frame-0001.png"),
	} {
		if _, ok := fs.GetFile(path); !ok {
			t.Errorf("expected %s to be written", path)
		}
	}

	data, ok := fs.GetFile(filepath.Join("reports", "run.json"))
	if !ok {
		t.Fatal("expected a summary")
	}
	var summary summarizer.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("summary is not valid JSON: %v", err)
	}
	if summary.Output.FramesWritten != 2 || summary.Stream.Counts["idr"] != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestDecoder_DecodeInvalidConfig(t *testing.T) {
	d := NewWithService(mocks.NewDecoderService(), mocks.NewFileSystem(), mocks.NewLogger())

	_, err := d.Decode(context.Background(), NewConfigBuilder().Build())
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestDecoder_SummaryOnFailure(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("in.h264", annexB([]byte{0x65, 0x88}))
	d := NewWithService(mocks.NewDecoderService(), fs, mocks.NewLogger())

	cfg := NewConfigBuilder().
		WithInput("in.h264").
		WithOutput("out.yuv").
		WithSummary("run.md", "markdown").
		Build()

	if _, err := d.Decode(context.Background(), cfg); !errors.Is(err, orchestrator.ErrNoParameterSets) {
		t.Fatalf("expected ErrNoParameterSets, got %v", err)
	}
	data, ok := fs.GetFile("run.md")
	if !ok {
		t.Fatal("expected a summary for a failed run")
	}
	if !strings.Contains(string(data), "| idr | 1 |") {
		t.Errorf("summary should list the scanned units:\n%s", data)
	}
}

func TestDecoder_Scan(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("in.h264", testStream)
	d := NewWithService(mocks.NewDecoderService(), fs, mocks.NewLogger())

	result, err := d.Scan(context.Background(), "in.h264")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Units) != 4 || !result.Ready {
		t.Errorf("unexpected inventory %+v", result)
	}
}

func TestBuildSummary(t *testing.T) {
	s := BuildSummary(orchestrator.RunResult{
		InputPath:      "in.h264",
		InputBytes:     100,
		Units:          4,
		Width:          352,
		Height:         288,
		Backend:        "ffmpeg",
		Submitted:      2,
		DecodeFailures: 1,
		OutputPath:     "out.yuv",
		FramesWritten:  1,
		TrimPadding:    true,
	})

	if s.Input.Path != "in.h264" || s.Input.Bytes != 100 {
		t.Errorf("unexpected input %+v", s.Input)
	}
	if s.Stream.Width != 352 || s.Decode.Failures != 1 || s.Decode.Backend != "ffmpeg" {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.Output.FramesWritten != 1 || !s.Output.TrimPadding {
		t.Errorf("unexpected output %+v", s.Output)
	}
}
