// Package main provides the CLI entry point for annexdec.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/annexdec/pkg/adapters/logger"
	"github.com/user/annexdec/pkg/annexdec"
	"github.com/user/annexdec/pkg/config"
	"github.com/user/annexdec/pkg/pipeline"
	"github.com/user/annexdec/pkg/ports"
	"github.com/user/annexdec/pkg/summarizer"
)

var version = "dev"

const (
	flagInput         = "input"
	flagOutput        = "output"
	flagConfig        = "config"
	flagPixelFormat   = "pixel-format"
	flagTrimPadding   = "trim-padding"
	flagBackend       = "backend"
	flagFFmpegPath    = "ffmpeg-path"
	flagDebug         = "debug"
	flagDebugDir      = "debug-dir"
	flagPreviewEvery  = "preview-every"
	flagPreviewWidth  = "preview-width"
	flagSummary       = "summary"
	flagSummaryFormat = "summary-format"
	flagLogLevel      = "log-level"
	flagLogFormat     = "log-format"
	flagQuiet         = "quiet"
	flagJSON          = "json"
)

func main() {
	app := newApp(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:      "annexdec",
		Usage:     l10n.T("Decode Annex-B H.264 streams to raw pictures"),
		UsageText: "annexdec decode --input IN --output OUT [options]\nannexdec scan --input IN [--json]",
		Version:   version,
		Writer:    stdout,
		Commands: []*cli.Command{
			decodeCommand(),
			scanCommand(stdout),
		},
	}
}

func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     flagLogLevel,
			Aliases:  []string{"l"},
			Usage:    l10n.T("Log level (debug, info, warn, error)"),
			Category: l10n.T("Logging"),
		},
		&cli.StringFlag{
			Name:     flagLogFormat,
			Usage:    l10n.T("Log format (console, text, json)"),
			Category: l10n.T("Logging"),
		},
		&cli.BoolFlag{
			Name:     flagQuiet,
			Aliases:  []string{"Q"},
			Usage:    l10n.T("Suppress all log output"),
			Category: l10n.T("Logging"),
		},
	}
}

func decodeCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     flagInput,
			Aliases:  []string{"i"},
			Usage:    l10n.T("Annex-B H.264 input file"),
			Category: l10n.T("Input and Output"),
		},
		&cli.StringFlag{
			Name:     flagOutput,
			Aliases:  []string{"o"},
			Usage:    l10n.T("Raw picture output file (- for stdout)"),
			Category: l10n.T("Input and Output"),
		},
		&cli.StringFlag{
			Name:     flagConfig,
			Aliases:  []string{"c"},
			Usage:    l10n.T("Load configuration from a YAML file"),
			Category: l10n.T("Input and Output"),
		},
		&cli.StringFlag{
			Name:     flagPixelFormat,
			Usage:    l10n.T("Output pixel format (nv12)"),
			Category: l10n.T("Decoding"),
		},
		&cli.BoolFlag{
			Name:     flagTrimPadding,
			Usage:    l10n.T("Write only the visible bytes of each row"),
			Category: l10n.T("Decoding"),
		},
		&cli.StringFlag{
			Name:     flagBackend,
			Aliases:  []string{"b"},
			Usage:    l10n.T("Decoder backend (auto, videotoolbox, ffmpeg)"),
			Category: l10n.T("Decoding"),
		},
		&cli.StringFlag{
			Name:     flagFFmpegPath,
			Usage:    l10n.T("Path to the ffmpeg executable"),
			Category: l10n.T("Decoding"),
		},
		&cli.BoolFlag{
			Name:     flagDebug,
			Aliases:  []string{"d"},
			Usage:    l10n.T("Enable debug output"),
			Category: l10n.T("Debug"),
		},
		&cli.StringFlag{
			Name:     flagDebugDir,
			Usage:    l10n.T("Directory for debug output"),
			Category: l10n.T("Debug"),
		},
		&cli.IntFlag{
			Name:     flagPreviewEvery,
			Usage:    l10n.T("Save a preview of every Nth picture (0 = none)"),
			Category: l10n.T("Debug"),
		},
		&cli.IntFlag{
			Name:     flagPreviewWidth,
			Usage:    l10n.T("Preview width in pixels"),
			Category: l10n.T("Debug"),
		},
		&cli.StringFlag{
			Name:     flagSummary,
			Usage:    l10n.T("Write a run summary to a file"),
			Category: l10n.T("Summary"),
		},
		&cli.StringFlag{
			Name:     flagSummaryFormat,
			Usage:    l10n.T("Summary format (markdown, json)"),
			Category: l10n.T("Summary"),
		},
	}

	return &cli.Command{
		Name:   "decode",
		Usage:  l10n.T("Decode a stream and write raw pictures"),
		Flags:  append(flags, logFlags()...),
		Action: runDecode,
	}
}

func scanCommand(stdout io.Writer) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     flagInput,
			Aliases:  []string{"i"},
			Usage:    l10n.T("Annex-B H.264 input file"),
			Required: true,
		},
		&cli.BoolFlag{
			Name:  flagJSON,
			Usage: l10n.T("Print the inventory as JSON"),
		},
	}

	return &cli.Command{
		Name:  "scan",
		Usage: l10n.T("List the NAL units of a stream without decoding"),
		Flags: append(flags, logFlags()...),
		Action: func(c *cli.Context) error {
			log := newLogger(c, config.Defaults())
			result, err := annexdec.Scan(c.Context, c.String(flagInput), log)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if c.Bool(flagJSON) {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printInventory(stdout, result)
			return nil
		},
	}
}

func runDecode(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	log := newLogger(c, cfg)

	d, err := annexdec.New(cfg, log)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	d.WithSummaryOptions(summarizer.WithTranslator(l10n.T), summarizer.WithVersion(version))

	if _, err := d.Decode(c.Context, cfg); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if cfg.OutputPath != "-" {
		log.Info("Output saved to %s", cfg.OutputPath)
	}
	return nil
}

// buildConfig starts from the config file, if any, and applies the flags
// that were set on the command line.
func buildConfig(c *cli.Context) (config.Config, error) {
	base := config.Defaults()
	if path := c.String(flagConfig); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return base, err
		}
		base = loaded
	}

	b := annexdec.FromConfig(base)
	if c.IsSet(flagInput) {
		b.WithInput(c.String(flagInput))
	}
	if c.IsSet(flagOutput) {
		b.WithOutput(c.String(flagOutput))
	}
	if c.IsSet(flagPixelFormat) {
		b.WithPixelFormat(c.String(flagPixelFormat))
	}
	if c.IsSet(flagTrimPadding) {
		b.WithTrimPadding(c.Bool(flagTrimPadding))
	}
	if c.IsSet(flagBackend) {
		b.WithBackend(c.String(flagBackend))
	}
	if c.IsSet(flagFFmpegPath) {
		b.WithFFmpegPath(c.String(flagFFmpegPath))
	}
	if c.Bool(flagDebug) || (base.Debug && c.IsSet(flagDebugDir)) {
		b.WithDebug(c.String(flagDebugDir))
	}
	if c.IsSet(flagPreviewEvery) || c.IsSet(flagPreviewWidth) {
		every, width := base.PreviewEvery, base.PreviewWidth
		if c.IsSet(flagPreviewEvery) {
			every = c.Int(flagPreviewEvery)
		}
		if c.IsSet(flagPreviewWidth) {
			width = c.Int(flagPreviewWidth)
		}
		b.WithPreview(every, width)
	}
	if c.IsSet(flagSummary) {
		b.WithSummary(c.String(flagSummary), c.String(flagSummaryFormat))
	} else if c.IsSet(flagSummaryFormat) {
		b.WithSummary(base.SummaryPath, c.String(flagSummaryFormat))
	}
	b.WithLogging(c.String(flagLogLevel), c.String(flagLogFormat))

	cfg := b.Build()
	return cfg, cfg.Validate()
}

func newLogger(c *cli.Context, cfg config.Config) ports.Logger {
	if c.Bool(flagQuiet) {
		return logger.NewNoop()
	}
	level := cfg.LogLevel
	if c.IsSet(flagLogLevel) {
		level = c.String(flagLogLevel)
	}
	format := cfg.LogFormat
	if c.IsSet(flagLogFormat) {
		format = c.String(flagLogFormat)
	}
	return logger.New(ports.ParseLogLevel(level), format)
}

func printInventory(w io.Writer, result pipeline.ScanResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l10n.T("Index"), l10n.T("Offset"), l10n.T("Size"), l10n.T("Type"))
	for _, u := range result.Units {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s (%d)\n", u.Index, u.Offset, u.Size, u.Type, u.TypeID)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, l10n.F("%d units, %d empty, parameter sets ready: %t", len(result.Units), result.Empty, result.Ready))
}
