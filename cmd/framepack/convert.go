package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/framepack/pkg/adapters/filesink"
	"github.com/user/framepack/pkg/adapters/ggrenderer"
	"github.com/user/framepack/pkg/adapters/jpegencoder"
	"github.com/user/framepack/pkg/adapters/logger"
	"github.com/user/framepack/pkg/adapters/nullsink"
	"github.com/user/framepack/pkg/adapters/osfilesystem"
	"github.com/user/framepack/pkg/adapters/smartsource"
	"github.com/user/framepack/pkg/config"
	"github.com/user/framepack/pkg/metrics"
	"github.com/user/framepack/pkg/orchestrator"
	"github.com/user/framepack/pkg/ports"
	"github.com/user/framepack/pkg/summarizer"
)

// progressEvery is the frame interval between progress lines.
const progressEvery = 10

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     l10n.T("Extract frames from a video into video_frames.bin and video_metadata.bin"),
		ArgsUsage: "<source>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: l10n.T("Source video path")},
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: l10n.T("Output directory (default: data)")},
			&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("JPEG quality 1-100 (default: 80)")},
			&cli.StringFlag{Name: "resolution", Aliases: []string{"r"}, Usage: l10n.T("Target resolution WIDTHxHEIGHT (default: native)")},
			&cli.IntFlag{Name: "max-frames", Aliases: []string{"n"}, Usage: l10n.T("Maximum number of frames (0 = no limit)")},
			&cli.StringFlag{Name: "backend", Usage: l10n.T("Decoding backend (auto, vidio, ffmpeg)")},
			&cli.Uint64Flag{Name: "payload-budget", Usage: l10n.T("Warn when the payload exceeds this many bytes")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output")},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output")},
			&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output")},
			&cli.StringFlag{Name: "metrics-file", Usage: l10n.T("Write Prometheus metrics to this file")},
			&cli.StringFlag{Name: "summary", Usage: l10n.T("Write a Markdown summary to this file")},
		},
		Action: runConvert,
	}
}

// loadConfig layers defaults, the YAML file, FRAMEPACK_* variables and
// explicitly set flags, in that order.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	applyFlags(c, &cfg)
	return cfg, nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if src := c.Args().First(); src != "" {
		cfg.Source = src
	}
	if c.IsSet("source") {
		cfg.Source = c.String("source")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("quality") {
		cfg.Quality = c.Int("quality")
	}
	if c.IsSet("resolution") {
		cfg.Resolution = c.String("resolution")
	}
	if c.IsSet("max-frames") {
		cfg.MaxFrames = c.Int("max-frames")
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("payload-budget") {
		cfg.PayloadBudget = c.Uint64("payload-budget")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("metrics-file") {
		cfg.MetricsFile = c.String("metrics-file")
	}
	if c.IsSet("summary") {
		cfg.SummaryFile = c.String("summary")
	}
}

func newLogger(quiet bool, levelName string) ports.Logger {
	if quiet {
		return logger.NewNoop()
	}
	level, err := ports.ParseLogLevel(levelName)
	log := logger.NewConsole(level)
	if err != nil {
		log.Warn("Unknown log level %q, using info", levelName)
	}
	return log
}

func runConvert(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(l10n.F("Configuration error: %s", err), 2)
	}

	log := newLogger(c.Bool("quiet"), cfg.LogLevel)

	runID := uuid.NewString()
	orchConfig, warnings, err := cfg.Resolve(runID)
	if errors.Is(err, config.ErrNoSource) {
		return cli.Exit(l10n.T("A source video is required"), 2)
	}
	for _, w := range warnings {
		log.Warn("Setting ignored: %s", w)
	}

	backend, err := smartsource.ParseBackend(cfg.Backend)
	if err != nil {
		log.Warn("Unknown backend %q, using auto", cfg.Backend)
		orchConfig.Warnings = append(orchConfig.Warnings, err.Error())
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Create adapters
	fs := osfilesystem.New()
	source := smartsource.New(smartsource.Options{
		Backend: backend,
		Logger:  log.WithComponent("source"),
	})
	encoder := jpegencoder.New()

	var sink ports.DebugSink
	if cfg.Debug {
		sink = filesink.New(cfg.DebugDir, fs, ggrenderer.New(), filesink.Options{})
	} else {
		sink = nullsink.New()
	}

	m := metrics.New()
	orch := orchestrator.New(source, encoder, fs, sink, log).
		WithMetrics(m).
		OnProgress(progressLogger(log))

	log.Info("Converting %s", orchConfig.SourcePath)
	log.Debug("Run %s started", runID)

	result, runErr := orch.Run(ctx, orchConfig)

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn("Metrics export failed: %s", err)
		}
	}
	if cfg.SummaryFile != "" {
		w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), fs)
		if err := w.Write(cfg.SummaryFile, buildSummary(result, orchConfig.OutputDir, source.Backend())); err != nil {
			log.Warn("Summary export failed: %s", err)
		}
	}

	if runErr != nil {
		// The orchestrator has already logged the failure.
		return cli.Exit("", 1)
	}
	return nil
}

// progressLogger reports progress every progressEvery frames and on the
// last frame when the total is known.
func progressLogger(log ports.Logger) orchestrator.ProgressFunc {
	return func(done, total int) {
		if done%progressEvery != 0 && done != total {
			return
		}
		if total > 0 {
			log.Info("Processed %d/%d frames", done, total)
		} else {
			log.Info("Processed %d frames", done)
		}
	}
}

func buildSummary(result orchestrator.RunResult, outputDir string, backend smartsource.Backend) *summarizer.Summary {
	var resolution string
	if !result.Target.IsZero() {
		resolution = result.Target.String()
	}

	return summarizer.NewBuilder().
		WithRunID(result.RunID).
		WithSource(summarizer.SourceInfo{
			Path:           result.Source,
			Codec:          result.Info.Codec,
			Width:          result.Info.Width,
			Height:         result.Info.Height,
			FPS:            result.Info.FPS,
			DeclaredFrames: result.Info.DeclaredFrames,
		}).
		WithSettings(summarizer.Settings{
			Quality:    result.Quality,
			Resolution: resolution,
			MaxFrames:  result.MaxFrames,
			Backend:    string(backend),
		}).
		WithOutput(summarizer.OutputInfo{
			Dir:           outputDir,
			FramesFile:    result.Artifact.Frames,
			MetadataFile:  result.Artifact.Metadata,
			FrameCount:    result.Artifact.FrameCount,
			PayloadBytes:  result.Artifact.PayloadBytes,
			MetadataBytes: result.Artifact.MetadataBytes,
			MaxFrameBytes: result.Artifact.MaxFrameBytes,
		}).
		WithOutcome(summarizer.Outcome{
			State:      result.State.String(),
			Duration:   result.Duration,
			EndedEarly: result.EndedEarly,
			ReadError:  result.ReadError,
			OverBudget: result.OverBudget,
		}).
		WithWarnings(result.Warnings...).
		Build()
}
