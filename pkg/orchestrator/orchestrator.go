// Package orchestrator runs a conversion from an opened video to a
// written frame artifact.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/framepack/pkg/container"
	"github.com/user/framepack/pkg/metrics"
	"github.com/user/framepack/pkg/pipeline"
	"github.com/user/framepack/pkg/ports"
	"github.com/user/framepack/pkg/stages/encode"
	"github.com/user/framepack/pkg/stages/resample"
)

// Config contains all settings for one run. Values are expected to be
// resolved and range checked already; see the config package.
type Config struct {
	RunID      string
	SourcePath string
	OutputDir  string

	// Quality is the encoder quality in [1, 100].
	Quality int
	// Target is the resample size. Zero keeps the native size.
	Target pipeline.Dimension
	// MaxFrames caps the number of frames written. Zero means no cap.
	MaxFrames int
	// PayloadBudget warns when the payload grows beyond it. Zero disables.
	PayloadBudget uint64

	// Warnings raised while resolving the settings. They are carried
	// into the result.
	Warnings []string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutputDir: "data",
		Quality:   ports.DefaultQuality,
	}
}

// ProgressFunc observes streaming progress. total is zero when the number
// of frames is unknown.
type ProgressFunc func(done, total int)

// RunResult contains the results of a run for summary generation.
type RunResult struct {
	RunID  string
	Source string
	State  State

	// Source information
	Info ports.VideoInfo

	// Effective settings
	Quality   int
	Target    pipeline.Dimension
	MaxFrames int

	// DisplayTotal is the frame count announced before streaming: the
	// declared count, reduced to the cap when the cap is smaller.
	DisplayTotal int

	FramesRead int
	Artifact   container.Artifact

	// EndedEarly is set when the source stopped before DisplayTotal.
	EndedEarly bool
	// ReadError describes the read failure that ended the stream, if any.
	ReadError string

	OverBudget bool
	Warnings   []string
	Duration   time.Duration
}

// Orchestrator coordinates one conversion at a time.
type Orchestrator struct {
	source   ports.FrameSource
	encoder  ports.ImageEncoder
	fs       ports.FileSystem
	sink     ports.DebugSink
	logger   ports.Logger
	metrics  *metrics.Metrics
	progress ProgressFunc
	onState  func(State)

	mu    sync.Mutex
	state State
}

// New creates a new Orchestrator.
func New(
	source ports.FrameSource,
	encoder ports.ImageEncoder,
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		source:  source,
		encoder: encoder,
		fs:      fs,
		sink:    sink,
		logger:  logger,
	}
}

// WithMetrics records run metrics into m.
func (o *Orchestrator) WithMetrics(m *metrics.Metrics) *Orchestrator {
	o.metrics = m
	return o
}

// OnProgress registers a progress observer, called after every written frame.
func (o *Orchestrator) OnProgress(fn ProgressFunc) *Orchestrator {
	o.progress = fn
	return o
}

// OnStateChange registers an observer for state transitions.
func (o *Orchestrator) OnStateChange(fn func(State)) *Orchestrator {
	o.onState = fn
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	if o.onState != nil {
		o.onState(s)
	}
}

// Run executes the conversion. On failure the returned error is a
// *StateError and no artifact is left in the output directory.
func (o *Orchestrator) Run(ctx context.Context, config Config) (result RunResult, err error) {
	start := time.Now()
	result = RunResult{
		RunID:     config.RunID,
		Source:    config.SourcePath,
		Quality:   config.Quality,
		Target:    config.Target,
		MaxFrames: config.MaxFrames,
		Warnings:  append([]string(nil), config.Warnings...),
	}

	o.setState(StateInit)
	o.metrics.RecordRun(config.RunID, config.SourcePath)
	for range config.Warnings {
		o.metrics.RecordWarning("config")
	}

	defer func() {
		result.Duration = time.Since(start)
		if err != nil {
			var se *StateError
			if !errors.As(err, &se) {
				err = &StateError{State: o.State(), Err: err}
			}
			o.logger.Error("Conversion failed: %s", err)
			o.setState(StateFailed)
		}
		result.State = o.State()
		o.metrics.RecordResult(result.State == StateDone, result.Duration)
	}()

	// Opening
	o.setState(StateOpening)
	o.logger.Info("Opening %s", config.SourcePath)
	handle, err := o.source.Open(ctx, config.SourcePath)
	if err != nil {
		return result, err
	}
	defer handle.Close()

	info := handle.Info()
	result.Info = info
	o.logger.Debug("Source: %dx%d, %.2f fps, %d frames declared, codec %s",
		info.Width, info.Height, info.FPS, info.DeclaredFrames, info.Codec)

	result.DisplayTotal = info.DeclaredFrames
	if config.MaxFrames > 0 && (info.DeclaredFrames == 0 || config.MaxFrames < info.DeclaredFrames) {
		result.DisplayTotal = config.MaxFrames
	}

	if err := o.fs.MkdirAll(config.OutputDir); err != nil {
		return result, fmt.Errorf("%w: create output directory: %w", container.ErrWriteFailure, err)
	}
	writer, err := container.Create(o.fs, config.OutputDir)
	if err != nil {
		return result, err
	}
	defer writer.Abort()

	if o.sink.Enabled() {
		o.saveSettings(config, info)
	}

	// Streaming
	o.setState(StateStreaming)
	if !config.Target.IsZero() {
		o.logger.Info("Resampling to %s", config.Target)
	}
	o.logger.Info("Encoding at quality %d", config.Quality)
	stage := o.buildStage(config)

	sinkFailed := false
	for index := 0; config.MaxFrames == 0 || index < config.MaxFrames; index++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		img, err := handle.Next()
		if err != nil {
			// Cancellation can surface as a failed read when the decoder
			// is killed underneath a blocked Next.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			if !errors.Is(err, ports.ErrEndOfStream) {
				// A failed read ends the stream; frames so far are kept.
				result.ReadError = err.Error()
				o.logger.Warn("Read failed at frame %d, ending stream: %s", index, err)
				o.metrics.RecordWarning("read")
			}
			break
		}
		result.FramesRead++
		o.metrics.RecordRead()

		frame, err := stage.Execute(ctx, pipeline.PixelFrame{Index: index, Image: img})
		if err != nil {
			return result, err
		}
		if err := writer.WriteFrame(frame.Data); err != nil {
			return result, err
		}
		o.metrics.RecordWrite(frame.Len(), writer.PayloadBytes())
		o.logger.Debug("Frame %d: %d bytes", index, frame.Len())

		if o.sink.Enabled() && !sinkFailed {
			if err := o.sink.SaveEncodedFrame(index, frame.Data); err != nil {
				sinkFailed = true
				o.logger.Warn("Debug output failed: %s", err)
			}
		}
		if o.progress != nil {
			o.progress(index+1, result.DisplayTotal)
		}
	}

	// Finalizing
	if err := ctx.Err(); err != nil {
		return result, err
	}
	o.setState(StateFinalizing)
	artifact, err := writer.Finish()
	if err != nil {
		return result, err
	}
	result.Artifact = artifact
	result.EndedEarly = result.DisplayTotal > 0 && artifact.FrameCount < result.DisplayTotal

	if config.PayloadBudget > 0 && artifact.PayloadBytes > config.PayloadBudget {
		result.OverBudget = true
		msg := fmt.Sprintf("payload size %d bytes exceeds budget %d", artifact.PayloadBytes, config.PayloadBudget)
		result.Warnings = append(result.Warnings, msg)
		o.logger.Warn("Payload size %d bytes exceeds budget %d", artifact.PayloadBytes, config.PayloadBudget)
		o.metrics.RecordWarning("budget")
	}

	if o.sink.Enabled() {
		if err := o.sink.Flush(); err != nil {
			o.logger.Warn("Debug output failed: %s", err)
		}
	}

	if err := handle.Close(); err != nil {
		o.logger.Debug("Close source: %s", err)
	}

	o.logger.Info("Wrote %d frames (%d bytes)", artifact.FrameCount, artifact.PayloadBytes)
	o.logger.Info("Output saved to %s", config.OutputDir)
	o.setState(StateDone)
	return result, nil
}

// buildStage assembles resample, debug capture and encode for one frame.
func (o *Orchestrator) buildStage(config Config) pipeline.Stage[pipeline.PixelFrame, pipeline.EncodedFrame] {
	var resampler pipeline.Stage[pipeline.PixelFrame, pipeline.PixelFrame] = resample.NewStage(config.Target)
	resampler = timed(o.metrics, "resample", resampler)

	if o.sink.Enabled() {
		resampler = pipeline.Chain(resampler, pipeline.Stage[pipeline.PixelFrame, pipeline.PixelFrame](
			pipeline.StageFunc[pipeline.PixelFrame, pipeline.PixelFrame](o.collect)))
	}

	var encoder pipeline.Stage[pipeline.PixelFrame, pipeline.EncodedFrame] = encode.NewStage(o.encoder, config.Quality)
	encoder = timed(o.metrics, "encode", encoder)

	return pipeline.Chain(resampler, encoder)
}

// collect offers the frame to the debug sink and passes it on.
func (o *Orchestrator) collect(ctx context.Context, frame pipeline.PixelFrame) (pipeline.PixelFrame, error) {
	if err := o.sink.CollectFrame(frame.Index, frame.Image); err != nil {
		o.logger.Debug("Debug output failed: %s", err)
	}
	return frame, nil
}

func timed[In, Out any](m *metrics.Metrics, name string, s pipeline.Stage[In, Out]) pipeline.Stage[In, Out] {
	if m == nil {
		return s
	}
	return pipeline.StageFunc[In, Out](func(ctx context.Context, input In) (Out, error) {
		start := time.Now()
		out, err := s.Execute(ctx, input)
		m.ObserveStage(name, time.Since(start))
		return out, err
	})
}

type settingsDump struct {
	RunID         string          `json:"run_id"`
	Source        string          `json:"source"`
	OutputDir     string          `json:"output_dir"`
	Quality       int             `json:"quality"`
	Resolution    string          `json:"resolution,omitempty"`
	MaxFrames     int             `json:"max_frames,omitempty"`
	PayloadBudget uint64          `json:"payload_budget,omitempty"`
	Warnings      []string        `json:"warnings,omitempty"`
	Video         ports.VideoInfo `json:"video"`
}

func (o *Orchestrator) saveSettings(config Config, info ports.VideoInfo) {
	dump := settingsDump{
		RunID:         config.RunID,
		Source:        config.SourcePath,
		OutputDir:     config.OutputDir,
		Quality:       config.Quality,
		MaxFrames:     config.MaxFrames,
		PayloadBudget: config.PayloadBudget,
		Warnings:      config.Warnings,
		Video:         info,
	}
	if !config.Target.IsZero() {
		dump.Resolution = config.Target.String()
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err == nil {
		err = o.sink.SaveSettingsJSON(data)
	}
	if err != nil {
		o.logger.Warn("Debug output failed: %s", err)
	}
}
