// Package summarizer provides summary generation for conversion runs.
package summarizer

import "time"

// Summary contains all data collected during a conversion run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string

	// Source video as reported by the decoder
	Source SourceInfo

	// Effective settings
	Settings Settings

	// Written artifact
	Output OutputInfo

	// How the run ended
	Outcome Outcome

	Warnings []string
}

// SourceInfo describes the input video.
type SourceInfo struct {
	Path           string
	Codec          string
	Width          int
	Height         int
	FPS            float64
	DeclaredFrames int
}

// Settings contains the conversion configuration.
type Settings struct {
	Quality    int
	Resolution string // empty for native size
	MaxFrames  int    // 0 = no cap
	Backend    string
}

// OutputInfo describes the written artifact.
type OutputInfo struct {
	Dir           string
	FramesFile    string
	MetadataFile  string
	FrameCount    int
	PayloadBytes  uint64
	MetadataBytes int
	MaxFrameBytes uint32
}

// AverageFrameBytes returns the mean encoded frame size.
func (o OutputInfo) AverageFrameBytes() float64 {
	if o.FrameCount == 0 {
		return 0
	}
	return float64(o.PayloadBytes) / float64(o.FrameCount)
}

// Outcome records the end state of the run.
type Outcome struct {
	State      string
	Duration   time.Duration
	EndedEarly bool
	ReadError  string
	OverBudget bool
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

// WithRunID sets the run identifier.
func (b *Builder) WithRunID(id string) *Builder {
	b.summary.RunID = id
	return b
}

// WithSource sets source information.
func (b *Builder) WithSource(source SourceInfo) *Builder {
	b.summary.Source = source
	return b
}

// WithSettings sets conversion settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithOutput sets artifact information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// WithOutcome sets the run outcome.
func (b *Builder) WithOutcome(outcome Outcome) *Builder {
	b.summary.Outcome = outcome
	return b
}

// WithWarnings appends warnings.
func (b *Builder) WithWarnings(warnings ...string) *Builder {
	b.summary.Warnings = append(b.summary.Warnings, warnings...)
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
