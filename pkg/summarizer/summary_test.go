package summarizer

import (
	"testing"
	"time"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v", before, after, summary.GeneratedAt)
	}
}

func TestBuilder_WithSource(t *testing.T) {
	summary := NewBuilder().
		WithSource(SourceInfo{
			Path:           "clip.mp4",
			Codec:          "h264",
			Width:          1920,
			Height:         1080,
			FPS:            29.97,
			DeclaredFrames: 300,
		}).
		Build()

	if summary.Source.Path != "clip.mp4" {
		t.Errorf("expected Path 'clip.mp4', got '%s'", summary.Source.Path)
	}
	if summary.Source.Width != 1920 || summary.Source.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", summary.Source.Width, summary.Source.Height)
	}
	if summary.Source.DeclaredFrames != 300 {
		t.Errorf("expected DeclaredFrames 300, got %d", summary.Source.DeclaredFrames)
	}
}

func TestBuilder_WithWarnings_Appends(t *testing.T) {
	summary := NewBuilder().
		WithWarnings("first").
		WithWarnings("second", "third").
		Build()

	if len(summary.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d", len(summary.Warnings))
	}
	if summary.Warnings[2] != "third" {
		t.Errorf("expected last warning 'third', got '%s'", summary.Warnings[2])
	}
}

func TestBuilder_FullChain(t *testing.T) {
	summary := NewBuilder().
		WithRunID("run-1").
		WithSource(SourceInfo{Path: "in.mp4"}).
		WithSettings(Settings{Quality: 75, Resolution: "320x240", MaxFrames: 10, Backend: "auto"}).
		WithOutput(OutputInfo{Dir: "data", FrameCount: 10, PayloadBytes: 5000}).
		WithOutcome(Outcome{State: "done", Duration: 2 * time.Second, EndedEarly: true}).
		Build()

	if summary.RunID != "run-1" {
		t.Error("RunID not set correctly")
	}
	if summary.Settings.Quality != 75 {
		t.Error("Settings.Quality not set correctly")
	}
	if summary.Output.FrameCount != 10 {
		t.Error("Output.FrameCount not set correctly")
	}
	if !summary.Outcome.EndedEarly {
		t.Error("Outcome.EndedEarly not set correctly")
	}
}

func TestOutputInfo_AverageFrameBytes(t *testing.T) {
	tests := []struct {
		name string
		out  OutputInfo
		want float64
	}{
		{"empty", OutputInfo{}, 0},
		{"even", OutputInfo{FrameCount: 4, PayloadBytes: 400}, 100},
		{"fractional", OutputInfo{FrameCount: 2, PayloadBytes: 3}, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.out.AverageFrameBytes(); got != tt.want {
				t.Errorf("AverageFrameBytes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatFunc(t *testing.T) {
	var f Formatter = FormatFunc(func(s *Summary) string {
		return "run " + s.RunID
	})

	if got := f.Format(&Summary{RunID: "abc"}); got != "run abc" {
		t.Errorf("expected 'run abc', got '%s'", got)
	}
}
