package orchestrator_test

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/framepack/pkg/adapters/jpegencoder"
	"github.com/user/framepack/pkg/adapters/logger"
	"github.com/user/framepack/pkg/adapters/nullsink"
	"github.com/user/framepack/pkg/adapters/osfilesystem"
	"github.com/user/framepack/pkg/adapters/smartsource"
	"github.com/user/framepack/pkg/config"
	"github.com/user/framepack/pkg/container"
	"github.com/user/framepack/pkg/mocks"
	"github.com/user/framepack/pkg/orchestrator"
	"github.com/user/framepack/pkg/ports"
)

// convert runs a full conversion of a synthetic source into a temporary
// directory with the real encoder, container and file system.
func convert(t *testing.T, source ports.FrameSource, cfg config.Config) (orchestrator.RunResult, string, error) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "data")
	cfg.OutputDir = dir
	if cfg.Source == "" {
		cfg.Source = "synthetic.mp4"
	}

	orchConfig, _, err := cfg.Resolve("integration")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	orch := orchestrator.New(source, jpegencoder.New(), osfilesystem.New(), nullsink.New(), logger.NewNoop())
	result, err := orch.Run(context.Background(), orchConfig)
	return result, dir, err
}

func syntheticSource(declared, frames int) *mocks.FrameSource {
	return &mocks.FrameSource{
		Info:   ports.VideoInfo{DeclaredFrames: declared, FPS: 24, Width: 96, Height: 64, Codec: "synthetic"},
		Frames: frames,
	}
}

func readArtifact(t *testing.T, dir string) (container.Metadata, []byte) {
	t.Helper()
	report, err := container.Inspect(osfilesystem.New(), dir)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if err := report.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	payload, err := os.ReadFile(report.Frames)
	if err != nil {
		t.Fatalf("read payload: %v", err)
	}
	return report.Metadata, payload
}

func TestIntegration_FullConversion(t *testing.T) {
	result, dir, err := convert(t, syntheticSource(12, 12), config.Defaults())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != orchestrator.StateDone {
		t.Errorf("state = %v, want done", result.State)
	}

	meta, payload := readArtifact(t, dir)
	if meta.FrameCount() != 12 {
		t.Errorf("frame count = %d, want 12", meta.FrameCount())
	}
	if meta.PayloadBytes() != uint64(len(payload)) {
		t.Errorf("sum of lengths %d != payload %d", meta.PayloadBytes(), len(payload))
	}

	// Every frame is a standalone JPEG at native size.
	offsets := meta.Offsets()
	for i, size := range meta.Sizes {
		blob := payload[offsets[i] : offsets[i]+uint64(size)]
		if blob[0] != 0xFF || blob[1] != 0xD8 {
			t.Fatalf("frame %d does not start with SOI", i)
		}
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(blob))
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if cfg.Width != 96 || cfg.Height != 64 {
			t.Errorf("frame %d is %dx%d, want 96x64", i, cfg.Width, cfg.Height)
		}
	}
}

func TestIntegration_Idempotent(t *testing.T) {
	_, dirA, err := convert(t, syntheticSource(8, 8), config.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	_, dirB, err := convert(t, syntheticSource(8, 8), config.Defaults())
	if err != nil {
		t.Fatal(err)
	}

	_, payloadA := readArtifact(t, dirA)
	_, payloadB := readArtifact(t, dirB)
	if !bytes.Equal(payloadA, payloadB) {
		t.Error("payloads differ between identical runs")
	}

	rawA, err := os.ReadFile(filepath.Join(dirA, container.MetadataFileName))
	if err != nil {
		t.Fatal(err)
	}
	rawB, err := os.ReadFile(filepath.Join(dirB, container.MetadataFileName))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rawA, rawB) {
		t.Error("metadata files differ between identical runs")
	}
}

func TestIntegration_FrameCap(t *testing.T) {
	cfg := config.Defaults()
	cfg.MaxFrames = 5

	result, dir, err := convert(t, syntheticSource(30, 30), cfg)
	if err != nil {
		t.Fatal(err)
	}
	meta, _ := readArtifact(t, dir)
	if meta.FrameCount() != 5 {
		t.Errorf("frame count = %d, want 5", meta.FrameCount())
	}
	if result.DisplayTotal != 5 {
		t.Errorf("display total = %d, want 5", result.DisplayTotal)
	}
}

func TestIntegration_Resample(t *testing.T) {
	cfg := config.Defaults()
	cfg.Resolution = "320x240"
	cfg.MaxFrames = 3

	_, dir, err := convert(t, syntheticSource(3, 3), cfg)
	if err != nil {
		t.Fatal(err)
	}

	n := 0
	err = container.Split(osfilesystem.New(), dir, func(index int, data []byte) error {
		n++
		c, err := jpeg.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return err
		}
		if c.Width != 320 || c.Height != 240 {
			t.Errorf("frame %d is %dx%d, want 320x240", index, c.Width, c.Height)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if n != 3 {
		t.Errorf("split %d frames, want 3", n)
	}
}

func TestIntegration_MalformedResolutionContinues(t *testing.T) {
	cfg := config.Defaults()
	cfg.Resolution = "abc"

	result, dir, err := convert(t, syntheticSource(4, 4), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a configuration warning")
	}
	meta, payload := readArtifact(t, dir)
	if meta.FrameCount() != 4 {
		t.Errorf("frame count = %d, want 4", meta.FrameCount())
	}
	c, err := jpeg.DecodeConfig(bytes.NewReader(payload[:meta.Sizes[0]]))
	if err != nil {
		t.Fatal(err)
	}
	if c.Width != 96 || c.Height != 64 {
		t.Errorf("frame is %dx%d, want native 96x64", c.Width, c.Height)
	}
}

func TestIntegration_ZeroFrames(t *testing.T) {
	_, dir, err := convert(t, syntheticSource(0, 0), config.Defaults())
	if err != nil {
		t.Fatal(err)
	}

	meta, err := os.ReadFile(filepath.Join(dir, container.MetadataFileName))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(meta, []byte{0, 0, 0, 0}) {
		t.Errorf("metadata = %v, want four zero bytes", meta)
	}
	info, err := os.Stat(filepath.Join(dir, container.FramesFileName))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("payload size = %d, want 0", info.Size())
	}
}

func TestIntegration_UnreadableSource(t *testing.T) {
	cfg := config.Defaults()
	cfg.Source = filepath.Join(t.TempDir(), "missing.mp4")

	result, dir, err := convert(t, smartsource.New(smartsource.Options{Logger: logger.NewNoop()}), cfg)
	if !errors.Is(err, ports.ErrCannotOpenSource) {
		t.Fatalf("expected ErrCannotOpenSource, got %v", err)
	}
	if result.State != orchestrator.StateFailed {
		t.Errorf("state = %v, want failed", result.State)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("output directory should not exist, stat err = %v", err)
	}
}
