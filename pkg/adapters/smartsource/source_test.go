package smartsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/framepack/pkg/adapters/mp4probe"
	"github.com/user/framepack/pkg/mocks"
	"github.com/user/framepack/pkg/ports"
)

func touch(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"", BackendAuto, false},
		{"auto", BackendAuto, false},
		{"vidio", BackendVidio, false},
		{"ffmpeg", BackendFFmpeg, false},
		{"gstreamer", BackendAuto, true},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBackend(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseBackend(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSource_MissingFile(t *testing.T) {
	vidio := &mocks.FrameSource{}
	src := New(Options{Backends: map[Backend]ports.FrameSource{BackendVidio: vidio}})

	_, err := src.Open(context.Background(), filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, ports.ErrCannotOpenSource) {
		t.Errorf("expected ErrCannotOpenSource, got %v", err)
	}
	if len(vidio.OpenCalls) != 0 {
		t.Error("backend should not be tried for a missing file")
	}
}

func TestSource_Directory(t *testing.T) {
	src := New(Options{Backends: map[Backend]ports.FrameSource{}})
	if _, err := src.Open(context.Background(), t.TempDir()); !errors.Is(err, ports.ErrCannotOpenSource) {
		t.Errorf("expected ErrCannotOpenSource, got %v", err)
	}
}

func TestSource_AutoFallsBack(t *testing.T) {
	path := touch(t, "clip.mkv")
	vidio := &mocks.FrameSource{OpenErr: errors.New("vidio broke")}
	ff := &mocks.FrameSource{Info: ports.VideoInfo{Width: 4, Height: 4, DeclaredFrames: 3}, Frames: 3}

	src := New(Options{
		Backend:  BackendAuto,
		Logger:   mocks.NewLogger(),
		Backends: map[Backend]ports.FrameSource{BackendVidio: vidio, BackendFFmpeg: ff},
	})

	h, err := src.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer h.Close()

	if src.Backend() != BackendFFmpeg {
		t.Errorf("expected ffmpeg backend, got %q", src.Backend())
	}
	if len(vidio.OpenCalls) != 1 || len(ff.OpenCalls) != 1 {
		t.Errorf("expected both backends tried once, got %d and %d", len(vidio.OpenCalls), len(ff.OpenCalls))
	}
}

func TestSource_ExplicitBackendDoesNotFallBack(t *testing.T) {
	path := touch(t, "clip.mkv")
	ff := &mocks.FrameSource{OpenErr: errors.New("no ffprobe")}
	vidio := &mocks.FrameSource{Frames: 1}

	src := New(Options{
		Backend:  BackendFFmpeg,
		Backends: map[Backend]ports.FrameSource{BackendVidio: vidio, BackendFFmpeg: ff},
	})

	_, err := src.Open(context.Background(), path)
	if !errors.Is(err, ports.ErrCannotOpenSource) {
		t.Errorf("expected ErrCannotOpenSource, got %v", err)
	}
	if len(vidio.OpenCalls) != 0 {
		t.Error("vidio should not be tried when ffmpeg is selected")
	}
}

func TestSource_AllBackendsFail(t *testing.T) {
	path := touch(t, "clip.mkv")
	src := New(Options{
		Backends: map[Backend]ports.FrameSource{
			BackendVidio:  &mocks.FrameSource{OpenErr: errors.New("a")},
			BackendFFmpeg: &mocks.FrameSource{OpenErr: errors.New("b")},
		},
	})

	if _, err := src.Open(context.Background(), path); !errors.Is(err, ports.ErrCannotOpenSource) {
		t.Errorf("expected ErrCannotOpenSource, got %v", err)
	}
}

func TestSource_ProbeFillsDeclaredFrames(t *testing.T) {
	path := touch(t, "clip.mp4")
	vidio := &mocks.FrameSource{Info: ports.VideoInfo{Width: 8, Height: 8}, Frames: 2}

	probed := 0
	src := New(Options{
		Backends: map[Backend]ports.FrameSource{BackendVidio: vidio},
		Probe: func(p string) (mp4probe.Info, error) {
			probed++
			return mp4probe.Info{Codec: "avc1", Frames: 42, FPS: 24}, nil
		},
	})

	h, err := src.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	info := h.Info()
	if info.DeclaredFrames != 42 || info.Codec != "avc1" || info.FPS != 24 {
		t.Errorf("expected probed info, got %+v", info)
	}
	if probed != 1 {
		t.Errorf("expected one probe, got %d", probed)
	}

	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if !vidio.Handles[0].Closed() {
		t.Error("Close should reach the backend handle")
	}
}

func TestSource_ProbeSkipped(t *testing.T) {
	probe := func(p string) (mp4probe.Info, error) {
		t.Errorf("unexpected probe of %s", p)
		return mp4probe.Info{}, nil
	}

	t.Run("backend reported everything", func(t *testing.T) {
		src := New(Options{
			Backends: map[Backend]ports.FrameSource{BackendVidio: &mocks.FrameSource{
				Info: ports.VideoInfo{DeclaredFrames: 5, Codec: "h264"},
			}},
			Probe: probe,
		})
		if _, err := src.Open(context.Background(), touch(t, "clip.mp4")); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("not an iso-bmff file", func(t *testing.T) {
		src := New(Options{
			Backends: map[Backend]ports.FrameSource{BackendVidio: &mocks.FrameSource{}},
			Probe:    probe,
		})
		if _, err := src.Open(context.Background(), touch(t, "clip.webm")); err != nil {
			t.Fatal(err)
		}
	})
}

func TestSource_ProbeErrorKeepsBackendInfo(t *testing.T) {
	src := New(Options{
		Backends: map[Backend]ports.FrameSource{BackendVidio: &mocks.FrameSource{
			Info: ports.VideoInfo{Width: 2, Height: 2},
		}},
		Probe: func(p string) (mp4probe.Info, error) { return mp4probe.Info{}, mp4probe.ErrNoVideoTrack },
	})
	h, err := src.Open(context.Background(), touch(t, "clip.mov"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if h.Info().DeclaredFrames != 0 {
		t.Errorf("expected declared frames 0, got %d", h.Info().DeclaredFrames)
	}
}

func TestSource_FallbackIsLogged(t *testing.T) {
	log := mocks.NewLogger()
	src := New(Options{
		Logger: log,
		Backends: map[Backend]ports.FrameSource{
			BackendVidio:  &mocks.FrameSource{OpenErr: errors.New("vidio broke")},
			BackendFFmpeg: &mocks.FrameSource{},
		},
	})
	if _, err := src.Open(context.Background(), touch(t, "clip.mkv")); err != nil {
		t.Fatal(err)
	}
	if !log.Contains(ports.LevelWarn, "falling back to ffmpeg") {
		t.Errorf("expected fallback warning, got %v", log.Messages(ports.LevelWarn))
	}
}
