// Package smartsource selects a frame-decoding backend for a video file
// and falls back between backends when one cannot open the input.
package smartsource

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/user/framepack/pkg/adapters/ffmpegsource"
	"github.com/user/framepack/pkg/adapters/mp4probe"
	"github.com/user/framepack/pkg/adapters/vidiosource"
	"github.com/user/framepack/pkg/ports"
)

// Backend names a decoding backend.
type Backend string

const (
	// BackendAuto tries Vidio first, then the ffmpeg pipe.
	BackendAuto Backend = "auto"
	// BackendVidio decodes through the Vidio library.
	BackendVidio Backend = "vidio"
	// BackendFFmpeg decodes through an ffmpeg-go raw video pipe.
	BackendFFmpeg Backend = "ffmpeg"
)

// ErrUnknownBackend is returned by ParseBackend for unknown names.
var ErrUnknownBackend = errors.New("smartsource: unknown backend")

// ParseBackend parses a backend name. The empty string means auto.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendAuto:
		return BackendAuto, nil
	case BackendVidio, BackendFFmpeg:
		return Backend(s), nil
	}
	return BackendAuto, fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Options configures the smart source.
type Options struct {
	Backend Backend
	Logger  ports.Logger

	// Backends overrides the concrete sources, keyed by backend.
	// Nil uses the real Vidio and ffmpeg sources.
	Backends map[Backend]ports.FrameSource

	// Probe overrides the container probe. Nil uses mp4probe.ProbeFile.
	Probe func(path string) (mp4probe.Info, error)
}

// Source implements ports.FrameSource over one or more backends.
type Source struct {
	order    []Backend
	backends map[Backend]ports.FrameSource
	probe    func(path string) (mp4probe.Info, error)
	log      ports.Logger
	last     Backend
}

// New creates a Source for the configured backend.
func New(opts Options) *Source {
	backends := opts.Backends
	if backends == nil {
		backends = map[Backend]ports.FrameSource{
			BackendVidio:  vidiosource.New(),
			BackendFFmpeg: ffmpegsource.New(),
		}
	}

	var order []Backend
	switch opts.Backend {
	case BackendVidio:
		order = []Backend{BackendVidio}
	case BackendFFmpeg:
		order = []Backend{BackendFFmpeg}
	default:
		order = []Backend{BackendVidio, BackendFFmpeg}
	}

	probe := opts.Probe
	if probe == nil {
		probe = mp4probe.ProbeFile
	}

	return &Source{
		order:    order,
		backends: backends,
		probe:    probe,
		log:      opts.Logger,
	}
}

// Backend returns the backend that opened the most recent video.
func (s *Source) Backend() Backend {
	return s.last
}

// Open checks the path, then tries each backend in order.
func (s *Source) Open(ctx context.Context, path string) (ports.VideoHandle, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrCannotOpenSource, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ports.ErrCannotOpenSource, path)
	}

	var errs []error
	for i, b := range s.order {
		src, ok := s.backends[b]
		if !ok {
			continue
		}

		h, err := src.Open(ctx, path)
		if err == nil {
			s.last = b
			s.debug("Source opened with %s backend", b)
			return s.withProbe(path, h), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		errs = append(errs, fmt.Errorf("%s: %w", b, err))
		if i+1 < len(s.order) {
			s.warn("Backend %s failed, falling back to %s: %s", b, s.order[i+1], err)
		}
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no backend available", ports.ErrCannotOpenSource)
	}
	joined := errors.Join(errs...)
	if errors.Is(joined, ports.ErrCannotOpenSource) {
		return nil, joined
	}
	return nil, fmt.Errorf("%w: %w", ports.ErrCannotOpenSource, joined)
}

// withProbe fills in facts the backend could not report from the
// container boxes of ISO-BMFF files.
func (s *Source) withProbe(path string, h ports.VideoHandle) ports.VideoHandle {
	info := h.Info()
	if info.DeclaredFrames > 0 && info.Codec != "" {
		return h
	}
	if !mp4probe.Supported(path) {
		return h
	}

	p, err := s.probe(path)
	if err != nil {
		s.debug("Container probe failed: %s", err)
		return h
	}
	s.debug("Container probe: %d frames, %dx%d", p.Frames, p.Width, p.Height)

	if info.DeclaredFrames == 0 {
		info.DeclaredFrames = p.Frames
	}
	if info.Codec == "" {
		info.Codec = p.Codec
	}
	if info.FPS == 0 {
		info.FPS = p.FPS
	}
	return &probedHandle{VideoHandle: h, info: info}
}

func (s *Source) debug(msg string, args ...interface{}) {
	if s.log != nil {
		s.log.Debug(msg, args...)
	}
}

func (s *Source) warn(msg string, args ...interface{}) {
	if s.log != nil {
		s.log.Warn(msg, args...)
	}
}

var _ ports.FrameSource = (*Source)(nil)

type probedHandle struct {
	ports.VideoHandle
	info ports.VideoInfo
}

func (h *probedHandle) Info() ports.VideoInfo {
	return h.info
}
