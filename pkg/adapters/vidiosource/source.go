// Package vidiosource reads video frames through the Vidio library,
// which drives an ffmpeg subprocess and decodes to RGBA.
package vidiosource

import (
	"context"
	"fmt"
	"image"
	"math"
	"strconv"
	"sync"

	vidio "github.com/AlexEidt/Vidio"

	"github.com/user/framepack/pkg/ports"
)

// Source implements ports.FrameSource using Vidio.
type Source struct{}

// New creates a new Source.
func New() *Source {
	return &Source{}
}

// Open starts decoding the video at path.
func (s *Source) Open(ctx context.Context, path string) (ports.VideoHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	video, err := vidio.NewVideo(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrCannotOpenSource, path, err)
	}
	if video.Width() <= 0 || video.Height() <= 0 {
		video.Close()
		return nil, fmt.Errorf("%w: %s: no video stream", ports.ErrCannotOpenSource, path)
	}

	width, height := displaySize(video.Width(), video.Height(), video.MetaData())
	return &handle{
		video: video,
		info: ports.VideoInfo{
			DeclaredFrames: video.Frames(),
			FPS:            video.FPS(),
			Width:          width,
			Height:         height,
			Codec:          video.Codec(),
		},
	}, nil
}

// displaySize returns the size of the frames ffmpeg emits after applying
// the stream's display rotation. Vidio already swaps for a 90 or 270
// rotate tag but not for display matrix side data.
func displaySize(width, height int, meta map[string]string) (int, int) {
	if tag := meta["tag:rotate"]; tag == "90" || tag == "270" {
		return width, height
	}
	deg, err := strconv.ParseFloat(meta["rotation"], 64)
	if err != nil {
		return width, height
	}
	r := int(math.Round(deg)) % 360
	if r < 0 {
		r += 360
	}
	if r == 90 || r == 270 {
		return height, width
	}
	return width, height
}

var _ ports.FrameSource = (*Source)(nil)

type handle struct {
	video *vidio.Video
	info  ports.VideoInfo

	mu     sync.Mutex
	done   bool
	closed bool
}

func (h *handle) Info() ports.VideoInfo {
	return h.info
}

// Next decodes directly into a new RGBA image. Vidio does not separate
// decode errors from end of input, so a false Read ends the stream.
func (h *handle) Next() (*image.RGBA, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done || h.closed {
		return nil, ports.ErrEndOfStream
	}

	img := image.NewRGBA(image.Rect(0, 0, h.info.Width, h.info.Height))
	if err := h.video.SetFrameBuffer(img.Pix); err != nil {
		h.done = true
		return nil, fmt.Errorf("%w: %w", ports.ErrReadFailure, err)
	}
	if !h.video.Read() {
		h.done = true
		return nil, ports.ErrEndOfStream
	}
	return img, nil
}

func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	h.video.Close()
	return nil
}
