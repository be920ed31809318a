package mocks

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/user/framepack/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource producing
// synthetic pattern frames.
type FrameSource struct {
	// Info is reported by every opened handle.
	Info ports.VideoInfo

	// Frames is the number of frames actually readable, which may differ
	// from Info.DeclaredFrames.
	Frames int

	// ReadErr, when set, is returned by Next in place of frame ReadErrAt.
	ReadErr   error
	ReadErrAt int

	// OnRead, when set, is called at the start of every Next with the
	// index of the frame about to be read.
	OnRead func(index int)

	// OpenErr, when set, is returned from Open wrapped in ErrCannotOpenSource.
	OpenErr error

	// Recorded calls for verification
	OpenCalls []string
	Handles   []*VideoHandle
}

// Open returns a handle over the synthetic frames.
func (m *FrameSource) Open(ctx context.Context, path string) (ports.VideoHandle, error) {
	m.OpenCalls = append(m.OpenCalls, path)
	if m.OpenErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrCannotOpenSource, path, m.OpenErr)
	}
	h := &VideoHandle{info: m.Info, frames: m.Frames, readErr: m.ReadErr, readErrAt: m.ReadErrAt, onRead: m.OnRead}
	m.Handles = append(m.Handles, h)
	return h, nil
}

var _ ports.FrameSource = (*FrameSource)(nil)

// VideoHandle is the handle returned by FrameSource.
type VideoHandle struct {
	info   ports.VideoInfo
	frames int
	next   int

	readErr   error
	readErrAt int
	onRead    func(index int)

	// Reads counts successful frame reads.
	Reads int
	// CloseCalls counts calls to Close.
	CloseCalls int
}

func (h *VideoHandle) Info() ports.VideoInfo {
	return h.info
}

func (h *VideoHandle) Next() (*image.RGBA, error) {
	if h.CloseCalls > 0 {
		return nil, errors.New("mock: handle closed")
	}
	if h.onRead != nil {
		h.onRead(h.next)
	}
	if h.readErr != nil && h.next == h.readErrAt {
		return nil, h.readErr
	}
	if h.next >= h.frames {
		return nil, ports.ErrEndOfStream
	}
	img := PatternFrame(h.info.Width, h.info.Height, h.next)
	h.next++
	h.Reads++
	return img, nil
}

func (h *VideoHandle) Close() error {
	h.CloseCalls++
	return nil
}

// Closed reports whether Close was called at least once.
func (h *VideoHandle) Closed() bool {
	return h.CloseCalls > 0
}

var _ ports.VideoHandle = (*VideoHandle)(nil)

// PatternFrame returns a deterministic gradient frame whose colours shift with index.
func PatternFrame(width, height, index int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x*255/max(width, 1) + index*7),
				G: uint8(y*255/max(height, 1) + index*13),
				B: uint8(index * 31),
				A: 255,
			})
		}
	}
	return img
}
