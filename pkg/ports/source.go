package ports

import (
	"context"
	"errors"
	"image"
)

var (
	// ErrCannotOpenSource is returned when a video source cannot be opened.
	// No output is produced when this error occurs.
	ErrCannotOpenSource = errors.New("cannot open video source")

	// ErrEndOfStream is returned by VideoHandle.Next when the sequence is exhausted.
	ErrEndOfStream = errors.New("end of stream")

	// ErrReadFailure is wrapped by VideoHandle.Next when a frame cannot be
	// read mid-stream. The handle is finished afterwards; frames already
	// returned remain valid.
	ErrReadFailure = errors.New("frame read failed")
)

// VideoInfo describes an opened video as reported by its container.
type VideoInfo struct {
	// DeclaredFrames is the frame count reported by the container.
	// It is advisory: the actual number of readable frames may be smaller.
	// Zero means the container did not report a count.
	DeclaredFrames int
	FPS            float64
	Width          int
	Height         int
	Codec          string
}

// FrameSource opens videos for sequential frame extraction.
type FrameSource interface {
	// Open acquires a handle on the video at path.
	// Returns an error wrapping ErrCannotOpenSource if the video cannot be opened.
	Open(ctx context.Context, path string) (VideoHandle, error)
}

// VideoHandle is an opened video producing a lazy, finite, non-restartable
// sequence of frames.
type VideoHandle interface {
	// Info returns the metadata reported for the video.
	Info() VideoInfo

	// Next reads the next frame. Each call returns a freshly allocated image
	// owned by the caller. Returns ErrEndOfStream once the sequence is exhausted
	// and an error wrapping ErrReadFailure when decoding fails.
	Next() (*image.RGBA, error)

	// Close releases the handle. It is safe to call more than once.
	Close() error
}
