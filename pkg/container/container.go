// Package container implements the two-file frame container read by the
// playback device.
//
// The payload file is the raw concatenation of encoded frames in emission
// order, with no delimiters. The metadata file holds a little-endian uint32
// frame count followed by one little-endian uint32 byte length per frame:
//
//	offset 0        uint32 frameCount
//	offset 4+4*i    uint32 length[i]
//	offset 4+4*n    EOF
//
// Frame boundaries in the payload can only be recovered from the metadata.
package container

import (
	"errors"
	"math"
	"path/filepath"
)

// File names expected by the playback firmware.
const (
	FramesFileName   = "video_frames.bin"
	MetadataFileName = "video_metadata.bin"
)

const (
	// fieldSize is the width of every count and length field.
	fieldSize = 4

	// MaxFrames is the largest frame count the metadata can express.
	MaxFrames = math.MaxUint32

	// MaxPayloadBytes is the largest payload the device can address.
	MaxPayloadBytes = math.MaxUint32

	tmpSuffix = ".tmp"
	bakSuffix = ".bak"
)

var (
	// ErrWriteFailure is returned when the artifact cannot be written.
	// The run must abort; no metadata is left behind.
	ErrWriteFailure = errors.New("container: write failure")

	// ErrFrameCountOverflow is returned when another frame would exceed MaxFrames.
	ErrFrameCountOverflow = errors.New("container: frame count exceeds uint32 range")

	// ErrPayloadOverflow is returned when another frame would push the payload past MaxPayloadBytes.
	ErrPayloadOverflow = errors.New("container: payload size exceeds uint32 range")

	// ErrWriterClosed is returned when a finished or aborted writer is used.
	ErrWriterClosed = errors.New("container: writer closed")

	// ErrTruncatedMetadata is returned when the metadata ends before all declared lengths.
	ErrTruncatedMetadata = errors.New("container: truncated metadata")

	// ErrTrailingMetadata is returned when the metadata has bytes after the last length.
	ErrTrailingMetadata = errors.New("container: trailing bytes after metadata")

	// ErrSizeMismatch is returned when the payload size differs from the sum of frame lengths.
	ErrSizeMismatch = errors.New("container: payload size does not match metadata")
)

// Paths locates the files of an artifact.
type Paths struct {
	Dir      string
	Frames   string
	Metadata string
}

// PathsFor returns the artifact paths inside dir.
func PathsFor(dir string) Paths {
	return Paths{
		Dir:      dir,
		Frames:   filepath.Join(dir, FramesFileName),
		Metadata: filepath.Join(dir, MetadataFileName),
	}
}

// Artifact describes a completed artifact.
type Artifact struct {
	Paths
	FrameCount    int
	PayloadBytes  uint64
	MetadataBytes int
	MaxFrameBytes uint32
}
