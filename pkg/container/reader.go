package container

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/user/framepack/pkg/ports"
)

// Metadata is a decoded metadata file.
type Metadata struct {
	Sizes []uint32
}

// FrameCount returns the number of frames described.
func (m Metadata) FrameCount() int {
	return len(m.Sizes)
}

// PayloadBytes returns the sum of all frame lengths.
func (m Metadata) PayloadBytes() uint64 {
	var total uint64
	for _, s := range m.Sizes {
		total += uint64(s)
	}
	return total
}

// Offsets returns the payload offset of each frame.
func (m Metadata) Offsets() []uint64 {
	offsets := make([]uint64, len(m.Sizes))
	var cur uint64
	for i, s := range m.Sizes {
		offsets[i] = cur
		cur += uint64(s)
	}
	return offsets
}

// MarshalBinary encodes the metadata in its on-disk layout.
func (m Metadata) MarshalBinary() ([]byte, error) {
	return encodeMetadata(m.Sizes), nil
}

// ReadMetadata decodes a metadata stream. The stream must end right after
// the last length field.
func ReadMetadata(r io.Reader) (Metadata, error) {
	br := bufio.NewReader(r)
	var field [fieldSize]byte

	if _, err := io.ReadFull(br, field[:]); err != nil {
		return Metadata{}, fmt.Errorf("%w: frame count: %v", ErrTruncatedMetadata, err)
	}
	count := binary.LittleEndian.Uint32(field[:])

	// The count is untrusted; grow as lengths actually arrive.
	sizes := make([]uint32, 0, min(count, 1<<16))
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(br, field[:]); err != nil {
			return Metadata{}, fmt.Errorf("%w: length %d of %d: %v", ErrTruncatedMetadata, i, count, err)
		}
		sizes = append(sizes, binary.LittleEndian.Uint32(field[:]))
	}

	if _, err := br.ReadByte(); !errors.Is(err, io.EOF) {
		if err != nil {
			return Metadata{}, fmt.Errorf("read metadata: %w", err)
		}
		return Metadata{}, ErrTrailingMetadata
	}

	return Metadata{Sizes: sizes}, nil
}

// Report is the result of inspecting an artifact on disk.
type Report struct {
	Paths
	Metadata    Metadata
	PayloadSize int64
}

// Verify checks that the payload size equals the sum of frame lengths.
func (r Report) Verify() error {
	if uint64(r.PayloadSize) != r.Metadata.PayloadBytes() {
		return fmt.Errorf("%w: payload has %d bytes, metadata describes %d",
			ErrSizeMismatch, r.PayloadSize, r.Metadata.PayloadBytes())
	}
	return nil
}

// Inspect reads the artifact in dir without loading the payload.
func Inspect(fs ports.FileSystem, dir string) (Report, error) {
	paths := PathsFor(dir)

	f, err := fs.Open(paths.Metadata)
	if err != nil {
		return Report{}, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()

	meta, err := ReadMetadata(f)
	if err != nil {
		return Report{}, err
	}

	size, err := fs.Size(paths.Frames)
	if err != nil {
		return Report{}, fmt.Errorf("stat payload: %w", err)
	}

	return Report{Paths: paths, Metadata: meta, PayloadSize: size}, nil
}

// Split streams the payload in dir and calls fn once per frame in order.
// The slice passed to fn is reused between calls.
func Split(fs ports.FileSystem, dir string, fn func(index int, data []byte) error) error {
	report, err := Inspect(fs, dir)
	if err != nil {
		return err
	}
	if err := report.Verify(); err != nil {
		return err
	}

	f, err := fs.Open(report.Frames)
	if err != nil {
		return fmt.Errorf("open payload: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var buf []byte
	for i, size := range report.Metadata.Sizes {
		if cap(buf) < int(size) {
			buf = make([]byte, size)
		}
		buf = buf[:size]
		if _, err := io.ReadFull(br, buf); err != nil {
			return fmt.Errorf("read frame %d: %w", i, err)
		}
		if err := fn(i, buf); err != nil {
			return err
		}
	}
	return nil
}
