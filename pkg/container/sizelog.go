package container

import (
	"encoding/binary"
)

// SizeLog is the append-only log of frame byte lengths.
//
// It costs 4 bytes per frame and is bounded by MaxFrames, so the worst
// case is 16 GiB; a 10 minute 30 fps source needs about 70 KiB.
type SizeLog struct {
	sizes    []uint32
	total    uint64
	maxSize  uint32
	maxCount uint64
	maxBytes uint64
}

// NewSizeLog creates an empty log bounded by the format limits.
func NewSizeLog() *SizeLog {
	return newSizeLog(MaxFrames, MaxPayloadBytes)
}

func newSizeLog(maxCount, maxBytes uint64) *SizeLog {
	return &SizeLog{maxCount: maxCount, maxBytes: maxBytes}
}

// Check reports whether a frame of n bytes can be appended.
func (l *SizeLog) Check(n int) error {
	if uint64(len(l.sizes)) >= l.maxCount {
		return ErrFrameCountOverflow
	}
	if n < 0 || l.total+uint64(n) > l.maxBytes {
		return ErrPayloadOverflow
	}
	return nil
}

// Append records a frame of n bytes.
func (l *SizeLog) Append(n int) error {
	if err := l.Check(n); err != nil {
		return err
	}
	l.sizes = append(l.sizes, uint32(n))
	l.total += uint64(n)
	if uint32(n) > l.maxSize {
		l.maxSize = uint32(n)
	}
	return nil
}

// Len returns the number of recorded frames.
func (l *SizeLog) Len() int {
	return len(l.sizes)
}

// Total returns the sum of all recorded lengths.
func (l *SizeLog) Total() uint64 {
	return l.total
}

// Max returns the largest recorded length.
func (l *SizeLog) Max() uint32 {
	return l.maxSize
}

// Sizes returns a copy of the recorded lengths.
func (l *SizeLog) Sizes() []uint32 {
	out := make([]uint32, len(l.sizes))
	copy(out, l.sizes)
	return out
}

// MarshalBinary encodes the log in metadata layout.
func (l *SizeLog) MarshalBinary() ([]byte, error) {
	return encodeMetadata(l.sizes), nil
}

func encodeMetadata(sizes []uint32) []byte {
	buf := make([]byte, fieldSize*(len(sizes)+1))
	binary.LittleEndian.PutUint32(buf, uint32(len(sizes)))
	for i, size := range sizes {
		binary.LittleEndian.PutUint32(buf[fieldSize*(i+1):], size)
	}
	return buf
}
