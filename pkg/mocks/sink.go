package mocks

import (
	"image"
	"sync"

	"github.com/user/framepack/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	SettingsJSON    []byte
	EncodedFrames   map[int][]byte
	CollectedFrames []int
	FlushCalls      int

	FlushFunc func() error
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:       enabled,
		EncodedFrames: make(map[int][]byte),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveSettingsJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SettingsJSON = data
	return nil
}

func (m *DebugSink) SaveEncodedFrame(index int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EncodedFrames[index] = append([]byte(nil), data...)
	return nil
}

func (m *DebugSink) CollectFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CollectedFrames = append(m.CollectedFrames, index)
	return nil
}

func (m *DebugSink) Flush() error {
	m.mu.Lock()
	m.FlushCalls++
	m.mu.Unlock()
	if m.FlushFunc != nil {
		return m.FlushFunc()
	}
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
