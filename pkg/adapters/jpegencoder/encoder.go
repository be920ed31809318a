// Package jpegencoder encodes frames as baseline JPEG.
package jpegencoder

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/user/framepack/pkg/ports"
)

// Encoder implements ports.ImageEncoder with image/jpeg.
type Encoder struct {
	// buffer capacity hint carried between calls
	lastSize int
}

// New creates a new Encoder.
func New() *Encoder {
	return &Encoder{}
}

// Encode compresses img at quality, clamped to [1, 100].
// The returned slice is owned by the caller.
func (e *Encoder) Encode(img image.Image, quality int) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("jpegencoder: empty image")
	}
	if quality < ports.MinQuality {
		quality = ports.MinQuality
	} else if quality > ports.MaxQuality {
		quality = ports.MaxQuality
	}

	var buf bytes.Buffer
	buf.Grow(e.lastSize)
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpegencoder: %w", err)
	}
	e.lastSize = buf.Len()
	return buf.Bytes(), nil
}

var _ ports.ImageEncoder = (*Encoder)(nil)
