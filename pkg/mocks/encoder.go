package mocks

import (
	"fmt"
	"image"

	"github.com/user/framepack/pkg/pipeline"
	"github.com/user/framepack/pkg/ports"
)

// ImageEncoder is a mock implementation of ports.ImageEncoder.
// By default it returns a deterministic blob derived from the frame size,
// the quality and the top-left pixel.
type ImageEncoder struct {
	EncodeFunc func(img image.Image, quality int) ([]byte, error)

	// Recorded calls for verification
	EncodeCalls []EncodeCall
}

// EncodeCall records a call to Encode.
type EncodeCall struct {
	Size    pipeline.Dimension
	Quality int
}

func (m *ImageEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	b := img.Bounds()
	m.EncodeCalls = append(m.EncodeCalls, EncodeCall{
		Size:    pipeline.Dimension{Width: b.Dx(), Height: b.Dy()},
		Quality: quality,
	})
	if m.EncodeFunc != nil {
		return m.EncodeFunc(img, quality)
	}
	r, g, bl, _ := img.At(b.Min.X, b.Min.Y).RGBA()
	return []byte(fmt.Sprintf("JPEG:%dx%d:q%d:%02x%02x%02x", b.Dx(), b.Dy(), quality, r>>8, g>>8, bl>>8)), nil
}

var _ ports.ImageEncoder = (*ImageEncoder)(nil)
