package pipeline

import (
	"fmt"
	"image"
)

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// String formats the dimension as WIDTHxHEIGHT.
func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// IsZero reports whether no dimension is set.
func (d Dimension) IsZero() bool {
	return d.Width == 0 && d.Height == 0
}

// PixelFrame is a decoded frame travelling through the pipeline.
// Ownership passes from stage to stage; a stage must not keep it
// after returning.
type PixelFrame struct {
	Index int
	Image image.Image
}

// Size returns the pixel dimensions of the frame.
func (f PixelFrame) Size() Dimension {
	b := f.Image.Bounds()
	return Dimension{Width: b.Dx(), Height: b.Dy()}
}

// EncodedFrame is a compressed frame ready to be appended to the payload.
type EncodedFrame struct {
	Index int
	Data  []byte
	Size  Dimension // pixel dimensions the blob was encoded from
}

// Len returns the byte length of the encoded frame.
func (f EncodedFrame) Len() int {
	return len(f.Data)
}
