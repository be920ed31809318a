package mocks

import (
	"image"
	"image/color"

	"github.com/user/framepack/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	EncodePNGFunc func(img image.Image) ([]byte, error)

	// Recorded calls for verification
	Sheets         []*Sheet
	ThumbnailCalls int
}

func (m *Renderer) NewSheet(width, height int, bg color.Color) ports.Sheet {
	s := &Sheet{Width: width, Height: height}
	m.Sheets = append(m.Sheets, s)
	return s
}

// Thumbnail returns a blank image of the scaled size.
func (m *Renderer) Thumbnail(img image.Image, width int) image.Image {
	m.ThumbnailCalls++
	b := img.Bounds()
	height := 1
	if b.Dx() > 0 && b.Dy()*width/b.Dx() > 1 {
		height = b.Dy() * width / b.Dx()
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *Renderer) EncodePNG(img image.Image) ([]byte, error) {
	if m.EncodePNGFunc != nil {
		return m.EncodePNGFunc(img)
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

var _ ports.Renderer = (*Renderer)(nil)

// Sheet records what was drawn on it.
type Sheet struct {
	Width  int
	Height int

	Placed   []image.Point
	Outlines int
	Labels   []string
}

func (m *Sheet) Place(img image.Image, x, y int) {
	m.Placed = append(m.Placed, image.Pt(x, y))
}

func (m *Sheet) Outline(x, y, w, h int, c color.Color) {
	m.Outlines++
}

func (m *Sheet) Label(text string, cx, cy int, style ports.LabelStyle) {
	m.Labels = append(m.Labels, text)
}

func (m *Sheet) Image() image.Image {
	return image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
}

var _ ports.Sheet = (*Sheet)(nil)
