// Package ggrenderer draws debug contact sheets using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/framepack/pkg/ports"
)

// Renderer implements ports.Renderer.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) NewSheet(width, height int, bg color.Color) ports.Sheet {
	dc := gg.NewContext(width, height)
	dc.SetColor(bg)
	dc.Clear()
	return &Sheet{dc: dc}
}

// Thumbnail scales img to the given width. Thumbnails are never less
// than one pixel high.
func (r *Renderer) Thumbnail(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Empty() || width <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func (r *Renderer) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

var _ ports.Renderer = (*Renderer)(nil)

// Sheet implements ports.Sheet over a gg.Context.
type Sheet struct {
	dc *gg.Context
}

func (s *Sheet) Place(img image.Image, x, y int) {
	s.dc.DrawImage(img, x, y)
}

func (s *Sheet) Outline(x, y, w, h int, c color.Color) {
	s.dc.SetColor(c)
	s.dc.SetLineWidth(1)
	// half-pixel offset keeps the stroke on whole pixels
	s.dc.DrawRectangle(float64(x)+0.5, float64(y)+0.5, float64(w-1), float64(h-1))
	s.dc.Stroke()
}

// Label falls back to the built-in face if FontPath cannot be loaded.
func (s *Sheet) Label(text string, cx, cy int, style ports.LabelStyle) {
	if style.Color != nil {
		s.dc.SetColor(style.Color)
	}
	if style.FontPath != "" && style.FontSize > 0 {
		_ = s.dc.LoadFontFace(style.FontPath, style.FontSize)
	}
	s.dc.DrawStringAnchored(text, float64(cx), float64(cy), 0.5, 0.5)
}

func (s *Sheet) Image() image.Image {
	return s.dc.Image()
}

var _ ports.Sheet = (*Sheet)(nil)
