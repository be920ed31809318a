package ports

import (
	"image"
	"image/color"
)

// Renderer draws the debug contact sheet.
type Renderer interface {
	// NewSheet returns a blank sheet filled with bg.
	NewSheet(width, height int, bg color.Color) Sheet

	// Thumbnail scales img to width pixels wide, keeping its aspect ratio.
	Thumbnail(img image.Image, width int) image.Image

	// EncodePNG encodes a finished sheet.
	EncodePNG(img image.Image) ([]byte, error)
}

// Sheet is a drawing surface for thumbnails and their labels.
type Sheet interface {
	// Place draws img with its top-left corner at (x, y).
	Place(img image.Image, x, y int)

	// Outline strokes a one-pixel rectangle.
	Outline(x, y, w, h int, c color.Color)

	// Label draws text centred on (cx, cy).
	Label(text string, cx, cy int, style LabelStyle)

	// Image returns the current contents.
	Image() image.Image
}

// LabelStyle controls label rendering. A zero FontSize uses the
// renderer's built-in face.
type LabelStyle struct {
	FontPath string
	FontSize float64
	Color    color.Color
}
