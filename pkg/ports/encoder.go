package ports

import (
	"image"
)

// Quality bounds accepted by ImageEncoder.
const (
	MinQuality     = 1
	MaxQuality     = 100
	DefaultQuality = 80
)

// ImageEncoder compresses a single frame into a lossy image blob.
type ImageEncoder interface {
	// Encode compresses img at the given quality (1-100).
	// Output size is data dependent; callers must not assume a ceiling.
	Encode(img image.Image, quality int) ([]byte, error)
}
