// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sync"

	"github.com/user/framepack/pkg/ports"
)

const (
	// DefaultSampleEvery is the frame interval between sampled frames.
	DefaultSampleEvery = 10
	// MaxSamples caps the number of sampled frames.
	MaxSamples = 16

	thumbWidth  = 160
	sheetCols   = 4
	labelHeight = 16
	gap         = 4
)

// Options controls which frames the sink keeps.
type Options struct {
	SampleEvery int
}

type thumb struct {
	index int
	img   image.Image
}

// Sink writes debug output under a base directory:
//
//	run.json               resolved settings
//	frames/frame-NNNN.jpg  sampled encoded frames as stored in the payload
//	contact-sheet.png      grid of sampled decoded frames
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
	every    int

	mu      sync.Mutex
	saved   int
	thumbs  []thumb
	flushed bool
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer, opts Options) *Sink {
	every := opts.SampleEvery
	if every <= 0 {
		every = DefaultSampleEvery
	}
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
		every:    every,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

func (s *Sink) sampled(index int) bool {
	return index%s.every == 0
}

// SaveSettingsJSON saves the resolved run settings.
func (s *Sink) SaveSettingsJSON(data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "run.json"), data)
}

// SaveEncodedFrame writes the encoded blob of a sampled frame.
func (s *Sink) SaveEncodedFrame(index int, data []byte) error {
	s.mu.Lock()
	if !s.sampled(index) || s.saved >= MaxSamples {
		s.mu.Unlock()
		return nil
	}
	s.saved++
	s.mu.Unlock()

	dir := filepath.Join(s.baseDir, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.jpg", index))
	return s.fs.WriteFile(path, data)
}

// CollectFrame keeps a thumbnail of a sampled frame for the contact sheet.
func (s *Sink) CollectFrame(index int, img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sampled(index) || len(s.thumbs) >= MaxSamples {
		return nil
	}

	if img.Bounds().Empty() {
		return nil
	}
	s.thumbs = append(s.thumbs, thumb{index: index, img: s.renderer.Thumbnail(img, thumbWidth)})
	return nil
}

// Flush renders the contact sheet. Subsequent calls do nothing.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flushed || len(s.thumbs) == 0 {
		s.flushed = true
		return nil
	}
	s.flushed = true

	cellH := 0
	for _, t := range s.thumbs {
		if h := t.img.Bounds().Dy(); h > cellH {
			cellH = h
		}
	}
	cellH += labelHeight

	cols := sheetCols
	if len(s.thumbs) < cols {
		cols = len(s.thumbs)
	}
	rows := (len(s.thumbs) + cols - 1) / cols
	width := cols*(thumbWidth+gap) + gap
	height := rows*(cellH+gap) + gap

	sheet := s.renderer.NewSheet(width, height, color.RGBA{R: 32, G: 32, B: 32, A: 255})
	frame := color.RGBA{R: 96, G: 96, B: 96, A: 255}
	label := ports.LabelStyle{Color: color.White}
	for i, t := range s.thumbs {
		x := gap + (i%cols)*(thumbWidth+gap)
		y := gap + (i/cols)*(cellH+gap)
		b := t.img.Bounds()
		sheet.Place(t.img, x, y)
		sheet.Outline(x, y, b.Dx(), b.Dy(), frame)
		sheet.Label(fmt.Sprintf("#%d", t.index), x+thumbWidth/2, y+cellH-labelHeight/2, label)
	}

	data, err := s.renderer.EncodePNG(sheet.Image())
	if err != nil {
		return fmt.Errorf("encode contact sheet: %w", err)
	}
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	s.thumbs = nil
	return s.fs.WriteFile(filepath.Join(s.baseDir, "contact-sheet.png"), data)
}

var _ ports.DebugSink = (*Sink)(nil)
