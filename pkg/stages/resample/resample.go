// Package resample implements the frame resampling stage.
package resample

import (
	"context"
	"image"

	"golang.org/x/image/draw"

	"github.com/user/framepack/pkg/pipeline"
)

// Stage scales frames to a fixed target size. Aspect ratio is not
// preserved. A zero target passes frames through unchanged.
type Stage struct {
	target pipeline.Dimension
	scaler draw.Scaler
}

// NewStage creates a resample stage for target.
func NewStage(target pipeline.Dimension) *Stage {
	return &Stage{
		target: target,
		scaler: draw.CatmullRom,
	}
}

// Target returns the configured output size.
func (s *Stage) Target() pipeline.Dimension {
	return s.target
}

// Execute returns the frame scaled to the target size.
func (s *Stage) Execute(ctx context.Context, input pipeline.PixelFrame) (pipeline.PixelFrame, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.PixelFrame{}, err
	}
	if s.target.IsZero() || input.Size() == s.target {
		return input, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, s.target.Width, s.target.Height))
	s.scaler.Scale(dst, dst.Bounds(), input.Image, input.Image.Bounds(), draw.Src, nil)

	return pipeline.PixelFrame{Index: input.Index, Image: dst}, nil
}

var _ pipeline.Stage[pipeline.PixelFrame, pipeline.PixelFrame] = (*Stage)(nil)
