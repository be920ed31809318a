// Package encode implements the frame compression stage.
package encode

import (
	"context"
	"fmt"

	"github.com/user/framepack/pkg/pipeline"
	"github.com/user/framepack/pkg/ports"
)

// Stage compresses decoded frames with an image encoder.
type Stage struct {
	encoder ports.ImageEncoder
	quality int
}

// NewStage creates a new encode stage. quality is passed to the encoder
// unchanged; range checking happens when settings are resolved.
func NewStage(encoder ports.ImageEncoder, quality int) *Stage {
	return &Stage{
		encoder: encoder,
		quality: quality,
	}
}

// Quality returns the configured quality.
func (s *Stage) Quality() int {
	return s.quality
}

// Execute encodes one frame.
func (s *Stage) Execute(ctx context.Context, input pipeline.PixelFrame) (pipeline.EncodedFrame, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.EncodedFrame{}, err
	}

	data, err := s.encoder.Encode(input.Image, s.quality)
	if err != nil {
		return pipeline.EncodedFrame{}, fmt.Errorf("encode frame %d: %w", input.Index, err)
	}

	return pipeline.EncodedFrame{
		Index: input.Index,
		Data:  data,
		Size:  input.Size(),
	}, nil
}

var _ pipeline.Stage[pipeline.PixelFrame, pipeline.EncodedFrame] = (*Stage)(nil)
