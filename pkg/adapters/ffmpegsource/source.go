// Package ffmpegsource reads video frames by piping raw RGBA video out of
// an ffmpeg subprocess built with ffmpeg-go.
package ffmpegsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/user/framepack/pkg/ports"
)

// Source implements ports.FrameSource using the ffmpeg and ffprobe binaries.
type Source struct{}

// New creates a new Source.
func New() *Source {
	return &Source{}
}

type probeResult struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		NbFrames     string `json:"nb_frames"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
		Tags         struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideDataList []struct {
			Rotation float64 `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// probe reads stream facts with ffprobe.
func probe(path string) (ports.VideoInfo, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbe([]byte(out))
}

func parseProbe(data []byte) (ports.VideoInfo, error) {
	var result probeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return ports.VideoInfo{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	for _, s := range result.Streams {
		if s.CodecType != "video" {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 {
			return ports.VideoInfo{}, errors.New("video stream has no dimensions")
		}

		info := ports.VideoInfo{
			Width:  s.Width,
			Height: s.Height,
			Codec:  s.CodecName,
			FPS:    parseRate(s.AvgFrameRate),
		}

		// ffmpeg applies the display rotation while decoding, so a quarter
		// turn arrives with width and height exchanged.
		rotation := parseSeconds(s.Tags.Rotate)
		for _, sd := range s.SideDataList {
			if sd.Rotation != 0 {
				rotation = sd.Rotation
			}
		}
		if quarterTurn(rotation) {
			info.Width, info.Height = info.Height, info.Width
		}
		if info.FPS == 0 {
			info.FPS = parseRate(s.RFrameRate)
		}

		if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
			info.DeclaredFrames = n
		} else if info.FPS > 0 {
			duration := parseSeconds(s.Duration)
			if duration == 0 {
				duration = parseSeconds(result.Format.Duration)
			}
			info.DeclaredFrames = int(duration*info.FPS + 0.5)
		}
		return info, nil
	}
	return ports.VideoInfo{}, errors.New("no video stream found")
}

// parseRate parses an ffprobe rational such as "30000/1001".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// quarterTurn reports whether a rotation in degrees is an odd multiple of 90.
func quarterTurn(degrees float64) bool {
	r := int(math.Round(degrees)) % 360
	if r < 0 {
		r += 360
	}
	return r == 90 || r == 270
}

func parseSeconds(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// Open probes the file and starts an ffmpeg process decoding it to RGBA.
// Frames are read lazily from the process output.
func (s *Source) Open(ctx context.Context, path string) (ports.VideoHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrCannotOpenSource, err)
	}

	info, err := probe(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrCannotOpenSource, path, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	h := &handle{
		info:      info,
		frameSize: info.Width * info.Height * 4,
		reader:    pr,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	stream := ffmpeg.Input(path).
		Output("pipe:1", ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "rgba",
		}).
		GlobalArgs("-loglevel", "error", "-nostdin").
		WithOutput(pw).
		WithErrorOutput(&h.stderr)
	stream.Context = runCtx

	go func() {
		defer close(h.done)
		err := stream.Run()
		if err != nil && h.stderr.Len() > 0 {
			err = fmt.Errorf("%w: %s", err, strings.TrimSpace(h.stderr.String()))
		}
		pw.CloseWithError(err)
	}()

	return h, nil
}

var _ ports.FrameSource = (*Source)(nil)

type handle struct {
	info      ports.VideoInfo
	frameSize int
	reader    *io.PipeReader
	cancel    context.CancelFunc
	done      chan struct{}
	stderr    bytes.Buffer
	closeOnce sync.Once
	closed    atomic.Bool

	mu    sync.Mutex
	ended bool
}

func (h *handle) Info() ports.VideoInfo {
	return h.info
}

// Next reads one frame worth of bytes. Output that stops on a frame
// boundary ends the stream; a short frame or a process failure is a read
// failure.
func (h *handle) Next() (*image.RGBA, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ended {
		return nil, ports.ErrEndOfStream
	}

	img := image.NewRGBA(image.Rect(0, 0, h.info.Width, h.info.Height))
	if _, err := io.ReadFull(h.reader, img.Pix[:h.frameSize]); err != nil {
		h.ended = true
		if errors.Is(err, io.EOF) || h.closed.Load() {
			return nil, ports.ErrEndOfStream
		}
		return nil, fmt.Errorf("%w: %w", ports.ErrReadFailure, err)
	}
	return img, nil
}

// Close stops the ffmpeg process and waits for it to exit. A Next blocked
// on the pipe returns end of stream.
func (h *handle) Close() error {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		h.cancel()
		h.reader.Close()
		<-h.done
	})
	return nil
}
