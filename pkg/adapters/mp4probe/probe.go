// Package mp4probe reads container-level video facts from ISO-BMFF files
// (mp4, mov, m4v) without decoding any samples.
package mp4probe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"
)

// ErrNoVideoTrack is returned when the container has no video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Info describes the first video track of a container.
type Info struct {
	// Codec is the sample entry type, e.g. "avc1", "hvc1" or "av01".
	Codec string
	// Frames is the number of samples in the track.
	Frames int
	// Width and Height come from the sample entry.
	Width  int
	Height int
	// FPS is derived from the media duration; zero when unknown.
	FPS float64
}

// Supported reports whether path has an extension this package can parse.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return true
	}
	return false
}

// ProbeFile probes the file at path.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return Probe(f)
}

// Probe parses boxes from r. Media data is skipped, not loaded.
func Probe(r io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(r, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	if mp4File.IsFragmented() {
		if mp4File.Init == nil || mp4File.Init.Moov == nil {
			return Info{}, ErrNoVideoTrack
		}
		trak := videoTrack(mp4File.Init.Moov.Traks)
		if trak == nil {
			return Info{}, ErrNoVideoTrack
		}
		info := describeTrack(trak)
		info.Frames = countFragmentSamples(mp4File, trak.Tkhd.TrackID)
		return info, nil
	}

	if mp4File.Moov == nil {
		return Info{}, ErrNoVideoTrack
	}
	trak := videoTrack(mp4File.Moov.Traks)
	if trak == nil {
		return Info{}, ErrNoVideoTrack
	}
	info := describeTrack(trak)
	if stbl := trak.Mdia.Minf.Stbl; stbl.Stsz != nil {
		info.Frames = int(stbl.Stsz.SampleNumber)
	}
	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Duration > 0 && mdhd.Timescale > 0 && info.Frames > 0 {
		seconds := float64(mdhd.Duration) / float64(mdhd.Timescale)
		info.FPS = float64(info.Frames) / seconds
	}
	return info, nil
}

func videoTrack(traks []*mp4.TrakBox) *mp4.TrakBox {
	for _, trak := range traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
			continue
		}
		return trak
	}
	return nil
}

func describeTrack(trak *mp4.TrakBox) Info {
	var info Info
	stsd := trak.Mdia.Minf.Stbl.Stsd
	if stsd == nil {
		return info
	}
	for _, child := range stsd.Children {
		if entry, ok := child.(*mp4.VisualSampleEntryBox); ok {
			info.Codec = entry.Type()
			info.Width = int(entry.Width)
			info.Height = int(entry.Height)
			break
		}
	}
	return info
}

func countFragmentSamples(mp4File *mp4.File, trackID uint32) int {
	total := 0
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd == nil || traf.Tfhd.TrackID != trackID {
					continue
				}
				for _, trun := range traf.Truns {
					total += int(trun.SampleCount())
				}
			}
		}
	}
	return total
}
