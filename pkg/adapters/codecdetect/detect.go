// Package codecdetect identifies what kind of byte stream an input file holds
// before it is handed to the scanner.
package codecdetect

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/annexdec/pkg/nalu"
)

var (
	// ErrContainer is returned for inputs wrapped in a container the
	// scanner does not demux.
	ErrContainer = errors.New("codecdetect: container input is not supported")
	// ErrNoStartCode is returned when the input holds no 4-byte start code.
	ErrNoStartCode = errors.New("codecdetect: no Annex-B start code found")
)

// Format is the framing of an input stream.
type Format string

const (
	FormatAnnexB  Format = "annexb"
	FormatMP4     Format = "mp4"
	FormatUnknown Format = "unknown"
)

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecH265    Codec = "h265"
	CodecAV1     Codec = "av1"
	CodecUnknown Codec = "unknown"
)

// Result describes a detected input.
type Result struct {
	Format Format
	// Codec is only known for container inputs.
	Codec Codec
	// Offset is the position of the first start code; bytes before it are
	// skipped by the scanner.
	Offset int
}

// Detect inspects data and returns ErrContainer or ErrNoStartCode for inputs
// that cannot be decoded as an Annex-B stream.
func Detect(data []byte) (Result, error) {
	if isMP4(data) {
		res := Result{Format: FormatMP4, Codec: CodecUnknown, Offset: -1}
		if f, err := mp4.DecodeFile(bytes.NewReader(data)); err == nil {
			res.Codec = detectFromMP4File(f)
		}
		return res, fmt.Errorf("%w: MP4 with %s video", ErrContainer, res.Codec)
	}

	off := nalu.FirstStartCode(data)
	if off < 0 {
		return Result{Format: FormatUnknown, Codec: CodecUnknown, Offset: -1}, ErrNoStartCode
	}
	return Result{Format: FormatAnnexB, Codec: CodecH264, Offset: off}, nil
}

// isMP4 checks for an ftyp box at the start of data.
func isMP4(data []byte) bool {
	return len(data) >= 8 && string(data[4:8]) == "ftyp"
}

func detectFromMP4File(mp4File *mp4.File) Codec {
	// Check fragmented MP4
	if mp4File.IsFragmented() {
		if mp4File.Init != nil && mp4File.Init.Moov != nil {
			for _, trak := range mp4File.Init.Moov.Traks {
				if codec := detectCodecFromTrack(trak); codec != CodecUnknown {
					return codec
				}
			}
		}
	}

	// Check progressive MP4
	if mp4File.Moov != nil {
		for _, trak := range mp4File.Moov.Traks {
			if codec := detectCodecFromTrack(trak); codec != CodecUnknown {
				return codec
			}
		}
	}

	return CodecUnknown
}

func detectCodecFromTrack(trak *mp4.TrakBox) Codec {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
		return CodecUnknown
	}

	// Only process video tracks
	if trak.Mdia.Hdlr.HandlerType != "vide" {
		return CodecUnknown
	}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return CodecUnknown
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return CodecH264
		case "hvc1", "hev1":
			return CodecH265
		case "av01":
			return CodecAV1
		}
	}

	return CodecUnknown
}
