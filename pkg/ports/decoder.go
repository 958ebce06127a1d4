package ports

import (
	"errors"

	"github.com/Eyevinn/mp4ff/mp4"
)

// ErrDecodeFailed is reported through DecodeStatus when the service could not
// decode a submitted access unit.
var ErrDecodeFailed = errors.New("ports: decode failed")

// PixelFormat identifies the layout of decoded picture planes.
type PixelFormat int

const (
	// PixelFormatNV12 is 8-bit 4:2:0 with a luma plane followed by one
	// interleaved CbCr plane of half height.
	PixelFormatNV12 PixelFormat = iota
)

// String returns the lowercase name of the pixel format.
func (p PixelFormat) String() string {
	switch p {
	case PixelFormatNV12:
		return "nv12"
	default:
		return "unknown"
	}
}

// ParsePixelFormat parses a pixel format name. Unknown names return false.
func ParsePixelFormat(s string) (PixelFormat, bool) {
	switch s {
	case "nv12", "":
		return PixelFormatNV12, true
	default:
		return 0, false
	}
}

// DecodeStatus is the outcome reported for one submitted access unit.
type DecodeStatus int

const (
	// StatusOK means a picture was produced.
	StatusOK DecodeStatus = iota
	// StatusNoPicture means the service finished the unit without emitting a
	// picture. It is not an error.
	StatusNoPicture
	// StatusFailed means the unit could not be decoded.
	StatusFailed
)

// String returns the status name.
func (s DecodeStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoPicture:
		return "no-picture"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FormatDescription is the decoder configuration derived from one SPS and one PPS.
type FormatDescription struct {
	Width         int
	Height        int
	Profile       uint32
	Level         uint32
	NALLengthSize int
	SPS           []byte
	PPS           []byte

	// AvcC is the AVC decoder configuration record for the parameter sets.
	AvcC *mp4.AvcCBox
}

// Plane is one image plane of a decoded picture.
type Plane struct {
	Data   []byte // Stride*Rows bytes
	Stride int    // Bytes per row, including padding
	Rows   int
	Width  int // Visible bytes per row
}

// DecodedPicture is a picture emitted by a decode session.
// It is only valid for the duration of the CompletionHandler call.
type DecodedPicture struct {
	Width  int
	Height int
	Format PixelFormat
	Planes []Plane
}

// CompletionHandler receives decode results. It may be called from any
// goroutine, concurrently with Decode, and must not block.
type CompletionHandler func(status DecodeStatus, pic *DecodedPicture)

// DecoderService is an opaque H.264 decoder.
type DecoderService interface {
	// CreateFormatDescription builds a format description from SPS and PPS
	// payloads (start code excluded) for length-prefixed units of nalLengthSize bytes.
	CreateFormatDescription(sps, pps []byte, nalLengthSize int) (*FormatDescription, error)

	// OpenSession creates a decode session that reports pictures to handler.
	OpenSession(desc *FormatDescription, format PixelFormat, handler CompletionHandler) (DecodeSession, error)
}

// DecodeSession accepts length-prefixed access units in bitstream order.
type DecodeSession interface {
	// Decode submits one access unit. It returns once the unit was accepted;
	// the picture arrives later through the CompletionHandler. The caller may
	// reuse au once Decode returns.
	Decode(au []byte) error

	// Flush blocks until every accepted unit has been reported.
	Flush() error

	// Close releases the session. No handler calls happen after Close returns.
	Close() error
}
