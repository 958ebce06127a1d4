// Package h264decoder provides ports.DecoderService implementations backed by
// platform decoders.
//   - macOS: VideoToolbox
//   - everywhere else: ffmpeg (external process)
package h264decoder

import (
	"errors"
	"fmt"

	"github.com/user/annexdec/pkg/ports"
)

var (
	// ErrNotInitialized is returned when a closed session is used.
	ErrNotInitialized = errors.New("h264decoder: session not initialized")

	// ErrFFmpegNotFound is returned when ffmpeg is not found in PATH.
	ErrFFmpegNotFound = errors.New("h264decoder: ffmpeg not found in PATH")

	// ErrPlatformNotSupported is returned when the requested backend does not
	// exist on this platform.
	ErrPlatformNotSupported = errors.New("h264decoder: platform not supported")

	// ErrMalformedAccessUnit is returned when a submitted buffer is not a
	// valid length-prefixed access unit.
	ErrMalformedAccessUnit = errors.New("h264decoder: malformed access unit")

	// ErrUnsupportedFormat is returned for parameter sets or pixel formats the
	// backends cannot handle.
	ErrUnsupportedFormat = errors.New("h264decoder: unsupported format")
)

// Backend names a decoder implementation.
type Backend string

const (
	BackendAuto         Backend = "auto"
	BackendVideoToolbox Backend = "videotoolbox"
	BackendFFmpeg       Backend = "ffmpeg"
)

// ParseBackend parses a backend name. The empty string selects BackendAuto.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendAuto:
		return BackendAuto, nil
	case BackendVideoToolbox, BackendFFmpeg:
		return Backend(s), nil
	default:
		return "", fmt.Errorf("unknown decoder backend %q", s)
	}
}

// Options configures New.
type Options struct {
	Backend    Backend
	FFmpegPath string
}

// customFFmpegPath stores a custom ffmpeg path set via SetFFmpegPath.
var customFFmpegPath string

// SetFFmpegPath sets a custom ffmpeg path used when Options.FFmpegPath is empty.
func SetFFmpegPath(path string) {
	customFFmpegPath = path
}

// Service is a ports.DecoderService backed by a platform decoder.
type Service struct {
	backend Backend
	open    func(desc *ports.FormatDescription, handler ports.CompletionHandler) (ports.DecodeSession, error)
}

// New selects a backend. With BackendAuto, VideoToolbox is preferred where
// it exists and ffmpeg is used otherwise.
func New(opts Options, logger ports.Logger) (*Service, error) {
	logger = logger.WithComponent("decoder")

	backend := opts.Backend
	if backend == "" || backend == BackendAuto {
		backend = BackendFFmpeg
		if videoToolboxAvailable() {
			backend = BackendVideoToolbox
		}
	}

	switch backend {
	case BackendVideoToolbox:
		if !videoToolboxAvailable() {
			return nil, fmt.Errorf("%w: %s", ErrPlatformNotSupported, backend)
		}
		return &Service{backend: backend, open: openVideoToolbox}, nil

	case BackendFFmpeg:
		path, err := findFFmpeg(opts.FFmpegPath)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using ffmpeg at %s", path)
		return &Service{
			backend: backend,
			open: func(desc *ports.FormatDescription, handler ports.CompletionHandler) (ports.DecodeSession, error) {
				return openFFmpeg(path, desc, handler)
			},
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrPlatformNotSupported, backend)
	}
}

// Backend returns the selected backend.
func (s *Service) Backend() Backend {
	return s.backend
}

// CreateFormatDescription parses sps for the picture size and builds the
// decoder configuration record.
func (s *Service) CreateFormatDescription(sps, pps []byte, nalLengthSize int) (*ports.FormatDescription, error) {
	return describe(sps, pps, nalLengthSize)
}

// OpenSession starts a decode session. Only NV12 output is supported.
func (s *Service) OpenSession(desc *ports.FormatDescription, format ports.PixelFormat, handler ports.CompletionHandler) (ports.DecodeSession, error) {
	if format != ports.PixelFormatNV12 {
		return nil, fmt.Errorf("%w: pixel format %s", ErrUnsupportedFormat, format)
	}
	if desc == nil || handler == nil {
		return nil, ErrNotInitialized
	}
	return s.open(desc, handler)
}

// Available reports whether backend can be used on this system.
func Available(backend Backend) bool {
	switch backend {
	case BackendVideoToolbox:
		return videoToolboxAvailable()
	case BackendFFmpeg:
		_, err := findFFmpeg("")
		return err == nil
	case BackendAuto, "":
		return Available(BackendVideoToolbox) || Available(BackendFFmpeg)
	default:
		return false
	}
}

var _ ports.DecoderService = (*Service)(nil)
