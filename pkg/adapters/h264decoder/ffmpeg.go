package h264decoder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"

	"github.com/user/annexdec/pkg/ports"
)

// findFFmpeg searches for ffmpeg. An explicit path wins, then the path set
// via SetFFmpegPath, then PATH and common install locations.
func findFFmpeg(explicit string) (string, error) {
	for _, p := range []string{explicit, customFFmpegPath} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, p)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}

	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files (x86)\ffmpeg\bin\ffmpeg.exe`,
		}
	} else {
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}

	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}

// ffmpegSession decodes through an ffmpeg child process. Access units are
// written to its stdin as Annex-B; a reader goroutine cuts its stdout into
// NV12 pictures and reports them to the handler.
//
// ffmpeg only drains its decoder at end of input, so Flush closes stdin and
// the session accepts no further units afterwards.
type ffmpegSession struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stderr  bytes.Buffer
	handler ports.CompletionHandler
	width   int
	height  int

	readerDone chan struct{}
	killed     atomic.Bool

	mu          sync.Mutex
	stdinClosed bool
	closed      bool
	waitErr     error
}

func openFFmpeg(path string, desc *ports.FormatDescription, handler ports.CompletionHandler) (ports.DecodeSession, error) {
	s := &ffmpegSession{
		handler:    handler,
		width:      desc.Width,
		height:     desc.Height,
		readerDone: make(chan struct{}),
	}

	s.cmd = exec.Command(path,
		"-hide_banner",
		"-loglevel", "error",
		"-f", "h264",
		"-i", "pipe:0",
		"-f", "rawvideo",
		"-pix_fmt", "nv12",
		"pipe:1",
	)
	s.cmd.Stderr = &s.stderr

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	go s.read(stdout)

	// ffmpeg needs the parameter sets in-band
	if err := s.writeUnits(h264.AnnexB{desc.SPS, desc.PPS}); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *ffmpegSession) read(stdout io.Reader) {
	defer close(s.readerDone)

	buf := make([]byte, nv12Size(s.width, s.height))
	for {
		_, err := io.ReadFull(stdout, buf)
		switch {
		case err == nil:
			s.handler(ports.StatusOK, nv12Picture(buf, s.width, s.height))
		case errors.Is(err, io.ErrUnexpectedEOF):
			if !s.killed.Load() {
				s.handler(ports.StatusFailed, nil)
			}
			return
		default:
			return
		}
	}
}

func (s *ffmpegSession) writeUnits(units h264.AnnexB) error {
	buf, err := units.Marshal()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedAccessUnit, err)
	}
	if _, err := s.stdin.Write(buf); err != nil {
		return fmt.Errorf("write to ffmpeg: %w", err)
	}
	return nil
}

func (s *ffmpegSession) Decode(au []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdinClosed {
		return ErrNotInitialized
	}

	var units h264.AVCC
	if err := units.Unmarshal(au); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedAccessUnit, err)
	}
	return s.writeUnits(h264.AnnexB(units))
}

func (s *ffmpegSession) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrNotInitialized
	}
	return s.finishLocked()
}

// finishLocked closes stdin and waits for ffmpeg to emit everything and exit.
func (s *ffmpegSession) finishLocked() error {
	if s.stdinClosed {
		return s.waitErr
	}
	s.stdinClosed = true
	s.stdin.Close()
	<-s.readerDone

	if err := s.cmd.Wait(); err != nil {
		s.waitErr = fmt.Errorf("ffmpeg decode failed: %w\nstderr: %s", err, s.stderr.String())
	}
	return s.waitErr
}

func (s *ffmpegSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if !s.stdinClosed && s.cmd.Process != nil {
		// pending pictures are discarded on an unflushed close
		s.killed.Store(true)
		s.cmd.Process.Kill()
	}
	s.finishLocked()
	return nil
}

var _ ports.DecodeSession = (*ffmpegSession)(nil)
