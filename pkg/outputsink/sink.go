// Package outputsink receives decoded pictures from a decode session and
// appends their planes to an output stream.
//
// Deliver is the session's completion handler. It never performs I/O: it copies
// the planes and queues them. A single consumer started with Run writes the
// queued frames in arrival order.
package outputsink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/user/annexdec/pkg/ports"
)

// ErrOutputWrite is returned by Run when at least one frame could not be written.
var ErrOutputWrite = errors.New("outputsink: write failed")

// Options configures how frames are written.
type Options struct {
	// TrimPadding writes only the visible bytes of each row instead of the
	// full stride.
	TrimPadding bool

	// PreviewEvery saves a preview of every Nth frame to the debug sink.
	// Zero disables previews.
	PreviewEvery int

	// PreviewWidth is the preview width in pixels. Zero keeps the picture size.
	PreviewWidth int
}

// Stats counts what the sink received and wrote.
type Stats struct {
	FramesReceived int
	FramesWritten  int
	BytesWritten   int64
	NoPicture      int
	DecodeFailures int
	WriteErrors    int
	LateFrames     int
	Width          int
	Height         int
}

type frame struct {
	index int
	pic   ports.DecodedPicture
}

// Sink is the output side of a decode run.
type Sink struct {
	w        io.Writer
	logger   ports.Logger
	opts     Options
	debug    ports.DebugSink
	renderer ports.Renderer

	notify chan struct{}

	mu       sync.Mutex
	queue    []*frame
	closed   bool
	stats    Stats
	firstErr error
}

// New creates a sink writing raw planes to w.
func New(w io.Writer, logger ports.Logger, opts Options) *Sink {
	return &Sink{
		w:      w,
		logger: logger.WithComponent("sink"),
		opts:   opts,
		notify: make(chan struct{}, 1),
	}
}

// WithPreview enables debug previews rendered by renderer.
func (s *Sink) WithPreview(debug ports.DebugSink, renderer ports.Renderer) *Sink {
	s.debug = debug
	s.renderer = renderer
	return s
}

// Deliver handles one decode result. It is safe to call from any goroutine
// and only holds the lock long enough to append to the queue.
func (s *Sink) Deliver(status ports.DecodeStatus, pic *ports.DecodedPicture) {
	switch {
	case status == ports.StatusNoPicture || (status == ports.StatusOK && pic == nil):
		s.mu.Lock()
		s.stats.NoPicture++
		s.mu.Unlock()
		return
	case status != ports.StatusOK:
		s.mu.Lock()
		s.stats.DecodeFailures++
		s.mu.Unlock()
		s.logger.Warn("Dropping picture: %s", fmt.Errorf("%w (status %s)", ports.ErrDecodeFailed, status))
		return
	}

	f := &frame{pic: copyPicture(pic)}

	s.mu.Lock()
	if s.closed {
		s.stats.LateFrames++
		s.mu.Unlock()
		s.logger.Warn("Decoder emitted a picture after close")
		return
	}
	f.index = s.stats.FramesReceived
	s.stats.FramesReceived++
	s.queue = append(s.queue, f)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func copyPicture(pic *ports.DecodedPicture) ports.DecodedPicture {
	out := *pic
	out.Planes = make([]ports.Plane, len(pic.Planes))
	for i, p := range pic.Planes {
		p.Data = bytes.Clone(p.Data)
		out.Planes[i] = p
	}
	return out
}

// Close stops accepting pictures. Run returns once the queue is drained.
func (s *Sink) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Run writes queued frames until Close was called and the queue is empty,
// or ctx is cancelled. Write failures do not stop the loop; they are
// reported as ErrOutputWrite once the queue is drained.
func (s *Sink) Run(ctx context.Context) error {
	for {
		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		closed := s.closed
		s.mu.Unlock()

		for _, f := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.write(f)
			s.preview(f)
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return s.result()
		}

		select {
		case <-s.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Sink) write(f *frame) {
	var written int64
	var err error
	for _, p := range f.pic.Planes {
		var n int
		n, err = s.w.Write(s.planeBytes(p))
		written += int64(n)
		if err != nil {
			break
		}
	}

	s.mu.Lock()
	s.stats.BytesWritten += written
	if err != nil {
		s.stats.WriteErrors++
		if s.firstErr == nil {
			s.firstErr = err
		}
	} else {
		s.stats.FramesWritten++
		s.stats.Width, s.stats.Height = f.pic.Width, f.pic.Height
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("Failed to write frame %d: %s", f.index, err)
		return
	}
	s.logger.Debug("Frame %d: %d bytes in %d planes", f.index, written, len(f.pic.Planes))
}

// planeBytes returns the bytes of p to write, full stride or trimmed to the
// visible width.
func (s *Sink) planeBytes(p ports.Plane) []byte {
	if !s.opts.TrimPadding || p.Width <= 0 || p.Width >= p.Stride {
		return p.Data
	}

	out := make([]byte, 0, p.Width*p.Rows)
	for r := 0; r < p.Rows; r++ {
		start := r * p.Stride
		if start >= len(p.Data) {
			break
		}
		end := min(start+p.Width, len(p.Data))
		out = append(out, p.Data[start:end]...)
	}
	return out
}

func (s *Sink) preview(f *frame) {
	if s.debug == nil || s.renderer == nil || !s.debug.Enabled() || s.opts.PreviewEvery <= 0 {
		return
	}
	if f.index%s.opts.PreviewEvery != 0 {
		return
	}

	img, err := s.renderer.Preview(&f.pic, s.opts.PreviewWidth, fmt.Sprintf("#%d", f.index))
	if err == nil {
		err = s.debug.SavePreview(f.index, img)
	}
	if err != nil {
		s.logger.Warn("Failed to save debug output: %s", err)
	}
}

func (s *Sink) result() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats.WriteErrors == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d frames: %w",
		ErrOutputWrite, s.stats.WriteErrors, s.stats.FramesReceived, s.firstErr)
}

// Stats returns a snapshot of the counters.
func (s *Sink) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

var _ ports.CompletionHandler = (*Sink)(nil).Deliver
