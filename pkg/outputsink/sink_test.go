package outputsink

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/user/annexdec/pkg/mocks"
	"github.com/user/annexdec/pkg/ports"
)

func runSink(t *testing.T, s *Sink) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("sink did not finish")
		return nil
	}
}

func TestSink_WritesFullStride(t *testing.T) {
	var out bytes.Buffer
	s := New(&out, mocks.NewLogger(), Options{})
	done := runSink(t, s)

	// 4x2 picture with stride 6: luma 2 rows, chroma 1 row
	s.Deliver(ports.StatusOK, mocks.NV12Picture(4, 2, 6, 0x10))
	s.Close()

	if err := wait(t, done); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []byte{
		0x10, 0x10, 0x10, 0x10, 0xEE, 0xEE,
		0x10, 0x10, 0x10, 0x10, 0xEE, 0xEE,
		0x10, 0x10, 0x10, 0x10, 0xEE, 0xEE,
	}
	if !bytes.Equal(out.Bytes(), want) {
		t.Errorf("unexpected output\n got %x\nwant %x", out.Bytes(), want)
	}

	stats := s.Stats()
	if stats.FramesWritten != 1 || stats.BytesWritten != int64(len(want)) {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.Width != 4 || stats.Height != 2 {
		t.Errorf("expected 4x2, got %dx%d", stats.Width, stats.Height)
	}
}

func TestSink_TrimPadding(t *testing.T) {
	var out bytes.Buffer
	s := New(&out, mocks.NewLogger(), Options{TrimPadding: true})
	done := runSink(t, s)

	s.Deliver(ports.StatusOK, mocks.NV12Picture(4, 2, 6, 0x20))
	s.Close()

	if err := wait(t, done); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := out.Len(); got != 12 {
		t.Fatalf("expected 12 visible bytes, got %d", got)
	}
	if bytes.IndexByte(out.Bytes(), 0xEE) >= 0 {
		t.Error("padding bytes were written")
	}
}

func TestSink_NoPictureIsNoop(t *testing.T) {
	var out bytes.Buffer
	s := New(&out, mocks.NewLogger(), Options{})
	done := runSink(t, s)

	s.Deliver(ports.StatusNoPicture, nil)
	s.Deliver(ports.StatusOK, nil)
	s.Close()

	if err := wait(t, done); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %d bytes", out.Len())
	}
	stats := s.Stats()
	if stats.NoPicture != 2 || stats.FramesReceived != 0 || stats.DecodeFailures != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestSink_DecodeFailureDropped(t *testing.T) {
	var out bytes.Buffer
	logger := mocks.NewLogger()
	s := New(&out, logger, Options{})
	done := runSink(t, s)

	s.Deliver(ports.StatusFailed, nil)
	s.Deliver(ports.StatusOK, mocks.NV12Picture(2, 2, 2, 0x01))
	s.Close()

	if err := wait(t, done); err != nil {
		t.Fatalf("decode failures must not fail the run: %v", err)
	}
	stats := s.Stats()
	if stats.DecodeFailures != 1 || stats.FramesWritten != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if logger.Count(ports.LevelWarn, "Dropping picture") != 1 {
		t.Error("expected a warning for the dropped picture")
	}
}

// Pictures emitted out of submission order are written in callback order.
func TestSink_ArrivalOrder(t *testing.T) {
	var out bytes.Buffer
	s := New(&out, mocks.NewLogger(), Options{})
	done := runSink(t, s)

	// submitted as 0,1,2, emitted as 2,0,1
	for _, fill := range []byte{2, 0, 1} {
		s.Deliver(ports.StatusOK, mocks.NV12Picture(2, 2, 2, fill))
	}
	s.Close()

	if err := wait(t, done); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	frameSize := 2*2 + 2*1
	got := out.Bytes()
	if len(got) != 3*frameSize {
		t.Fatalf("expected %d bytes, got %d", 3*frameSize, len(got))
	}
	for i, fill := range []byte{2, 0, 1} {
		if got[i*frameSize] != fill {
			t.Errorf("frame %d: expected fill %d, got %d", i, fill, got[i*frameSize])
		}
	}
}

func TestSink_CopiesPlanesInsideHandler(t *testing.T) {
	var out bytes.Buffer
	s := New(&out, mocks.NewLogger(), Options{})

	pic := mocks.NV12Picture(2, 2, 2, 0x33)
	s.Deliver(ports.StatusOK, pic)
	// the service reuses its buffer once the handler returns
	for i := range pic.Planes[0].Data {
		pic.Planes[0].Data[i] = 0x00
	}

	s.Close()
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.Bytes()[0] != 0x33 {
		t.Error("sink wrote the caller's buffer instead of its own copy")
	}
}

func TestSink_ConcurrentDeliver(t *testing.T) {
	var out bytes.Buffer
	s := New(&out, mocks.NewLogger(), Options{})
	done := runSink(t, s)

	const goroutines, perGoroutine = 8, 50
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				s.Deliver(ports.StatusOK, mocks.NV12Picture(2, 2, 2, byte(i)))
			}
		}()
	}
	wg.Wait()
	s.Close()

	if err := wait(t, done); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	stats := s.Stats()
	if stats.FramesWritten != goroutines*perGoroutine {
		t.Errorf("expected %d frames, got %d", goroutines*perGoroutine, stats.FramesWritten)
	}
	if out.Len() != goroutines*perGoroutine*6 {
		t.Errorf("unexpected output size %d", out.Len())
	}
}

type failingWriter struct {
	failOn int
	calls  int
	buf    bytes.Buffer
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	if w.calls == w.failOn {
		return 0, errors.New("disk full")
	}
	return w.buf.Write(p)
}

func TestSink_WriteErrorContinues(t *testing.T) {
	// each frame is two writes; fail the first plane of the second frame
	w := &failingWriter{failOn: 3}
	logger := mocks.NewLogger()
	s := New(w, logger, Options{})
	done := runSink(t, s)

	for i := 0; i < 3; i++ {
		s.Deliver(ports.StatusOK, mocks.NV12Picture(2, 2, 2, byte(i)))
	}
	s.Close()

	err := wait(t, done)
	if !errors.Is(err, ErrOutputWrite) {
		t.Fatalf("expected ErrOutputWrite, got %v", err)
	}

	stats := s.Stats()
	if stats.FramesWritten != 2 || stats.WriteErrors != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if logger.Count(ports.LevelWarn, "Failed to write frame 1") != 1 {
		t.Error("expected a warning for frame 1")
	}
}

func TestSink_LateFramesDropped(t *testing.T) {
	var out bytes.Buffer
	s := New(&out, mocks.NewLogger(), Options{})
	s.Close()
	s.Deliver(ports.StatusOK, mocks.NV12Picture(2, 2, 2, 0x01))

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.Len() != 0 || s.Stats().LateFrames != 1 {
		t.Errorf("late frame should be dropped, stats %+v", s.Stats())
	}
}

func TestSink_RunCancelled(t *testing.T) {
	s := New(&bytes.Buffer{}, mocks.NewLogger(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	if err := wait(t, done); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSink_Previews(t *testing.T) {
	var out bytes.Buffer
	debug := mocks.NewDebugSink(true)
	renderer := &mocks.Renderer{}
	s := New(&out, mocks.NewLogger(), Options{PreviewEvery: 2, PreviewWidth: 8}).
		WithPreview(debug, renderer)
	done := runSink(t, s)

	for i := 0; i < 5; i++ {
		s.Deliver(ports.StatusOK, mocks.NV12Picture(2, 2, 2, byte(i)))
	}
	s.Close()

	if err := wait(t, done); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if debug.PreviewCount() != 3 {
		t.Errorf("expected previews of frames 0, 2 and 4, got %d", debug.PreviewCount())
	}
	labels := renderer.Labels()
	if len(labels) != 3 || labels[0] != "#0" || labels[2] != "#4" {
		t.Errorf("unexpected labels %v", labels)
	}
}

func TestSink_PreviewsDisabledSink(t *testing.T) {
	debug := mocks.NewDebugSink(false)
	s := New(&bytes.Buffer{}, mocks.NewLogger(), Options{PreviewEvery: 1}).
		WithPreview(debug, &mocks.Renderer{})

	s.Deliver(ports.StatusOK, mocks.NV12Picture(2, 2, 2, 0))
	s.Close()
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if debug.PreviewCount() != 0 {
		t.Error("disabled debug sink should not receive previews")
	}
}
