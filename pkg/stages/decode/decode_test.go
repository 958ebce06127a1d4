package decode

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/user/annexdec/pkg/mocks"
	"github.com/user/annexdec/pkg/pipeline"
	"github.com/user/annexdec/pkg/ports"
)

func stream(payloads ...[]byte) []byte {
	var buf []byte
	for _, p := range payloads {
		buf = append(buf, 0x00, 0x00, 0x00, 0x01)
		buf = append(buf, p...)
	}
	return buf
}

type recorder struct {
	mu     sync.Mutex
	status []ports.DecodeStatus
	fills  []byte
}

func (r *recorder) handle(status ports.DecodeStatus, pic *ports.DecodedPicture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = append(r.status, status)
	if pic != nil {
		r.fills = append(r.fills, pic.Planes[0].Data[0])
	}
}

func testDescription() *ports.FormatDescription {
	return &ports.FormatDescription{Width: 4, Height: 2, NALLengthSize: 4}
}

func TestPipeline_StateMachine(t *testing.T) {
	svc := mocks.NewDecoderService()
	p := NewPipeline(svc, mocks.NewLogger())

	if p.State() != StateUninitialized {
		t.Fatalf("expected uninitialized, got %s", p.State())
	}
	if err := p.Submit([]byte{0, 0, 0, 1, 0x65}); !errors.Is(err, ErrSessionState) {
		t.Fatalf("submit before open: expected ErrSessionState, got %v", err)
	}

	rec := &recorder{}
	if err := p.Open(testDescription(), ports.PixelFormatNV12, rec.handle); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if p.State() != StateReady {
		t.Fatalf("expected ready, got %s", p.State())
	}
	if err := p.Open(testDescription(), ports.PixelFormatNV12, rec.handle); !errors.Is(err, ErrSessionState) {
		t.Fatalf("second open: expected ErrSessionState, got %v", err)
	}

	if err := p.Submit([]byte{0, 0, 0, 1, 0x65}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if p.State() != StateReady || p.Submitted() != 1 {
		t.Fatalf("expected ready with 1 submitted, got %s with %d", p.State(), p.Submitted())
	}
	if err := p.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if err := p.Submit([]byte{0, 0, 0, 1, 0x41}); !errors.Is(err, ErrSessionState) {
		t.Fatalf("submit after close: expected ErrSessionState, got %v", err)
	}
	if !svc.Sessions()[0].Closed() {
		t.Error("session should be closed")
	}
}

func TestPipeline_SubmissionFailureIsFatal(t *testing.T) {
	refuse := errors.New("bad access unit")
	svc := mocks.NewDecoderService()
	svc.DecodeFunc = func(index int, au []byte) error {
		if index == 1 {
			return refuse
		}
		return nil
	}

	p := NewPipeline(svc, mocks.NewLogger())
	if err := p.Open(testDescription(), ports.PixelFormatNV12, (&recorder{}).handle); err != nil {
		t.Fatal(err)
	}

	if err := p.Submit([]byte{0, 0, 0, 1, 0x65}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	err := p.Submit([]byte{0, 0, 0, 1, 0x41})
	if !errors.Is(err, ErrSubmission) || !errors.Is(err, refuse) {
		t.Fatalf("expected wrapped ErrSubmission, got %v", err)
	}
	if p.State() != StateClosed {
		t.Errorf("expected closed after refusal, got %s", p.State())
	}
	if !svc.Sessions()[0].Closed() {
		t.Error("session should be closed after refusal")
	}
}

func TestStage_Execute(t *testing.T) {
	svc := mocks.NewDecoderService()
	stage := NewStage(svc, mocks.NewLogger())
	rec := &recorder{}

	data := stream(
		[]byte{0x67, 0x42, 0xc0, 0x1e},
		[]byte{0x68, 0xce, 0x3c, 0x80},
		[]byte{0x65, 0x88, 0x84},
		[]byte{0x41, 0x9a},
	)

	result, err := stage.Execute(context.Background(), pipeline.DecodeInput{
		Data:        data,
		Description: testDescription(),
		Handler:     rec.handle,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Submitted != 2 || result.ParameterSets != 2 {
		t.Errorf("unexpected result %+v", result)
	}

	session := svc.Sessions()[0]
	submitted := session.Submitted()
	want := [][]byte{
		{0x00, 0x00, 0x00, 0x03, 0x65, 0x88, 0x84},
		{0x00, 0x00, 0x00, 0x02, 0x41, 0x9a},
	}
	if len(submitted) != len(want) {
		t.Fatalf("expected %d submissions, got %d", len(want), len(submitted))
	}
	for i := range want {
		if !bytes.Equal(submitted[i], want[i]) {
			t.Errorf("submission %d: got %x, want %x", i, submitted[i], want[i])
		}
	}
	if result.SubmitBytes != int64(len(want[0])+len(want[1])) {
		t.Errorf("unexpected byte count %d", result.SubmitBytes)
	}

	if session.Flushes() != 1 || !session.Closed() {
		t.Error("expected the session to be flushed and closed")
	}
	if len(rec.status) != 2 {
		t.Errorf("expected 2 handler calls after flush, got %d", len(rec.status))
	}
}

func TestStage_SkipsEmptyUnits(t *testing.T) {
	svc := mocks.NewDecoderService()
	stage := NewStage(svc, mocks.NewLogger())

	data := []byte{
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x01, 0x65, 0x01,
	}
	result, err := stage.Execute(context.Background(), pipeline.DecodeInput{
		Data:        data,
		Description: testDescription(),
		Handler:     (&recorder{}).handle,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Empty != 1 || result.Submitted != 1 {
		t.Errorf("unexpected result %+v", result)
	}
}

// A stream of parameter sets only opens and closes a session without submitting.
func TestStage_NoSlices(t *testing.T) {
	svc := mocks.NewDecoderService()
	stage := NewStage(svc, mocks.NewLogger())
	rec := &recorder{}

	result, err := stage.Execute(context.Background(), pipeline.DecodeInput{
		Data:        stream([]byte{0x67, 0x42}, []byte{0x68, 0xce}),
		Description: testDescription(),
		Handler:     rec.handle,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Submitted != 0 {
		t.Errorf("expected nothing submitted, got %d", result.Submitted)
	}
	if len(svc.Sessions()) != 1 {
		t.Fatal("expected the session to be opened")
	}
	if len(rec.status) != 0 {
		t.Errorf("expected no pictures, got %d", len(rec.status))
	}
}

func TestStage_OutOfOrderEmission(t *testing.T) {
	svc := mocks.NewDecoderService()
	svc.HoldUntilFlush = true
	svc.EmitOrder = []int{2, 0, 1}
	stage := NewStage(svc, mocks.NewLogger())
	rec := &recorder{}

	_, err := stage.Execute(context.Background(), pipeline.DecodeInput{
		Data:        stream([]byte{0x65, 0x00}, []byte{0x41, 0x01}, []byte{0x41, 0x02}),
		Description: testDescription(),
		Handler:     rec.handle,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(rec.fills, []byte{2, 0, 1}) {
		t.Errorf("expected emission order [2 0 1], got %v", rec.fills)
	}
}

func TestStage_SubmissionFailure(t *testing.T) {
	svc := mocks.NewDecoderService()
	svc.DecodeFunc = func(index int, au []byte) error {
		return errors.New("refused")
	}
	stage := NewStage(svc, mocks.NewLogger())

	result, err := stage.Execute(context.Background(), pipeline.DecodeInput{
		Data:        stream([]byte{0x65, 0x00}, []byte{0x41, 0x01}),
		Description: testDescription(),
		Handler:     (&recorder{}).handle,
	})
	if !errors.Is(err, ErrSubmission) {
		t.Fatalf("expected ErrSubmission, got %v", err)
	}
	if result.Submitted != 0 {
		t.Errorf("expected no accepted units, got %d", result.Submitted)
	}
	session := svc.Sessions()[0]
	if session.Flushes() != 0 || !session.Closed() {
		t.Error("a refused unit must close the session without flushing")
	}
}

func TestStage_OpenFailure(t *testing.T) {
	svc := mocks.NewDecoderService()
	svc.OpenSessionFunc = func(desc *ports.FormatDescription, format ports.PixelFormat) error {
		return errors.New("no hardware decoder")
	}
	stage := NewStage(svc, mocks.NewLogger())

	_, err := stage.Execute(context.Background(), pipeline.DecodeInput{
		Data:        stream([]byte{0x65}),
		Description: testDescription(),
		Handler:     (&recorder{}).handle,
	})
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestStage_MissingDescription(t *testing.T) {
	stage := NewStage(mocks.NewDecoderService(), mocks.NewLogger())
	_, err := stage.Execute(context.Background(), pipeline.DecodeInput{Data: stream([]byte{0x65})})
	if !errors.Is(err, ErrSessionState) {
		t.Errorf("expected ErrSessionState, got %v", err)
	}
}

func TestStage_Cancelled(t *testing.T) {
	svc := mocks.NewDecoderService()
	stage := NewStage(svc, mocks.NewLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := stage.Execute(ctx, pipeline.DecodeInput{
		Data:        stream([]byte{0x65}),
		Description: testDescription(),
		Handler:     (&recorder{}).handle,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !svc.Sessions()[0].Closed() {
		t.Error("cancellation must close the session")
	}
}
