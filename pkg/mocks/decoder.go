package mocks

import (
	"bytes"
	"errors"
	"sync"

	"github.com/user/annexdec/pkg/ports"
)

// ErrSessionClosed is returned by a mock session used after Close.
var ErrSessionClosed = errors.New("mocks: session closed")

// DecoderService is an asynchronous fake of ports.DecoderService.
//
// Each session owns a worker goroutine that invokes the completion handler,
// so the handler always runs off the submitting goroutine. By default results
// are emitted in submission order. With HoldUntilFlush they are queued until
// Flush and emitted in EmitOrder.
type DecoderService struct {
	CreateFormatDescriptionFunc func(sps, pps []byte, nalLengthSize int) (*ports.FormatDescription, error)
	OpenSessionFunc             func(desc *ports.FormatDescription, format ports.PixelFormat) error

	// DecodeFunc may refuse the index-th submitted unit.
	DecodeFunc func(index int, au []byte) error

	// ResultFunc produces the result of the index-th accepted unit.
	// Defaults to a StatusOK NV12 picture filled with byte(index).
	ResultFunc func(index int, au []byte) (ports.DecodeStatus, *ports.DecodedPicture)

	// Width and Height of the default format description and pictures.
	Width, Height int

	HoldUntilFlush bool
	// EmitOrder lists accepted unit indices in emission order when
	// HoldUntilFlush is set. Indices not listed are emitted afterwards in order.
	EmitOrder []int

	mu          sync.Mutex
	createCalls []FormatDescriptionCall
	sessions    []*DecodeSession
}

// FormatDescriptionCall records one CreateFormatDescription call.
type FormatDescriptionCall struct {
	SPS           []byte
	PPS           []byte
	NALLengthSize int
}

// NewDecoderService creates a fake producing 4x2 pictures.
func NewDecoderService() *DecoderService {
	return &DecoderService{Width: 4, Height: 2}
}

func (m *DecoderService) CreateFormatDescription(sps, pps []byte, nalLengthSize int) (*ports.FormatDescription, error) {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, FormatDescriptionCall{
		SPS:           bytes.Clone(sps),
		PPS:           bytes.Clone(pps),
		NALLengthSize: nalLengthSize,
	})
	m.mu.Unlock()

	if m.CreateFormatDescriptionFunc != nil {
		return m.CreateFormatDescriptionFunc(sps, pps, nalLengthSize)
	}
	return &ports.FormatDescription{
		Width:         m.Width,
		Height:        m.Height,
		NALLengthSize: nalLengthSize,
		SPS:           sps,
		PPS:           pps,
	}, nil
}

func (m *DecoderService) OpenSession(desc *ports.FormatDescription, format ports.PixelFormat, handler ports.CompletionHandler) (ports.DecodeSession, error) {
	if m.OpenSessionFunc != nil {
		if err := m.OpenSessionFunc(desc, format); err != nil {
			return nil, err
		}
	}

	s := &DecodeSession{
		service: m,
		handler: handler,
		work:    make(chan func()),
		done:    make(chan struct{}),
	}
	go s.loop()

	m.mu.Lock()
	m.sessions = append(m.sessions, s)
	m.mu.Unlock()
	return s, nil
}

// CreateCalls returns the recorded CreateFormatDescription calls.
func (m *DecoderService) CreateCalls() []FormatDescriptionCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FormatDescriptionCall(nil), m.createCalls...)
}

// Sessions returns the sessions opened so far.
func (m *DecoderService) Sessions() []*DecodeSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*DecodeSession(nil), m.sessions...)
}

func (m *DecoderService) result(index int, au []byte) (ports.DecodeStatus, *ports.DecodedPicture) {
	if m.ResultFunc != nil {
		return m.ResultFunc(index, au)
	}
	return ports.StatusOK, NV12Picture(m.Width, m.Height, m.Width, byte(index))
}

var _ ports.DecoderService = (*DecoderService)(nil)

// DecodeSession is the session returned by DecoderService.
type DecodeSession struct {
	service *DecoderService
	handler ports.CompletionHandler
	work    chan func()
	done    chan struct{}

	mu        sync.Mutex
	submitted [][]byte
	pending   []int
	flushes   int
	closed    bool
}

func (s *DecodeSession) loop() {
	defer close(s.done)
	for fn := range s.work {
		fn()
	}
}

func (s *DecodeSession) Decode(au []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	index := len(s.submitted)
	if s.service.DecodeFunc != nil {
		if err := s.service.DecodeFunc(index, au); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	// the caller may reuse au after Decode returns
	unit := bytes.Clone(au)
	s.submitted = append(s.submitted, unit)
	hold := s.service.HoldUntilFlush
	if hold {
		s.pending = append(s.pending, index)
	}
	s.mu.Unlock()

	if !hold {
		s.work <- func() { s.emit(index, unit) }
	}
	return nil
}

func (s *DecodeSession) emit(index int, au []byte) {
	status, pic := s.service.result(index, au)
	s.handler(status, pic)
}

func (s *DecodeSession) Flush() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.flushes++
	order := emissionOrder(s.pending, s.service.EmitOrder)
	s.pending = nil
	units := s.submitted
	s.mu.Unlock()

	for _, index := range order {
		index, au := index, units[index]
		s.work <- func() { s.emit(index, au) }
	}

	barrier := make(chan struct{})
	s.work <- func() { close(barrier) }
	<-barrier
	return nil
}

func emissionOrder(pending, preferred []int) []int {
	isPending := make(map[int]bool, len(pending))
	for _, i := range pending {
		isPending[i] = true
	}

	order := make([]int, 0, len(pending))
	for _, i := range preferred {
		if isPending[i] {
			order = append(order, i)
			delete(isPending, i)
		}
	}
	for _, i := range pending {
		if isPending[i] {
			order = append(order, i)
		}
	}
	return order
}

func (s *DecodeSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.work)
	<-s.done
	return nil
}

// Submitted returns copies of the accepted access units in submission order.
func (s *DecodeSession) Submitted() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.submitted...)
}

// Flushes returns the number of Flush calls.
func (s *DecodeSession) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

// Closed reports whether Close was called.
func (s *DecodeSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var _ ports.DecodeSession = (*DecodeSession)(nil)

// NV12Picture builds an NV12 picture whose rows are stride bytes long.
// Visible bytes hold fill, padding bytes hold 0xEE.
func NV12Picture(width, height, stride int, fill byte) *ports.DecodedPicture {
	plane := func(rows int) ports.Plane {
		data := make([]byte, stride*rows)
		for r := 0; r < rows; r++ {
			row := data[r*stride : (r+1)*stride]
			for x := range row {
				if x < width {
					row[x] = fill
				} else {
					row[x] = 0xEE
				}
			}
		}
		return ports.Plane{Data: data, Stride: stride, Rows: rows, Width: width}
	}

	return &ports.DecodedPicture{
		Width:  width,
		Height: height,
		Format: ports.PixelFormatNV12,
		Planes: []ports.Plane{plane(height), plane((height + 1) / 2)},
	}
}
