// Package decode implements the second pass over a stream: it owns the decode
// session and submits length-prefixed access units to it in bitstream order.
package decode

import (
	"errors"
	"fmt"
	"sync"

	"github.com/user/annexdec/pkg/ports"
)

var (
	// ErrSubmission is returned when the session refuses an access unit.
	// The pipeline is closed and no further units are accepted.
	ErrSubmission = errors.New("decode: access unit rejected")

	// ErrSessionState is returned when an operation is not valid in the
	// pipeline's current state.
	ErrSessionState = errors.New("decode: session in wrong state")
)

// State is the lifecycle state of a Pipeline.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateSubmitting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Pipeline owns one decode session.
//
// Uninitialized -> Ready on Open, Ready -> Submitting -> Ready around each
// Submit, and any state -> Closed on Close or on a refused unit. Pipelines are
// not reopened.
type Pipeline struct {
	svc    ports.DecoderService
	logger ports.Logger

	mu        sync.Mutex
	state     State
	session   ports.DecodeSession
	submitted int
}

// NewPipeline creates a pipeline for svc.
func NewPipeline(svc ports.DecoderService, logger ports.Logger) *Pipeline {
	return &Pipeline{
		svc:    svc,
		logger: logger.WithComponent("decoder"),
	}
}

// Open creates the decode session. Pictures are reported to handler.
func (p *Pipeline) Open(desc *ports.FormatDescription, format ports.PixelFormat, handler ports.CompletionHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateUninitialized {
		return fmt.Errorf("%w: open in state %s", ErrSessionState, p.state)
	}

	p.logger.Debug("Opening decode session (%s, length size %d)", format, desc.NALLengthSize)
	session, err := p.svc.OpenSession(desc, format, handler)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	p.session = session
	p.state = StateReady
	return nil
}

// Submit hands one length-prefixed access unit to the session and returns
// once it was accepted. A refusal closes the pipeline.
func (p *Pipeline) Submit(au []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateReady {
		return fmt.Errorf("%w: submit in state %s", ErrSessionState, p.state)
	}

	p.state = StateSubmitting
	if err := p.session.Decode(au); err != nil {
		p.closeLocked()
		return fmt.Errorf("%w: unit %d: %w", ErrSubmission, p.submitted, err)
	}
	p.submitted++
	p.state = StateReady
	return nil
}

// Flush waits until the session has reported every accepted unit.
func (p *Pipeline) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateReady {
		return fmt.Errorf("%w: flush in state %s", ErrSessionState, p.state)
	}
	p.logger.Debug("Flushing decoder")
	return p.session.Flush()
}

// Close releases the session. It is safe to call more than once.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *Pipeline) closeLocked() error {
	if p.state == StateClosed {
		return nil
	}
	p.state = StateClosed
	if p.session == nil {
		return nil
	}
	err := p.session.Close()
	p.session = nil
	p.logger.Debug("Decode session closed")
	return err
}

// State returns the current state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Submitted returns the number of accepted units.
func (p *Pipeline) Submitted() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitted
}
