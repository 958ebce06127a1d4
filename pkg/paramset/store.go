// Package paramset holds the sequence and picture parameter sets that a
// decode session is built from.
package paramset

import (
	"errors"
	"fmt"
	"sync"

	"github.com/user/annexdec/pkg/nalu"
	"github.com/user/annexdec/pkg/ports"
)

var (
	// ErrNotReady is returned when a format description is requested before
	// both an SPS and a PPS were recorded.
	ErrNotReady = errors.New("paramset: SPS and PPS not both recorded")

	// ErrParameterSet is returned when the decoder service rejects the
	// recorded parameter sets.
	ErrParameterSet = errors.New("paramset: parameter sets rejected")
)

// Store keeps owned copies of the most recent SPS and PPS.
//
// Once both are present the store is ready and stays ready: a later SPS or PPS
// replaces the stored copy but never empties it. The buffers are owned by the
// store and outlive any session built from them.
type Store struct {
	mu  sync.RWMutex
	sps []byte
	pps []byte
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Record copies payload into the store if typ is SPS or PPS and reports
// whether it was stored. Other types and empty payloads are ignored.
func (s *Store) Record(typ nalu.Type, payload []byte) bool {
	if len(payload) == 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch typ {
	case nalu.TypeSPS:
		s.sps = append(s.sps[:0:0], payload...)
	case nalu.TypePPS:
		s.pps = append(s.pps[:0:0], payload...)
	default:
		return false
	}
	return true
}

// IsReady reports whether both an SPS and a PPS were recorded.
func (s *Store) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sps) > 0 && len(s.pps) > 0
}

// SPS returns the stored SPS payload, or nil. The slice must not be modified.
func (s *Store) SPS() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sps
}

// PPS returns the stored PPS payload, or nil. The slice must not be modified.
func (s *Store) PPS() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pps
}

// BuildFormatDescription asks svc for a format description of the stored
// parameter sets with 4-byte length prefixes.
func (s *Store) BuildFormatDescription(svc ports.DecoderService) (*ports.FormatDescription, error) {
	s.mu.RLock()
	sps, pps := s.sps, s.pps
	s.mu.RUnlock()

	if len(sps) == 0 || len(pps) == 0 {
		return nil, ErrNotReady
	}

	desc, err := svc.CreateFormatDescription(sps, pps, nalu.LengthSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParameterSet, err)
	}
	return desc, nil
}
