package nalu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// LengthSize is the size of the big-endian length field written by Reformat.
const LengthSize = 4

// ErrReformat is returned when a unit does not fit in a 32-bit length field.
var ErrReformat = errors.New("nalu: unit too large for length prefix")

// checkLength validates a payload length against the 32-bit length field.
func checkLength(n int) error {
	if uint64(n) > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes", ErrReformat, n)
	}
	return nil
}

// Reformat converts a unit payload to length-prefixed form: a 4-byte big-endian
// byte count followed by the payload bytes, unchanged.
func Reformat(payload []byte) ([]byte, error) {
	return AppendReformat(make([]byte, 0, LengthSize+len(payload)), payload)
}

// AppendReformat appends the length-prefixed form of payload to dst.
// On error dst is returned unchanged.
func AppendReformat(dst, payload []byte) ([]byte, error) {
	if err := checkLength(len(payload)); err != nil {
		return dst, err
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload))) //nolint:gosec // checked above
	return append(dst, payload...), nil
}
