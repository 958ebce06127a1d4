package nalu

import "errors"

// typeMask selects nal_unit_type from the first header byte.
const typeMask = 0x1F

// ErrEmptyUnit is returned when a zero-length unit is classified.
var ErrEmptyUnit = errors.New("nalu: empty unit")

// Classify returns the type of a NAL unit payload.
// Forbidden and nal_ref_idc bits are ignored.
func Classify(payload []byte) (Type, error) {
	if len(payload) == 0 {
		return TypeUnspecified, ErrEmptyUnit
	}
	return Type(payload[0] & typeMask), nil
}
