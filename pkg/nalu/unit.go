// Package nalu locates, classifies and reframes H.264 NAL units carried in an
// Annex-B byte stream.
package nalu

import "fmt"

// Type is the nal_unit_type field of a NAL unit header (ITU-T H.264 Table 7-1).
type Type uint8

// NAL unit types used by this package.
const (
	TypeUnspecified    Type = 0
	TypeNonIDR         Type = 1
	TypePartitionA     Type = 2
	TypePartitionB     Type = 3
	TypePartitionC     Type = 4
	TypeIDR            Type = 5
	TypeSEI            Type = 6
	TypeSPS            Type = 7
	TypePPS            Type = 8
	TypeAUD            Type = 9
	TypeEndOfSequence  Type = 10
	TypeEndOfStream    Type = 11
	TypeFillerData     Type = 12
	TypeSPSExtension   Type = 13
	TypePrefix         Type = 14
	TypeSubsetSPS      Type = 15
	TypeAuxiliarySlice Type = 19
	TypeSliceExtension Type = 20
)

var typeNames = map[Type]string{
	TypeUnspecified:    "unspecified",
	TypeNonIDR:         "non-idr",
	TypePartitionA:     "partition-a",
	TypePartitionB:     "partition-b",
	TypePartitionC:     "partition-c",
	TypeIDR:            "idr",
	TypeSEI:            "sei",
	TypeSPS:            "sps",
	TypePPS:            "pps",
	TypeAUD:            "aud",
	TypeEndOfSequence:  "end-of-sequence",
	TypeEndOfStream:    "end-of-stream",
	TypeFillerData:     "filler",
	TypeSPSExtension:   "sps-extension",
	TypePrefix:         "prefix",
	TypeSubsetSPS:      "subset-sps",
	TypeAuxiliarySlice: "auxiliary-slice",
	TypeSliceExtension: "slice-extension",
}

// String returns a short lowercase name for the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type-%d", uint8(t))
}

// IsParameterSet reports whether the unit is an SPS or a PPS.
func (t Type) IsParameterSet() bool {
	return t == TypeSPS || t == TypePPS
}

// Unit is one NAL unit borrowed from a scanned buffer.
// Payload aliases the buffer and is only valid while the buffer is.
type Unit struct {
	Offset  int    // Position of the unit's start code in the scanned buffer
	Payload []byte // Bytes after the start code, up to the next start code
}

// Len returns the payload length in bytes.
func (u Unit) Len() int {
	return len(u.Payload)
}

// Type classifies the unit. It fails with ErrEmptyUnit for zero-length units.
func (u Unit) Type() (Type, error) {
	return Classify(u.Payload)
}
