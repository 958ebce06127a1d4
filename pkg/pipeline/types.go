package pipeline

import (
	"github.com/user/annexdec/pkg/ports"
)

// =============================================================================
// Scan Stage Types
// =============================================================================

// ScanInput is the Annex-B stream to inventory.
type ScanInput struct {
	Data []byte
}

// UnitInfo describes one NAL unit found by the scan stage.
type UnitInfo struct {
	Index  int    `json:"index"`
	Offset int    `json:"offset"`
	Size   int    `json:"size"`
	Type   string `json:"type"`
	TypeID int    `json:"type_id"`
}

// ScanResult is the inventory of a stream.
type ScanResult struct {
	Units []UnitInfo `json:"units"`

	// Counts maps type names to the number of units of that type.
	Counts map[string]int `json:"counts"`

	// Empty is the number of zero-length units that were skipped.
	Empty int `json:"empty"`

	// Ready reports whether both an SPS and a PPS were found.
	Ready bool `json:"ready"`
}

// =============================================================================
// Decode Stage Types
// =============================================================================

// DecodeInput is the stream to submit and the format description of the
// session to submit it to.
type DecodeInput struct {
	Data        []byte
	Description *ports.FormatDescription
	PixelFormat ports.PixelFormat
	Handler     ports.CompletionHandler
}

// DecodeResult counts what the decode stage submitted.
type DecodeResult struct {
	Submitted     int   // Access units accepted by the session
	SubmitBytes   int64 // Length-prefixed bytes accepted
	ParameterSets int   // SPS/PPS units not submitted
	Empty         int   // Zero-length units skipped
}
