package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results of a decode run.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveFormatDescription saves the SPS and PPS payloads used to open the
	// session and, when present, the encoded avcC record.
	SaveFormatDescription(desc *FormatDescription) error

	// SaveUnitsJSON saves the unit inventory as JSON.
	SaveUnitsJSON(data []byte) error

	// SavePreview saves a downscaled preview of a decoded picture.
	SavePreview(index int, img image.Image) error
}
