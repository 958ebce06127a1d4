package ports

import (
	"image"
)

// Renderer turns decoded pictures into images for debug previews.
type Renderer interface {
	// Preview converts a picture to an RGBA image scaled to width pixels
	// (aspect ratio kept) with label drawn in the top-left corner.
	// A width of zero keeps the picture size.
	Preview(pic *DecodedPicture, width int, label string) (image.Image, error)

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)
