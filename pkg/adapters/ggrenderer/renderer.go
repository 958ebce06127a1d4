// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/annexdec/pkg/ports"
)

// ErrInvalidPicture is returned when a picture's planes do not match its
// declared size.
var ErrInvalidPicture = errors.New("ggrenderer: invalid picture")

const labelPadding = 4

// Renderer implements ports.Renderer using the gg library.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Preview converts an NV12 picture to RGBA, scales it and stamps the label.
func (r *Renderer) Preview(pic *ports.DecodedPicture, width int, label string) (image.Image, error) {
	src, err := toYCbCr(pic)
	if err != nil {
		return nil, err
	}

	dstW, dstH := pic.Width, pic.Height
	if width > 0 && width != pic.Width {
		dstW = width
		dstH = max(1, pic.Height*width/pic.Width)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	if label != "" {
		dc := gg.NewContextForRGBA(dst)
		tw, th := dc.MeasureString(label)
		dc.SetColor(color.RGBA{0, 0, 0, 160})
		dc.DrawRectangle(0, 0, tw+2*labelPadding, th+2*labelPadding)
		dc.Fill()
		dc.SetColor(color.White)
		dc.DrawStringAnchored(label, labelPadding, labelPadding+th/2, 0, 0.5)
	}

	return dst, nil
}

// toYCbCr wraps the luma plane in place and de-interleaves the chroma plane.
func toYCbCr(pic *ports.DecodedPicture) (*image.YCbCr, error) {
	if pic == nil || pic.Format != ports.PixelFormatNV12 {
		return nil, fmt.Errorf("%w: NV12 expected", ErrInvalidPicture)
	}
	if pic.Width <= 0 || pic.Height <= 0 || len(pic.Planes) != 2 {
		return nil, fmt.Errorf("%w: %dx%d with %d planes", ErrInvalidPicture, pic.Width, pic.Height, len(pic.Planes))
	}

	luma, chroma := pic.Planes[0], pic.Planes[1]
	cw, ch := (pic.Width+1)/2, (pic.Height+1)/2
	if luma.Stride < pic.Width || len(luma.Data) < (pic.Height-1)*luma.Stride+pic.Width {
		return nil, fmt.Errorf("%w: short luma plane", ErrInvalidPicture)
	}
	if chroma.Stride < 2*cw || len(chroma.Data) < (ch-1)*chroma.Stride+2*cw {
		return nil, fmt.Errorf("%w: short chroma plane", ErrInvalidPicture)
	}

	img := &image.YCbCr{
		Y:              luma.Data,
		YStride:        luma.Stride,
		Cb:             make([]byte, cw*ch),
		Cr:             make([]byte, cw*ch),
		CStride:        cw,
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, pic.Width, pic.Height),
	}
	for y := range ch {
		row := chroma.Data[y*chroma.Stride:]
		for x := range cw {
			img.Cb[y*cw+x] = row[2*x]
			img.Cr[y*cw+x] = row[2*x+1]
		}
	}
	return img, nil
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		opts := &jpeg.Options{Quality: quality}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)
