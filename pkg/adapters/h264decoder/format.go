package h264decoder

import (
	"bytes"
	"fmt"

	"github.com/Eyevinn/mp4ff/avc"
	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/annexdec/pkg/ports"
)

// describe parses the SPS for dimensions and builds the avcC record shared by
// every backend. The returned description owns copies of sps and pps.
func describe(sps, pps []byte, nalLengthSize int) (*ports.FormatDescription, error) {
	if nalLengthSize != 4 {
		return nil, fmt.Errorf("%w: NAL length size %d", ErrUnsupportedFormat, nalLengthSize)
	}
	if len(sps) == 0 || len(pps) == 0 {
		return nil, fmt.Errorf("%w: empty parameter set", ErrUnsupportedFormat)
	}

	info, err := avc.ParseSPSNALUnit(sps, false)
	if err != nil {
		return nil, fmt.Errorf("parse SPS: %w", err)
	}
	if info.Width == 0 || info.Height == 0 {
		return nil, fmt.Errorf("%w: SPS gives %dx%d", ErrUnsupportedFormat, info.Width, info.Height)
	}

	sps, pps = bytes.Clone(sps), bytes.Clone(pps)
	avcC, err := mp4.CreateAvcC([][]byte{sps}, [][]byte{pps}, true)
	if err != nil {
		return nil, fmt.Errorf("create avcC: %w", err)
	}

	return &ports.FormatDescription{
		Width:         int(info.Width),
		Height:        int(info.Height),
		Profile:       info.Profile,
		Level:         info.Level,
		NALLengthSize: nalLengthSize,
		SPS:           sps,
		PPS:           pps,
		AvcC:          avcC,
	}, nil
}

// nv12Size returns the byte size of one tightly packed NV12 picture.
func nv12Size(width, height int) int {
	return width*height + chromaWidth(width)*((height+1)/2)
}

// chromaWidth is the byte width of an interleaved CbCr row.
func chromaWidth(width int) int {
	return (width + 1) / 2 * 2
}

// nv12Picture wraps a tightly packed NV12 buffer.
func nv12Picture(buf []byte, width, height int) *ports.DecodedPicture {
	lumaSize := width * height
	return &ports.DecodedPicture{
		Width:  width,
		Height: height,
		Format: ports.PixelFormatNV12,
		Planes: []ports.Plane{
			{Data: buf[:lumaSize], Stride: width, Rows: height, Width: width},
			{Data: buf[lumaSize:], Stride: chromaWidth(width), Rows: (height + 1) / 2, Width: chromaWidth(width)},
		},
	}
}
