package mocks

import (
	"image"
	"sync"

	"github.com/user/annexdec/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	PreviewFunc     func(pic *ports.DecodedPicture, width int, label string) (image.Image, error)
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)

	mu     sync.Mutex
	labels []string
}

func (m *Renderer) Preview(pic *ports.DecodedPicture, width int, label string) (image.Image, error) {
	m.mu.Lock()
	m.labels = append(m.labels, label)
	m.mu.Unlock()

	if m.PreviewFunc != nil {
		return m.PreviewFunc(pic, width, label)
	}
	if width == 0 {
		width = pic.Width
	}
	return image.NewRGBA(image.Rect(0, 0, width, width)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

// Labels returns the labels passed to Preview.
func (m *Renderer) Labels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.labels...)
}

var _ ports.Renderer = (*Renderer)(nil)
