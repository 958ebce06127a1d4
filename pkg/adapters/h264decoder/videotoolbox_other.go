//go:build !darwin || !cgo

package h264decoder

import (
	"fmt"

	"github.com/user/annexdec/pkg/ports"
)

func openVideoToolbox(desc *ports.FormatDescription, handler ports.CompletionHandler) (ports.DecodeSession, error) {
	return nil, fmt.Errorf("%w: %s", ErrPlatformNotSupported, BackendVideoToolbox)
}

// videoToolboxAvailable returns false where VideoToolbox does not exist.
func videoToolboxAvailable() bool {
	return false
}
