//go:build darwin && cgo

package h264decoder

/*
#include <stddef.h>
#include <stdint.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/user/annexdec/pkg/ports"
)

//export goVTOutput
func goVTOutput(ref C.uintptr_t, status C.int32_t,
	y *C.uint8_t, yStride, yRows C.size_t,
	uv *C.uint8_t, uvStride, uvRows C.size_t,
	width, height C.size_t) {
	s, ok := cgo.Handle(ref).Value().(*vtSession)
	if !ok {
		return
	}
	if status != 0 || y == nil || uv == nil {
		s.emit(int32(status), nil)
		return
	}

	w := int(width)
	pic := &ports.DecodedPicture{
		Width:  w,
		Height: int(height),
		Format: ports.PixelFormatNV12,
		Planes: []ports.Plane{
			{
				Data:   unsafe.Slice((*byte)(unsafe.Pointer(y)), int(yStride*yRows)),
				Stride: int(yStride),
				Rows:   int(yRows),
				Width:  w,
			},
			{
				Data:   unsafe.Slice((*byte)(unsafe.Pointer(uv)), int(uvStride*uvRows)),
				Stride: int(uvStride),
				Rows:   int(uvRows),
				Width:  chromaWidth(w),
			},
		},
	}
	s.emit(0, pic)
}
