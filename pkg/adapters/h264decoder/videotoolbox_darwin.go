//go:build darwin && cgo

package h264decoder

/*
#cgo LDFLAGS: -framework VideoToolbox -framework CoreMedia -framework CoreFoundation -framework CoreVideo

#include <VideoToolbox/VideoToolbox.h>
#include <CoreMedia/CoreMedia.h>
#include <CoreFoundation/CoreFoundation.h>
#include <CoreVideo/CoreVideo.h>
#include <stdint.h>
#include <stdlib.h>
#include <string.h>

extern void goVTOutput(uintptr_t ref, int32_t status,
                       uint8_t *y, size_t yStride, size_t yRows,
                       uint8_t *uv, size_t uvStride, size_t uvRows,
                       size_t width, size_t height);

typedef struct {
    VTDecompressionSessionRef session;
    CMVideoFormatDescriptionRef format;
} vtContext;

// Called on a VideoToolbox thread. Plane memory is only valid until the
// pixel buffer is unlocked, so the Go side copies before returning.
static void vtOutputCallback(void *refCon,
                             void *sourceFrameRefCon,
                             OSStatus status,
                             VTDecodeInfoFlags infoFlags,
                             CVImageBufferRef imageBuffer,
                             CMTime presentationTimeStamp,
                             CMTime presentationDuration) {
    uintptr_t ref = (uintptr_t)refCon;

    if (status != noErr) {
        goVTOutput(ref, (int32_t)status, NULL, 0, 0, NULL, 0, 0, 0, 0);
        return;
    }
    if (imageBuffer == NULL) {
        goVTOutput(ref, 0, NULL, 0, 0, NULL, 0, 0, 0, 0);
        return;
    }

    CVPixelBufferLockBaseAddress(imageBuffer, kCVPixelBufferLock_ReadOnly);

    goVTOutput(ref, 0,
               (uint8_t *)CVPixelBufferGetBaseAddressOfPlane(imageBuffer, 0),
               CVPixelBufferGetBytesPerRowOfPlane(imageBuffer, 0),
               CVPixelBufferGetHeightOfPlane(imageBuffer, 0),
               (uint8_t *)CVPixelBufferGetBaseAddressOfPlane(imageBuffer, 1),
               CVPixelBufferGetBytesPerRowOfPlane(imageBuffer, 1),
               CVPixelBufferGetHeightOfPlane(imageBuffer, 1),
               CVPixelBufferGetWidth(imageBuffer),
               CVPixelBufferGetHeight(imageBuffer));

    CVPixelBufferUnlockBaseAddress(imageBuffer, kCVPixelBufferLock_ReadOnly);
}

static vtContext *vtOpen(const uint8_t *sps, size_t spsSize,
                         const uint8_t *pps, size_t ppsSize,
                         uintptr_t ref, int32_t *outStatus) {
    vtContext *ctx = (vtContext *)calloc(1, sizeof(vtContext));
    if (ctx == NULL) {
        *outStatus = -1;
        return NULL;
    }

    const uint8_t *parameterSetPointers[2] = { sps, pps };
    const size_t parameterSetSizes[2] = { spsSize, ppsSize };

    OSStatus status = CMVideoFormatDescriptionCreateFromH264ParameterSets(
        kCFAllocatorDefault,
        2,
        parameterSetPointers,
        parameterSetSizes,
        4,  // NAL unit length size
        &ctx->format);
    if (status != noErr) {
        free(ctx);
        *outStatus = (int32_t)status;
        return NULL;
    }

    CFMutableDictionaryRef destinationPixelBufferAttributes = CFDictionaryCreateMutable(
        kCFAllocatorDefault, 0,
        &kCFTypeDictionaryKeyCallBacks,
        &kCFTypeDictionaryValueCallBacks);

    SInt32 pixelFormat = kCVPixelFormatType_420YpCbCr8BiPlanarVideoRange;
    CFNumberRef pixelFormatNumber = CFNumberCreate(kCFAllocatorDefault, kCFNumberSInt32Type, &pixelFormat);
    CFDictionarySetValue(destinationPixelBufferAttributes, kCVPixelBufferPixelFormatTypeKey, pixelFormatNumber);
    CFRelease(pixelFormatNumber);

    VTDecompressionOutputCallbackRecord callbackRecord;
    callbackRecord.decompressionOutputCallback = vtOutputCallback;
    callbackRecord.decompressionOutputRefCon = (void *)ref;

    status = VTDecompressionSessionCreate(
        kCFAllocatorDefault,
        ctx->format,
        NULL,
        destinationPixelBufferAttributes,
        &callbackRecord,
        &ctx->session);
    CFRelease(destinationPixelBufferAttributes);

    if (status != noErr) {
        CFRelease(ctx->format);
        free(ctx);
        *outStatus = (int32_t)status;
        return NULL;
    }

    *outStatus = 0;
    return ctx;
}

// Submits one length-prefixed access unit. The bytes are copied so the
// caller may reuse its buffer.
static int32_t vtDecode(vtContext *ctx, const uint8_t *au, size_t size) {
    uint8_t *data = (uint8_t *)malloc(size);
    if (data == NULL) {
        return -1;
    }
    memcpy(data, au, size);

    CMBlockBufferRef blockBuffer = NULL;
    OSStatus status = CMBlockBufferCreateWithMemoryBlock(
        kCFAllocatorDefault,
        data,
        size,
        kCFAllocatorDefault,
        NULL,
        0,
        size,
        0,
        &blockBuffer);
    if (status != noErr) {
        free(data);
        return (int32_t)status;
    }

    CMSampleBufferRef sampleBuffer = NULL;
    const size_t sampleSizeArray[] = { size };
    status = CMSampleBufferCreate(
        kCFAllocatorDefault,
        blockBuffer,
        true,
        NULL,
        NULL,
        ctx->format,
        1,
        0,
        NULL,
        1,
        sampleSizeArray,
        &sampleBuffer);
    CFRelease(blockBuffer);
    if (status != noErr) {
        return (int32_t)status;
    }

    VTDecodeInfoFlags infoFlags = 0;
    status = VTDecompressionSessionDecodeFrame(
        ctx->session,
        sampleBuffer,
        kVTDecodeFrame_EnableAsynchronousDecompression,
        NULL,
        &infoFlags);
    CFRelease(sampleBuffer);

    return (int32_t)status;
}

static int32_t vtFlush(vtContext *ctx) {
    return (int32_t)VTDecompressionSessionWaitForAsynchronousFrames(ctx->session);
}

static void vtClose(vtContext *ctx) {
    VTDecompressionSessionWaitForAsynchronousFrames(ctx->session);
    VTDecompressionSessionInvalidate(ctx->session);
    CFRelease(ctx->session);
    CFRelease(ctx->format);
    free(ctx);
}
*/
import "C"

import (
	"fmt"
	"runtime/cgo"
	"sync"
	"unsafe"

	"github.com/user/annexdec/pkg/ports"
)

// vtSession is a VideoToolbox decompression session. The output callback
// reaches it through a cgo.Handle stored as the session's refCon.
type vtSession struct {
	handler ports.CompletionHandler
	handle  cgo.Handle

	mu  sync.Mutex
	ctx *C.vtContext
}

func openVideoToolbox(desc *ports.FormatDescription, handler ports.CompletionHandler) (ports.DecodeSession, error) {
	if len(desc.SPS) == 0 || len(desc.PPS) == 0 {
		return nil, fmt.Errorf("%w: empty parameter set", ErrUnsupportedFormat)
	}

	s := &vtSession{handler: handler}
	s.handle = cgo.NewHandle(s)

	var status C.int32_t
	ctx := C.vtOpen(
		(*C.uint8_t)(unsafe.Pointer(&desc.SPS[0])), C.size_t(len(desc.SPS)),
		(*C.uint8_t)(unsafe.Pointer(&desc.PPS[0])), C.size_t(len(desc.PPS)),
		C.uintptr_t(s.handle),
		&status,
	)
	if ctx == nil {
		s.handle.Delete()
		return nil, fmt.Errorf("%w: VideoToolbox status %d", ErrUnsupportedFormat, int32(status))
	}
	s.ctx = ctx
	return s, nil
}

func (s *vtSession) Decode(au []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		return ErrNotInitialized
	}
	if len(au) == 0 {
		return fmt.Errorf("%w: empty access unit", ErrUnsupportedFormat)
	}

	status := C.vtDecode(s.ctx, (*C.uint8_t)(unsafe.Pointer(&au[0])), C.size_t(len(au)))
	if status != 0 {
		return fmt.Errorf("VTDecompressionSessionDecodeFrame: status %d", int32(status))
	}
	return nil
}

func (s *vtSession) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		return ErrNotInitialized
	}
	if status := C.vtFlush(s.ctx); status != 0 {
		return fmt.Errorf("VTDecompressionSessionWaitForAsynchronousFrames: status %d", int32(status))
	}
	return nil
}

func (s *vtSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		return nil
	}
	C.vtClose(s.ctx)
	s.ctx = nil
	s.handle.Delete()
	return nil
}

func (s *vtSession) emit(status int32, pic *ports.DecodedPicture) {
	switch {
	case status != 0:
		s.handler(ports.StatusFailed, nil)
	case pic == nil:
		s.handler(ports.StatusNoPicture, nil)
	default:
		s.handler(ports.StatusOK, pic)
	}
}

// videoToolboxAvailable returns true on macOS as VideoToolbox is always available.
func videoToolboxAvailable() bool {
	return true
}
