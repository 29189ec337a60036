// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/framecap"
)

// Target errors.
var (
	// ErrInvalidDimensions is returned for zero-sized targets.
	ErrInvalidDimensions = errors.New("gpu: render target dimensions must be positive")

	// ErrTargetDestroyed is returned when operating on a destroyed target.
	ErrTargetDestroyed = errors.New("gpu: render target has been destroyed")

	// ErrNotReadable is returned by ReadPixels when the texture lacks
	// CopySrc usage.
	ErrNotReadable = errors.New("gpu: render target is not readable (missing CopySrc usage)")

	// ErrNotRenderable is returned by Clear when the texture lacks
	// RenderAttachment usage.
	ErrNotRenderable = errors.New("gpu: render target is not renderable (missing RenderAttachment usage)")

	// ErrSizeMismatch is returned by Upload when the pixel buffer does not
	// match the target size.
	ErrSizeMismatch = errors.New("gpu: pixel data size does not match render target")
)

// copyPitchAlignment is the row alignment WebGPU (and DX12) require for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// defaultWaitTimeout bounds fence waits when the context has no deadline.
const defaultWaitTimeout = 5 * time.Second

// Target is a render target texture on a GPU device.
//
// Target implements framecap.Readback and framecap.Resizer, so it can be
// attached to a framecap.Capturer as the pixel source of a render target
// image. Target is safe for concurrent use.
type Target struct {
	mu sync.Mutex

	dev  *Device
	desc framecap.TextureDescriptor
	tex  hal.Texture
	view hal.TextureView
}

// NewTarget creates the GPU texture described by img.
func NewTarget(dev *Device, img *framecap.Image) (*Target, error) {
	t := &Target{dev: dev, desc: img.Descriptor}
	if err := t.create(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Target) create() error {
	if t.desc.Size.Width == 0 || t.desc.Size.Height == 0 {
		return ErrInvalidDimensions
	}
	label := t.desc.Label
	if label == "" {
		label = "framecap_target"
	}
	halDesc := t.desc.HAL()
	halDesc.Label = label

	tex, err := t.dev.Device.CreateTexture(halDesc)
	if err != nil {
		return fmt.Errorf("create render target texture: %w", err)
	}
	view, err := t.dev.Device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		t.dev.Device.DestroyTexture(tex)
		return fmt.Errorf("create render target view: %w", err)
	}
	t.tex = tex
	t.view = view
	logger().Debug("gpu render target created",
		"label", label, "width", t.desc.Size.Width, "height", t.desc.Size.Height, "format", t.desc.Format)
	return nil
}

func (t *Target) destroyLocked() {
	if t.view != nil {
		t.dev.Device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.dev.Device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// Size returns the target width and height in pixels.
func (t *Target) Size() (uint32, uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.desc.Size.Width, t.desc.Size.Height
}

// Format returns the texture format.
func (t *Target) Format() gputypes.TextureFormat {
	return t.desc.Format
}

// View returns the texture view cameras render into, or nil after Destroy.
func (t *Target) View() hal.TextureView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// Upload writes tightly packed texel rows into the texture.
func (t *Target) Upload(pix []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tex == nil {
		return ErrTargetDestroyed
	}
	w, h := t.desc.Size.Width, t.desc.Size.Height
	bytesPerRow := w * uint32(t.desc.BytesPerPixel()) //nolint:gosec // bytes per pixel is 1 or 4
	if uint64(len(pix)) != uint64(bytesPerRow)*uint64(h) {
		return fmt.Errorf("%w: have %d bytes, want %d", ErrSizeMismatch, len(pix), uint64(bytesPerRow)*uint64(h))
	}
	t.dev.Queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: bytesPerRow, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	return nil
}

// Clear fills the texture with c using a render pass with a clear load op.
func (t *Target) Clear(ctx context.Context, c gputypes.Color) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tex == nil {
		return ErrTargetDestroyed
	}
	if t.desc.Usage&gputypes.TextureUsageRenderAttachment == 0 {
		return ErrNotRenderable
	}

	encoder, err := t.dev.Device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "framecap_clear_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("framecap_clear"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "framecap_clear_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       t.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: c,
		}},
	})
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer t.dev.Device.FreeCommandBuffer(cmdBuf)
	return t.submitAndWait(ctx, cmdBuf)
}

// ReadPixels copies the texture into a staging buffer and returns its
// contents as tightly packed RGBA8 rows. BGRA targets are swizzled.
func (t *Target) ReadPixels(ctx context.Context) (uint32, uint32, []byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tex == nil {
		return 0, 0, nil, ErrTargetDestroyed
	}
	if t.desc.Usage&gputypes.TextureUsageCopySrc == 0 {
		return 0, 0, nil, ErrNotReadable
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, nil, err
	}

	w, h := t.desc.Size.Width, t.desc.Size.Height
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingBufSize := uint64(alignedBytesPerRow) * uint64(h)

	encoder, err := t.dev.Device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "framecap_readback_encoder",
	})
	if err != nil {
		return 0, 0, nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("framecap_readback"); err != nil {
		return 0, 0, nil, fmt.Errorf("begin encoding: %w", err)
	}

	stagingBuf, err := t.dev.Device.CreateBuffer(&hal.BufferDescriptor{
		Label: "framecap_staging",
		Size:  stagingBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return 0, 0, nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer t.dev.Device.DestroyBuffer(stagingBuf)

	// CopyTextureToBuffer requires the texture in copy-source layout.
	// The barrier is a no-op on Metal, GLES, software, and noop backends.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return 0, 0, nil, fmt.Errorf("end encoding: %w", err)
	}
	defer t.dev.Device.FreeCommandBuffer(cmdBuf)

	if err := t.submitAndWait(ctx, cmdBuf); err != nil {
		return 0, 0, nil, err
	}

	readback := make([]byte, stagingBufSize)
	if err := t.dev.Queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return 0, 0, nil, fmt.Errorf("readback: %w", err)
	}

	pix := stripRowPadding(readback, bytesPerRow, alignedBytesPerRow, h)
	if isBGRA(t.desc.Format) {
		swizzleBGRA(pix)
	}
	logger().Debug("gpu render target read back", "width", w, "height", h, "bytes", len(pix))
	return w, h, pix, nil
}

// submitAndWait submits cmdBuf and blocks until the GPU finishes it, the
// context deadline passes, or defaultWaitTimeout elapses.
func (t *Target) submitAndWait(ctx context.Context, cmdBuf hal.CommandBuffer) error {
	fence, err := t.dev.Device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer t.dev.Device.DestroyFence(fence)

	if err := t.dev.Queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	timeout := defaultWaitTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	fenceOK, err := t.dev.Device.Wait(fence, 1, timeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

// Resize recreates the texture at the new size. Contents are discarded.
func (t *Target) Resize(width, height uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if width == t.desc.Size.Width && height == t.desc.Size.Height && t.tex != nil {
		return nil
	}
	t.destroyLocked()
	t.desc.Size = gputypes.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}
	return t.create()
}

// Destroy releases the texture and view. The device is not affected.
func (t *Target) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.destroyLocked()
}

var (
	_ framecap.Readback = (*Target)(nil)
	_ framecap.Resizer  = (*Target)(nil)
)

// stripRowPadding removes per-row alignment padding from readback data.
func stripRowPadding(data []byte, bytesPerRow, alignedBytesPerRow, rows uint32) []byte {
	if alignedBytesPerRow == bytesPerRow {
		return data[:uint64(bytesPerRow)*uint64(rows)]
	}
	tight := make([]byte, uint64(bytesPerRow)*uint64(rows))
	for row := uint32(0); row < rows; row++ {
		srcOff := int(row) * int(alignedBytesPerRow)
		dstOff := int(row) * int(bytesPerRow)
		copy(tight[dstOff:dstOff+int(bytesPerRow)], data[srcOff:srcOff+int(bytesPerRow)])
	}
	return tight
}

func isBGRA(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatBGRA8Unorm || f == gputypes.TextureFormatBGRA8UnormSrgb
}

// swizzleBGRA converts BGRA texels to RGBA in place.
func swizzleBGRA(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
