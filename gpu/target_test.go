// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framecap"
)

// openNoopDevice opens a noop device for testing and closes it on cleanup.
func openNoopDevice(t *testing.T) *Device {
	t.Helper()
	dev, err := OpenDevice(BackendNoop)
	if err != nil {
		t.Fatalf("OpenDevice(noop) failed: %v", err)
	}
	t.Cleanup(dev.Close)
	return dev
}

func renderTargetImage(w, h uint32) *framecap.Image {
	return framecap.NewImage(framecap.RenderTargetDescriptor(gputypes.Extent3D{
		Width: w, Height: h, DepthOrArrayLayers: 1,
	}))
}

func TestNewTarget(t *testing.T) {
	dev := openNoopDevice(t)

	tests := []struct {
		name   string
		width  uint32
		height uint32
	}{
		{"small", 16, 16},
		{"aligned", 64, 32},
		{"unaligned", 100, 75},
		{"hd", 1280, 720},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := NewTarget(dev, renderTargetImage(tt.width, tt.height))
			if err != nil {
				t.Fatalf("NewTarget failed: %v", err)
			}
			defer target.Destroy()

			w, h := target.Size()
			if w != tt.width || h != tt.height {
				t.Errorf("Size() = (%d, %d), want (%d, %d)", w, h, tt.width, tt.height)
			}
			if target.View() == nil {
				t.Error("expected non-nil view")
			}
			if target.Format() != gputypes.TextureFormatRGBA8UnormSrgb {
				t.Errorf("Format() = %v, want RGBA8UnormSrgb", target.Format())
			}
		})
	}
}

func TestNewTargetZeroSize(t *testing.T) {
	dev := openNoopDevice(t)
	_, err := NewTarget(dev, renderTargetImage(0, 10))
	if !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("NewTarget(0x10) error = %v, want ErrInvalidDimensions", err)
	}
}

func TestTargetReadPixels(t *testing.T) {
	dev := openNoopDevice(t)

	for _, size := range [][2]uint32{{64, 64}, {100, 50}} {
		target, err := NewTarget(dev, renderTargetImage(size[0], size[1]))
		if err != nil {
			t.Fatalf("NewTarget failed: %v", err)
		}

		w, h, pix, err := target.ReadPixels(context.Background())
		if err != nil {
			t.Fatalf("ReadPixels(%dx%d) failed: %v", size[0], size[1], err)
		}
		if w != size[0] || h != size[1] {
			t.Errorf("ReadPixels size = (%d, %d), want %v", w, h, size)
		}
		if len(pix) != int(size[0]*size[1]*4) {
			t.Errorf("len(pix) = %d, want %d", len(pix), size[0]*size[1]*4)
		}
		target.Destroy()
	}
}

func TestTargetReadPixelsNotReadable(t *testing.T) {
	dev := openNoopDevice(t)
	img := renderTargetImage(8, 8)
	img.Descriptor.Usage = gputypes.TextureUsageRenderAttachment

	target, err := NewTarget(dev, img)
	if err != nil {
		t.Fatalf("NewTarget failed: %v", err)
	}
	defer target.Destroy()

	if _, _, _, err := target.ReadPixels(context.Background()); !errors.Is(err, ErrNotReadable) {
		t.Errorf("ReadPixels error = %v, want ErrNotReadable", err)
	}
}

func TestTargetReadPixelsCanceled(t *testing.T) {
	dev := openNoopDevice(t)
	target, err := NewTarget(dev, renderTargetImage(8, 8))
	if err != nil {
		t.Fatalf("NewTarget failed: %v", err)
	}
	defer target.Destroy()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, _, err := target.ReadPixels(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadPixels error = %v, want context.Canceled", err)
	}
}

func TestTargetUpload(t *testing.T) {
	dev := openNoopDevice(t)
	target, err := NewTarget(dev, renderTargetImage(4, 4))
	if err != nil {
		t.Fatalf("NewTarget failed: %v", err)
	}
	defer target.Destroy()

	if err := target.Upload(make([]byte, 4*4*4)); err != nil {
		t.Errorf("Upload failed: %v", err)
	}
	if err := target.Upload(make([]byte, 10)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Upload(short) error = %v, want ErrSizeMismatch", err)
	}
}

func TestTargetClear(t *testing.T) {
	dev := openNoopDevice(t)
	target, err := NewTarget(dev, renderTargetImage(32, 32))
	if err != nil {
		t.Fatalf("NewTarget failed: %v", err)
	}
	defer target.Destroy()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := target.Clear(ctx, gputypes.Color{R: 1, G: 0, B: 0, A: 1}); err != nil {
		t.Errorf("Clear failed: %v", err)
	}
}

func TestTargetResize(t *testing.T) {
	dev := openNoopDevice(t)
	target, err := NewTarget(dev, renderTargetImage(32, 32))
	if err != nil {
		t.Fatalf("NewTarget failed: %v", err)
	}
	defer target.Destroy()

	if err := target.Resize(64, 48); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	w, h := target.Size()
	if w != 64 || h != 48 {
		t.Errorf("Size() after Resize = (%d, %d), want (64, 48)", w, h)
	}
	if target.View() == nil {
		t.Error("expected view after Resize")
	}

	if err := target.Resize(0, 48); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Resize(0, 48) error = %v, want ErrInvalidDimensions", err)
	}
}

func TestTargetDestroy(t *testing.T) {
	dev := openNoopDevice(t)
	target, err := NewTarget(dev, renderTargetImage(8, 8))
	if err != nil {
		t.Fatalf("NewTarget failed: %v", err)
	}

	target.Destroy()
	target.Destroy() // idempotent

	if target.View() != nil {
		t.Error("expected nil view after Destroy")
	}
	if _, _, _, err := target.ReadPixels(context.Background()); !errors.Is(err, ErrTargetDestroyed) {
		t.Errorf("ReadPixels after Destroy error = %v, want ErrTargetDestroyed", err)
	}
	if err := target.Upload(nil); !errors.Is(err, ErrTargetDestroyed) {
		t.Errorf("Upload after Destroy error = %v, want ErrTargetDestroyed", err)
	}
}

func TestStripRowPadding(t *testing.T) {
	// 2 rows of 3 bytes, padded to 4.
	data := []byte{1, 2, 3, 0, 4, 5, 6, 0}
	got := stripRowPadding(data, 3, 4, 2)
	want := []byte{1, 2, 3, 4, 5, 6}
	if !bytes.Equal(got, want) {
		t.Errorf("stripRowPadding = %v, want %v", got, want)
	}

	tight := []byte{1, 2, 3, 4}
	if got := stripRowPadding(tight, 4, 4, 1); !bytes.Equal(got, tight) {
		t.Errorf("stripRowPadding(no padding) = %v, want %v", got, tight)
	}
}

func TestSwizzleBGRA(t *testing.T) {
	pix := []byte{10, 20, 30, 255, 1, 2, 3, 4}
	swizzleBGRA(pix)
	want := []byte{30, 20, 10, 255, 3, 2, 1, 4}
	if !bytes.Equal(pix, want) {
		t.Errorf("swizzleBGRA = %v, want %v", pix, want)
	}
}
