// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestOpenDeviceNoop(t *testing.T) {
	dev, err := OpenDevice(BackendNoop)
	if err != nil {
		t.Fatalf("OpenDevice(noop) failed: %v", err)
	}
	if dev.Device == nil || dev.Queue == nil {
		t.Fatal("expected non-nil device and queue")
	}
	if dev.External() {
		t.Error("opened device should not be external")
	}
	dev.Close()
	dev.Close() // idempotent
}

func TestOpenDeviceUnknown(t *testing.T) {
	_, err := OpenDevice("metal-on-linux")
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("OpenDevice(unknown) error = %v, want ErrUnknownBackend", err)
	}
}

// halProvider is a host device provider exposing HAL types, the way gogpu
// applications do.
type halProvider struct {
	device any
	queue  any
}

func (halProvider) Device() gpucontext.Device   { return nil }
func (halProvider) Queue() gpucontext.Queue     { return nil }
func (halProvider) Adapter() gpucontext.Adapter { return nil }
func (halProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}
func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

// plainProvider does not expose HAL types.
type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device   { return nil }
func (plainProvider) Queue() gpucontext.Queue     { return nil }
func (plainProvider) Adapter() gpucontext.Adapter { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

func TestFromProvider(t *testing.T) {
	host := openNoopDevice(t)

	dev, err := FromProvider(halProvider{device: host.Device, queue: host.Queue})
	if err != nil {
		t.Fatalf("FromProvider failed: %v", err)
	}
	if !dev.External() {
		t.Error("borrowed device should be external")
	}
	if dev.Device != host.Device {
		t.Error("device not taken from provider")
	}

	// Closing a borrowed device must leave the host device usable.
	dev.Close()
	target, err := NewTarget(host, renderTargetImage(8, 8))
	if err != nil {
		t.Fatalf("host device unusable after borrowed Close: %v", err)
	}
	target.Destroy()
}

func TestFromProviderErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider gpucontext.DeviceProvider
	}{
		{"no hal", plainProvider{}},
		{"wrong device type", halProvider{device: "device", queue: nil}},
		{"nil queue", halProvider{device: nil, queue: nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromProvider(tt.provider); !errors.Is(err, ErrNoHAL) {
				t.Errorf("FromProvider error = %v, want ErrNoHAL", err)
			}
		})
	}
}
