// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu realizes framecap render targets as wgpu/hal textures and reads
// them back into CPU memory.
//
// A Device is either opened directly (OpenDevice) or borrowed from a host
// application that already owns one (FromProvider). Targets created on a
// borrowed device never destroy it.
//
// Usage:
//
//	dev, err := gpu.OpenDevice(gpu.BackendVulkan)
//	if err != nil { ... }
//	defer dev.Close()
//
//	target, err := gpu.NewTarget(dev, img)
//	capturer.AttachReadback(rt.Image, target)
package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan backend
)

// Backend names accepted by OpenDevice.
const (
	BackendNoop   = "noop"
	BackendVulkan = "vulkan"
)

// Device errors.
var (
	// ErrUnknownBackend is returned by OpenDevice for an unsupported name.
	ErrUnknownBackend = errors.New("gpu: unknown backend")

	// ErrNoAdapter is returned when the backend exposes no adapters.
	ErrNoAdapter = errors.New("gpu: no GPU adapters found")

	// ErrNoHAL is returned by FromProvider when the provider does not
	// expose hal.Device and hal.Queue.
	ErrNoHAL = errors.New("gpu: provider does not expose HAL types")
)

// Device is a HAL device and its queue.
type Device struct {
	Device hal.Device
	Queue  hal.Queue

	instance hal.Instance
	external bool
}

// OpenDevice opens a device on the named backend, preferring discrete or
// integrated GPUs over software adapters.
func OpenDevice(backend string) (*Device, error) {
	var (
		instance hal.Instance
		err      error
	)
	switch backend {
	case BackendNoop:
		instance, err = noop.API{}.CreateInstance(nil)
	case BackendVulkan:
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, fmt.Errorf("%w: vulkan not available", ErrUnknownBackend)
		}
		instance, err = b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	logger().Info("gpu device opened", "backend", backend, "adapter", selected.Info.Name)
	return &Device{
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		instance: instance,
	}, nil
}

// FromProvider borrows the device of a host application. The provider must
// also implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return &Device{Device: device, Queue: queue, external: true}, nil
}

// External reports whether the device is owned by a host application.
func (d *Device) External() bool { return d.external }

// Close destroys the device and instance unless they are borrowed.
func (d *Device) Close() {
	if d.external {
		return
	}
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
