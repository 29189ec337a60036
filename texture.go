package framecap

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// RenderTargetUsage is the usage of textures created by SetupRenderTarget:
// rendered into, sampled, and copied in both directions for readback.
const RenderTargetUsage = gputypes.TextureUsageCopySrc |
	gputypes.TextureUsageCopyDst |
	gputypes.TextureUsageTextureBinding |
	gputypes.TextureUsageRenderAttachment

// TextureDescriptor describes a texture. It mirrors the WebGPU
// GPUTextureDescriptor.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Size is the texture extent. DepthOrArrayLayers is 1 for 2D textures.
	Size gputypes.Extent3D

	// Dimension is the texture dimensionality.
	Dimension gputypes.TextureDimension

	// Format is the texel format.
	Format gputypes.TextureFormat

	// MipLevelCount is the number of mip levels. Use 1 for no mipmaps.
	MipLevelCount uint32

	// SampleCount is the number of samples. Use 1 for no multisampling.
	SampleCount uint32

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage

	// ViewFormats lists additional formats views may use. Empty for none.
	ViewFormats []gputypes.TextureFormat
}

// RenderTargetDescriptor returns the descriptor of an off-screen render
// target of the given size: unlabeled, 2D, sRGB RGBA8, no mipmaps, no
// multisampling.
func RenderTargetDescriptor(size gputypes.Extent3D) TextureDescriptor {
	return TextureDescriptor{
		Size:          size,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
		Usage:         RenderTargetUsage,
	}
}

// HAL converts the descriptor for texture creation on a hal.Device.
func (d TextureDescriptor) HAL() *hal.TextureDescriptor {
	return &hal.TextureDescriptor{
		Label:         d.Label,
		Size:          hal.Extent3D{Width: d.Size.Width, Height: d.Size.Height, DepthOrArrayLayers: max(d.Size.DepthOrArrayLayers, 1)},
		MipLevelCount: max(d.MipLevelCount, 1),
		SampleCount:   max(d.SampleCount, 1),
		Dimension:     d.Dimension,
		Format:        d.Format,
		Usage:         d.Usage,
	}
}

// BytesPerPixel returns the texel size of the descriptor's format.
func (d TextureDescriptor) BytesPerPixel() int {
	return bytesPerPixel(d.Format)
}

func bytesPerPixel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	default:
		return 4
	}
}

// Image is a CPU-side texture asset: a descriptor plus its texel data.
// Data is laid out in tightly packed rows of Size.Width texels.
type Image struct {
	Descriptor TextureDescriptor
	Data       []byte
}

// NewImage returns an image with the given descriptor and zero-filled data
// sized to match it.
func NewImage(desc TextureDescriptor) *Image {
	img := &Image{Descriptor: desc}
	img.Resize(desc.Size)
	return img
}

// Resize sets the texture size and reallocates zero-filled data of
// width*height*depth*bytesPerPixel bytes. Existing contents are discarded.
func (img *Image) Resize(size gputypes.Extent3D) {
	if size.DepthOrArrayLayers == 0 {
		size.DepthOrArrayLayers = 1
	}
	img.Descriptor.Size = size
	n := int(size.Width) * int(size.Height) * int(size.DepthOrArrayLayers) * img.Descriptor.BytesPerPixel()
	img.Data = make([]byte, n)
}

// Width returns the texture width in pixels.
func (img *Image) Width() uint32 { return img.Descriptor.Size.Width }

// Height returns the texture height in pixels.
func (img *Image) Height() uint32 { return img.Descriptor.Size.Height }
