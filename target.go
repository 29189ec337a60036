package framecap

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/framecap/asset"
	"github.com/gogpu/framecap/entity"
)

// RenderTarget names where a camera renders to. framecap only produces
// image targets.
type RenderTarget struct {
	Image asset.Handle[*Image]
}

// IsImage reports whether the target refers to an image asset.
func (t RenderTarget) IsImage() bool { return t.Image.IsValid() }

// SetupRenderTarget allocates an off-screen render target sized to the
// scene, registers it as an image asset, and spawns an entity carrying an
// export bundle for it. The returned target is what cameras render into.
func SetupRenderTarget(
	world *entity.World,
	images *asset.Assets[*Image],
	scene *SceneInfo,
	exportSources *asset.Assets[ExportSource],
) RenderTarget {
	w, h := scene.Dimensions()
	size := gputypes.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	img := &Image{Descriptor: RenderTargetDescriptor(size)}
	img.Resize(size)
	handle := images.Add(img)

	world.Spawn(ExportBundle{
		Source:   exportSources.Add(NewExportSource(handle.Clone())),
		Settings: DefaultExportSettings(),
	})

	Logger().Info("render target created", "image", handle.ID(), "width", w, "height", h)
	return RenderTarget{Image: handle}
}
