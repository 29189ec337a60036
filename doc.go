// Package framecap captures frames from an off-screen render target.
//
// It provides three pieces that a rendering application wires together:
//
//   - [CurrentFrame] holds the most recently captured frame as an RGBA8
//     pixel buffer with its frame id and export file extension.
//   - [SceneInfo] describes the logical scene size. It is both the scene
//     state and, when published on a [Bus], a resize notification.
//   - [SetupRenderTarget] allocates the render target image, registers it
//     in an asset store, and spawns an entity carrying an [ExportBundle]
//     so a [Capturer] reads it back each frame.
//
// # Quick Start
//
//	world := entity.NewWorld()
//	images := asset.New[*framecap.Image]()
//	sources := asset.New[framecap.ExportSource]()
//
//	c := framecap.NewCapturer(world, images, sources, framecap.NewSceneInfo(1280, 720))
//	rt := c.SetupRenderTarget()
//
//	// Optional: back the target with a GPU texture.
//	img, _ := images.Get(rt.Image)
//	target, _ := gpu.NewTarget(dev, img)
//	c.AttachReadback(rt.Image, target)
//
//	// ... render into the target ...
//	c.CaptureAll(ctx)
//	frame := c.Frame()
//
// # Logging
//
// framecap is silent by default. Call [SetLogger] to receive diagnostics.
package framecap
