package framecap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framecap/asset"
	"github.com/gogpu/framecap/entity"
)

// Capture errors.
var (
	// ErrUnknownExportSource is returned when an export bundle references
	// an export source that is not in the store.
	ErrUnknownExportSource = errors.New("framecap: unknown export source")

	// ErrUnknownImage is returned when an export source references an image
	// that is not in the store.
	ErrUnknownImage = errors.New("framecap: unknown render target image")

	// ErrShortBuffer is returned when a render target yields fewer bytes
	// than its dimensions require. The previous frame is kept.
	ErrShortBuffer = errors.New("framecap: pixel buffer too short")
)

// Readback reads the current contents of a render target as tightly packed
// RGBA8 rows. gpu.Target implements it for GPU-backed targets.
type Readback interface {
	ReadPixels(ctx context.Context) (width, height uint32, pix []byte, err error)
}

// Resizer is implemented by readback sources that must follow scene resizes.
type Resizer interface {
	Resize(width, height uint32) error
}

// Capturer reads exported render targets back into a CurrentFrame.
//
// Every export bundle in the world is captured in spawn order. Frame ids are
// assigned monotonically starting at 1; a buffer too short for its
// dimensions still consumes an id and fails with ErrShortBuffer. Pixels
// come from the Readback attached to the image handle, or from the image's
// CPU-side data when none is attached.
//
// Capturer is safe for concurrent use.
type Capturer struct {
	mu sync.Mutex

	world   *entity.World
	images  *asset.Assets[*Image]
	sources *asset.Assets[ExportSource]

	scene     SceneInfo
	frame     *CurrentFrame
	lastID    uint64
	readbacks map[asset.Handle[*Image]]Readback

	opts capturerOptions
}

// NewCapturer creates a capturer over the given world and asset stores.
func NewCapturer(
	world *entity.World,
	images *asset.Assets[*Image],
	sources *asset.Assets[ExportSource],
	scene SceneInfo,
	opts ...CapturerOption,
) *Capturer {
	o := defaultCapturerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Capturer{
		world:     world,
		images:    images,
		sources:   sources,
		scene:     scene,
		frame:     NewCurrentFrame(),
		readbacks: make(map[asset.Handle[*Image]]Readback),
		opts:      o,
	}
}

// SetupRenderTarget creates a render target sized to the current scene.
// See the package-level SetupRenderTarget.
func (c *Capturer) SetupRenderTarget() RenderTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SetupRenderTarget(c.world, c.images, &c.scene, c.sources)
}

// AttachReadback makes r the pixel source for the image behind h.
// Pass nil to fall back to the image's CPU-side data.
func (c *Capturer) AttachReadback(h asset.Handle[*Image], r Readback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r == nil {
		delete(c.readbacks, h)
		return
	}
	c.readbacks[h] = r
}

// Scene returns the current scene info.
func (c *Capturer) Scene() SceneInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scene
}

// Frame returns a copy of the most recently captured frame.
func (c *Capturer) Frame() *CurrentFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame.Clone()
}

// CaptureAll captures every exported render target once and returns the
// number of frames recorded. A target that cannot be read is skipped; the
// joined errors are returned after all targets have been visited.
func (c *Capturer) CaptureAll(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		captured int
		errs     []error
	)
	entity.Query(c.world, func(e entity.Entity, b ExportBundle) {
		if err := ctx.Err(); err != nil {
			return
		}
		if err := c.captureLocked(ctx, b); err != nil {
			err = fmt.Errorf("entity %d: %w", e, err)
			Logger().Warn("capture failed", "entity", e, "err", err)
			c.opts.observer.CaptureFailed(err)
			errs = append(errs, err)
			return
		}
		captured++
	})
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	return captured, errors.Join(errs...)
}

func (c *Capturer) captureLocked(ctx context.Context, b ExportBundle) error {
	src, ok := c.sources.Get(b.Source)
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownExportSource, b.Source)
	}
	img, ok := c.images.Get(src.Image)
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnknownImage, src.Image)
	}

	w, h, pix := img.Width(), img.Height(), img.Data
	if rb, ok := c.readbacks[src.Image]; ok {
		var err error
		w, h, pix, err = rb.ReadPixels(ctx)
		if err != nil {
			return fmt.Errorf("read pixels: %w", err)
		}
	}

	ext := b.Settings.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	c.lastID++
	if !c.frame.applyRaw(c.lastID, w, h, pix, ext) {
		return fmt.Errorf("%w: frame %d has %d bytes for %dx%d", ErrShortBuffer, c.lastID, len(pix), w, h)
	}

	dims := c.frame.Dimensions()
	Logger().Debug("frame captured", "frame_id", c.lastID, "width", dims[0], "height", dims[1], "bytes", len(pix))
	c.opts.observer.FrameCaptured(c.lastID, dims[0], dims[1])
	if c.opts.bus != nil {
		c.opts.bus.Publish(FrameCaptured{
			FrameID:   c.lastID,
			Width:     dims[0],
			Height:    dims[1],
			Extension: ext,
		})
	}
	return nil
}

// Resize applies a scene resize: it stores the new scene info and resizes
// every exported render target image, and any attached readback source
// implementing Resizer, to the new dimensions. Image contents are cleared.
func (c *Capturer) Resize(scene SceneInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scene = scene
	w, h := scene.Dimensions()
	size := gputypes.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	var errs []error
	entity.Query(c.world, func(_ entity.Entity, b ExportBundle) {
		src, ok := c.sources.Get(b.Source)
		if !ok {
			return
		}
		img, ok := c.images.Get(src.Image)
		if !ok {
			return
		}
		img.Resize(size)
		if r, ok := c.readbacks[src.Image].(Resizer); ok {
			if err := r.Resize(w, h); err != nil {
				errs = append(errs, fmt.Errorf("resize %v: %w", src.Image, err))
			}
		}
	})

	Logger().Info("scene resized", "width", w, "height", h)
	c.opts.observer.SceneResized(w, h)
	return errors.Join(errs...)
}

// Subscribe resizes the capturer whenever a SceneInfo is published on bus.
// The returned function unsubscribes.
func (c *Capturer) Subscribe(bus *Bus) func() {
	return bus.OnSceneInfo(func(s SceneInfo) {
		if err := c.Resize(s); err != nil {
			Logger().Warn("resize failed", "scene", s.String(), "err", err)
		}
	})
}
