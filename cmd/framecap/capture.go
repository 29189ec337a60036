package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gogpu/framecap"
	"github.com/gogpu/framecap/asset"
	"github.com/gogpu/framecap/entity"
	"github.com/gogpu/framecap/gpu"
	"github.com/gogpu/framecap/internal/config"
	"github.com/gogpu/framecap/internal/logging"
	"github.com/gogpu/framecap/internal/metrics"
)

type captureOptions struct {
	width     uint32
	height    uint32
	frames    int
	interval  string
	extension string
	backend   string
	logLevel  string
	metrics   string
	watch     bool
}

func newCaptureCmd() *cobra.Command {
	var o captureOptions
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Render the demo scene and capture frames from the render target",
		Long: `Capture sets up an off-screen render target sized to the scene, draws the
demo scene into it and copies the target's pixels into the current frame
buffer once per frame. With --watch, scene size changes in the config file
resize the target while capturing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, &o)
			if err != nil {
				return err
			}
			return runCapture(cmd, cfg, o.watch)
		},
	}

	f := cmd.Flags()
	f.Uint32Var(&o.width, "width", 0, "Scene width in pixels")
	f.Uint32Var(&o.height, "height", 0, "Scene height in pixels")
	f.IntVarP(&o.frames, "frames", "n", 0, "Number of frames to capture (0 captures until interrupted)")
	f.StringVar(&o.interval, "interval", "", "Delay between frames, e.g. 100ms")
	f.StringVar(&o.extension, "extension", "", "File extension recorded with each frame")
	f.StringVar(&o.backend, "backend", "", "GPU backend (noop, vulkan); empty captures CPU-side data")
	f.StringVar(&o.logLevel, "log-level", "", "Logging level (debug, info, warn, error)")
	f.StringVar(&o.metrics, "metrics-addr", "", "Serve Prometheus metrics on this address")
	f.BoolVarP(&o.watch, "watch", "w", false, "Reload the config file and resize the scene on change")
	return cmd
}

// loadConfig loads the config file named by --config and applies the flags
// that were set explicitly.
func loadConfig(cmd *cobra.Command, o *captureOptions) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "width":
			cfg.Scene.Width = o.width
		case "height":
			cfg.Scene.Height = o.height
		case "frames":
			cfg.Capture.Frames = o.frames
		case "interval":
			cfg.Capture.Interval = o.interval
		case "extension":
			cfg.Capture.Extension = o.extension
		case "backend":
			cfg.GPU.Backend = o.backend
		case "log-level":
			cfg.Logging.Level = o.logLevel
		case "metrics-addr":
			cfg.Metrics.Addr = o.metrics
		}
	})
	return cfg, cfg.Validate()
}

func runCapture(cmd *cobra.Command, cfg config.Config, watch bool) error {
	interval, err := time.ParseDuration(cfg.Capture.Interval)
	if err != nil {
		return fmt.Errorf("capture.interval: %w", err)
	}

	logger, levelVar := logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	framecap.SetLogger(logger)
	defer framecap.SetLogger(nil)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	world := entity.NewWorld()
	images := asset.New[*framecap.Image]()
	sources := asset.New[framecap.ExportSource]()
	bus := framecap.NewBus()

	capturer := framecap.NewCapturer(world, images, sources,
		framecap.NewSceneInfo(cfg.Scene.Width, cfg.Scene.Height),
		framecap.WithBus(bus),
		framecap.WithObserver(metrics.Observer{}),
	)
	target := capturer.SetupRenderTarget()
	if cfg.Capture.Extension != "" {
		setExtension(world, cfg.Capture.Extension)
	}

	unsubscribe := bus.OnFrameCaptured(func(ev framecap.FrameCaptured) {
		logger.Info("frame captured",
			"frame_id", ev.FrameID, "width", ev.Width, "height", ev.Height, "extension", ev.Extension)
	})
	defer unsubscribe()

	var gpuTarget *gpu.Target
	if cfg.GPU.Backend != "" {
		dev, err := gpu.OpenDevice(cfg.GPU.Backend)
		if err != nil {
			return err
		}
		defer dev.Close()

		img, _ := images.Get(target.Image)
		gpuTarget, err = gpu.NewTarget(dev, img)
		if err != nil {
			return err
		}
		defer gpuTarget.Destroy()
		capturer.AttachReadback(target.Image, gpuTarget)
	}

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	resized := make(chan framecap.SceneInfo, 1)
	unsubscribeScene := bus.OnSceneInfo(func(s framecap.SceneInfo) {
		select {
		case resized <- s:
		default:
			// Only the latest size matters.
			select {
			case <-resized:
			default:
			}
			resized <- s
		}
	})
	defer unsubscribeScene()

	if watch {
		path, _ := cmd.Flags().GetString("config")
		w := config.NewWatcher(path, 0, logger)
		w.OnReload(func(c config.Config) {
			if l, ok := logging.ParseLevel(c.Logging.Level); ok {
				levelVar.Set(l)
			}
			bus.Publish(framecap.NewSceneInfo(c.Scene.Width, c.Scene.Height))
		})
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer func() { _ = w.Stop() }()
	}

	loop := captureLoop{
		capturer:  capturer,
		images:    images,
		image:     target.Image,
		gpuTarget: gpuTarget,
		resized:   resized,
		interval:  interval,
		frames:    cfg.Capture.Frames,
	}
	err = loop.run(ctx)

	frame := capturer.Frame()
	dims := frame.Dimensions()
	fmt.Fprintf(cmd.OutOrStdout(), "last frame: id=%d size=%dx%d extension=%s\n",
		frame.FrameID, dims[0], dims[1], frame.Extension)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// setExtension overrides the export extension of every spawned export bundle.
func setExtension(world *entity.World, ext string) {
	entity.Query(world, func(e entity.Entity, b framecap.ExportBundle) {
		b.Settings.Extension = ext
		world.Insert(e, b)
	})
}

func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "err", err)
		}
	}()
	return srv
}

// captureLoop renders and captures frames on a single goroutine so scene
// resizes never race with drawing into the image.
type captureLoop struct {
	capturer  *framecap.Capturer
	images    *asset.Assets[*framecap.Image]
	image     asset.Handle[*framecap.Image]
	gpuTarget *gpu.Target
	resized   <-chan framecap.SceneInfo
	interval  time.Duration
	frames    int
}

func (l *captureLoop) run(ctx context.Context) error {
	for n := 0; l.frames == 0 || n < l.frames; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s := <-l.resized:
			if err := l.capturer.Resize(s); err != nil {
				return err
			}
		default:
		}

		if err := l.step(ctx, n); err != nil {
			return err
		}

		if l.interval > 0 && (l.frames == 0 || n+1 < l.frames) {
			t := time.NewTimer(l.interval)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	return nil
}

func (l *captureLoop) step(ctx context.Context, n int) error {
	img, ok := l.images.Get(l.image)
	if !ok {
		return fmt.Errorf("%w: %v", framecap.ErrUnknownImage, l.image)
	}
	if err := renderScene(img, n); err != nil {
		return fmt.Errorf("render frame %d: %w", n, err)
	}
	if l.gpuTarget != nil {
		if err := l.gpuTarget.Upload(img.Data); err != nil {
			return fmt.Errorf("upload frame %d: %w", n, err)
		}
	}
	_, err := l.capturer.CaptureAll(ctx)
	return err
}
