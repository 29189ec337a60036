package framecap

// CapturerOption configures a Capturer during creation.
//
// Example:
//
//	c := framecap.NewCapturer(world, images, sources, scene,
//	    framecap.WithBus(bus),
//	    framecap.WithObserver(metrics.Observer{}))
type CapturerOption func(*capturerOptions)

type capturerOptions struct {
	bus      *Bus
	observer Observer
}

func defaultCapturerOptions() capturerOptions {
	return capturerOptions{observer: nopObserver{}}
}

// WithBus publishes FrameCaptured events on b after every capture.
func WithBus(b *Bus) CapturerOption {
	return func(o *capturerOptions) {
		o.bus = b
	}
}

// WithObserver reports capture activity to obs, typically a metrics sink.
// A nil observer is ignored.
func WithObserver(obs Observer) CapturerOption {
	return func(o *capturerOptions) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// Observer receives capture activity.
type Observer interface {
	FrameCaptured(frameID uint64, width, height uint32)
	CaptureFailed(err error)
	SceneResized(width, height uint32)
}

type nopObserver struct{}

func (nopObserver) FrameCaptured(uint64, uint32, uint32) {}
func (nopObserver) CaptureFailed(error)                  {}
func (nopObserver) SceneResized(uint32, uint32)          {}
