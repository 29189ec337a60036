// Package metrics exports framecap capture activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gogpu/framecap"
)

var (
	framesCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "framecap",
		Subsystem: "capture",
		Name:      "frames_total",
		Help:      "Total frames read back from render targets",
	})

	captureErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "framecap",
		Subsystem: "capture",
		Name:      "errors_total",
		Help:      "Total render target readbacks that failed",
	})

	lastFrameID = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "framecap",
		Subsystem: "capture",
		Name:      "last_frame_id",
		Help:      "Identifier of the most recently captured frame",
	})

	sceneWidth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "framecap",
		Subsystem: "scene",
		Name:      "width",
		Help:      "Current logical scene width in pixels",
	})

	sceneHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "framecap",
		Subsystem: "scene",
		Name:      "height",
		Help:      "Current logical scene height in pixels",
	})
)

// Observer records capture activity in the package metrics.
// It implements framecap.Observer.
type Observer struct{}

// FrameCaptured counts a captured frame.
func (Observer) FrameCaptured(frameID uint64, _, _ uint32) {
	framesCaptured.Inc()
	lastFrameID.Set(float64(frameID))
}

// CaptureFailed counts a failed readback.
func (Observer) CaptureFailed(error) {
	captureErrors.Inc()
}

// SceneResized records the new scene size.
func (Observer) SceneResized(width, height uint32) {
	sceneWidth.Set(float64(width))
	sceneHeight.Set(float64(height))
}

var _ framecap.Observer = Observer{}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
