package framecap

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discardHandler drops every record. Enabled reports false, so attribute
// values such as frame ids are never formatted.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }

var silent = slog.New(discardHandler{})

// current is read on every capture and may be swapped by SetLogger from
// another goroutine.
var current atomic.Pointer[slog.Logger]

func init() { current.Store(silent) }

// SetLogger routes framecap diagnostics, including those of the gpu
// package, to l. A nil l silences them again, which is the initial state.
//
// Frame-level events (frame ids, readback sizes) are logged at Debug,
// render target setup and scene resizes at Info, skipped targets at Warn,
// and frame buffers that could not be replaced at Error.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
}

// Logger returns the logger installed by SetLogger.
func Logger() *slog.Logger { return current.Load() }
