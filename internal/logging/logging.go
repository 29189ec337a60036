// Package logging builds the slog handlers used by the framecap command.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New returns a logger writing to w in the given format ("json" or
// "text") and the LevelVar controlling it, so the level can be changed
// after a config reload. Unknown levels fall back to info.
func New(w io.Writer, level, format string) (*slog.Logger, *slog.LevelVar) {
	levelVar := &slog.LevelVar{}
	if l, ok := ParseLevel(level); ok {
		levelVar.Set(l)
	}

	opts := &slog.HandlerOptions{Level: levelVar}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), levelVar
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
