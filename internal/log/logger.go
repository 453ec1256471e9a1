package log

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options configures NewLogger.
type Options struct {
	// Verbose lowers the level to Debug. The default level is Info, which
	// shows every visited URL.
	Verbose bool

	// JSON switches to slog's JSON handler.
	JSON bool

	// NoColor disables colored output. Color is also off when the writer
	// is not a terminal.
	NoColor bool

	// Secrets are values cut out of every log line.
	Secrets []string
}

// NewLogger creates a logger writing to w through a SecureHandler.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	var base slog.Handler
	if opts.JSON {
		base = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		base = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    opts.NoColor || !IsTerminal(w),
		})
	}

	return slog.New(NewSecureHandler(base, opts.Secrets...))
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
