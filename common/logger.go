package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled returns false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger shared by every package in this module.
// By default nothing is logged. Passing nil restores the silent default.
// SetLogger is safe for concurrent use.
//
// Levels used:
//   - slog.LevelDebug: per-tile dispatch, buffer sizes, pipeline creation
//   - slog.LevelInfo: render lifecycle, tile counts, metrics
//   - slog.LevelWarn: software adapter fallback, release failures
//   - slog.LevelError: fatal device errors before they abort the process
//
// Parameters:
//   - l: the logger to install
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current module-wide logger. It is never nil.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// NopLogger returns a logger that discards all output.
func NopLogger() *slog.Logger {
	return slog.New(nopHandler{})
}
