package grain

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record. Its Enabled reports false for all levels,
// so slog never builds the attributes of a disabled call.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }

func silentLogger() *slog.Logger { return slog.New(discard{}) }

// current holds the logger every grain package writes to.
var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(silentLogger())
}

// SetLogger routes grain's diagnostics to l. Volumes, buffers and the
// world generator stay quiet until it is called; nil silences them again.
// It may be called while other goroutines are logging.
//
// Records emitted:
//   - [slog.LevelDebug]: every push made by Synchronize, tracker strategy
//     changes, capacity growth, texture (re)creation, terrain fills
//   - [slog.LevelWarn]: a presentation buffer rejected a push
//
// To see everything on stderr:
//
//	grain.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silentLogger()
	}
	current.Store(l)
}

// Logger returns the logger set by SetLogger, or a silent one.
func Logger() *slog.Logger {
	return current.Load()
}
