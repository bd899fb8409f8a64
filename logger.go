package rtao

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for rtao and every open Device.
// By default rtao produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by rtao:
//   - [slog.LevelDebug]: buffer (re)allocation, dispatch extents
//   - [slog.LevelInfo]: device lifecycle
//   - [slog.LevelWarn]: buffers still referenced by in-flight work at release
//
// Example:
//
//	rtao.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	devicesMu.Lock()
	open := make([]*Device, 0, len(devices))
	for d := range devices {
		open = append(open, d)
	}
	devicesMu.Unlock()

	for _, d := range open {
		propagateLogger(d, l)
	}
}

// Logger returns the current logger used by rtao.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by components that keep their own logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes l to v if it accepts a logger.
func propagateLogger(v any, l *slog.Logger) {
	if ls, ok := v.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}

// Open devices receive logger updates until they are closed.
var (
	devicesMu sync.Mutex
	devices   = make(map[*Device]struct{})
)

func registerDevice(d *Device) {
	devicesMu.Lock()
	devices[d] = struct{}{}
	devicesMu.Unlock()
	propagateLogger(d, Logger())
}

func unregisterDevice(d *Device) {
	devicesMu.Lock()
	delete(devices, d)
	devicesMu.Unlock()
}
