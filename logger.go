package sprite

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/sprite/atlas"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for sprite and all its sub-packages.
// By default, sprite produces no log output.
//
// Pass nil to restore the default silent behavior. The logger is also passed
// to package atlas and to every device handed to [NewBatch] that implements
// SetLogger.
//
// Log levels used by sprite:
//   - [slog.LevelDebug]: flush statistics, queue growth, atlas pages
//   - [slog.LevelInfo]: device and pipeline creation
//   - [slog.LevelWarn]: non-fatal failures (texture array kept, release errors)
//
// Example:
//
//	sprite.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	atlas.SetLogger(l)

	devicesMu.Lock()
	defer devicesMu.Unlock()
	for d := range devices {
		propagateLogger(d, l)
	}
}

// Logger returns the current logger used by sprite.
// Sub-packages call this to share the same logger configuration.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by devices that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

var (
	devicesMu sync.Mutex
	devices   = make(map[Device]int)
)

// registerDevice remembers d so later SetLogger calls reach it.
// Devices are reference counted per batch.
func registerDevice(d Device) {
	devicesMu.Lock()
	devices[d]++
	devicesMu.Unlock()
	propagateLogger(d, Logger())
}

func unregisterDevice(d Device) {
	devicesMu.Lock()
	if devices[d]--; devices[d] <= 0 {
		delete(devices, d)
	}
	devicesMu.Unlock()
}

func propagateLogger(d Device, l *slog.Logger) {
	if ls, ok := d.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
