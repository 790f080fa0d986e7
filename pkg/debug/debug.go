// Package debug provides the process logger for tg.
//
// Debug logging is enabled by setting the TG_DEBUG environment variable:
//
//	TG_DEBUG=1 tg tours
//
// When enabled, messages are written to stderr, or to TG_LOG_FILE when it is
// set (the terminal playground sets nothing on stderr while the alt screen
// is up, so use a file there). When disabled (default), Logger returns a
// no-op zap logger and the helpers here cost nothing.
//
// Usage:
//
//	import "github.com/vanderheijden86/tourguide/pkg/debug"
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	    debug.Log("loaded %d tours", n)
//	}
package debug

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	enabled bool
	logger  = zap.NewNop()
)

func init() {
	if os.Getenv("TG_DEBUG") != "" {
		SetEnabled(true)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled switches debug logging on or off and rebuilds the logger.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if !e {
		logger = zap.NewNop()
		return
	}
	l, err := build(os.Getenv("TG_LOG_FILE"))
	if err != nil {
		l, _ = build("")
	}
	logger = l
}

func build(path string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000")
	if path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	} else {
		cfg.OutputPaths = []string{"stderr"}
	}
	return cfg.Build(zap.WithCaller(false))
}

// SetLogger replaces the process logger. Used by tests and by hosts that
// already own a zap logger.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
	enabled = true
}

// Logger returns the process logger. Never nil.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Named returns a child of the process logger for a component.
func Named(name string) *zap.Logger {
	return Logger().Named(name)
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !Enabled() {
		return
	}
	Logger().Sugar().Debugf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !Enabled() {
		return
	}
	Logger().Debug("timing", zap.String("op", name), zap.Duration("took", d))
}

// LogEnterExit logs function entry and exit with timing.
//
//	defer debug.LogEnterExit("myFunc")()
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	Logger().Debug("-> " + name)
	start := time.Now()
	return func() {
		Logger().Debug("<- "+name, zap.Duration("took", time.Since(start)))
	}
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger().Sync()
}
