// Package logger provides the process-wide structured logger. A zap JSON core
// writes to stderr and is exposed as a logr.Logger that travels on contexts.
package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/sentidash/internal/model"
)

type loggerContextKey struct{}

const (
	VersionKey   = "version"
	GoVersionKey = "go_version"
	TimeStampKey = "timestamp"
	MessageKey   = "message"
	SessionKey   = "session"
)

var (
	once sync.Once

	// globalZap is kept for Sync
	globalZap  *zap.Logger
	globalLogr *logr.Logger

	noop = logr.Discard()
)

// Get initialises the global logger on first call and returns it. The level
// is a zapcore level: -1 debug, 0 info, 1 warn, 2 error. Later calls return
// the same logger regardless of level.
func Get(level int8) *logr.Logger {
	once.Do(func() {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderCfg.TimeKey = TimeStampKey
		encoderCfg.MessageKey = MessageKey

		goVersion := "unknown"
		if info, ok := debug.ReadBuildInfo(); ok {
			goVersion = info.GoVersion
		}

		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.Lock(os.Stderr),
			zap.NewAtomicLevelAt(zapcore.Level(level)),
		).With([]zapcore.Field{
			zap.String(VersionKey, model.Version),
			zap.String(GoVersionKey, goVersion),
		})

		globalZap = zap.New(core,
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
		)

		l := zapr.NewLogger(globalZap)
		globalLogr = &l
	})
	if globalLogr == nil {
		return &noop
	}
	return globalLogr
}

// WithLogger attaches log to ctx. The original context is returned when it
// already carries the same logger.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if existing, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && existing == log {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the context logger, then the global logger, then a no-op logger
func FromContext(ctx context.Context) *logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return log
	}
	if globalLogr != nil {
		return globalLogr
	}
	return &noop
}

// Noop returns a logger that discards everything
func Noop() *logr.Logger {
	return &noop
}

// WithValues returns a new logger carrying keysAndValues
func WithValues(log *logr.Logger, keysAndValues ...any) *logr.Logger {
	l := log.WithValues(keysAndValues...)
	return &l
}

// Sync flushes buffered entries. Call it before the process exits.
func Sync() {
	if globalZap == nil {
		return
	}
	if err := globalZap.Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "WARNING: failed to sync logger: %v\n", err)
	}
}

// isIgnorableSyncError reports the errors stderr returns when it is a pipe or TTY
func isIgnorableSyncError(err error) bool {
	return errors.Is(err, syscall.ENOTTY) ||
		errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.EIO) ||
		errors.Is(err, syscall.EBADF)
}
