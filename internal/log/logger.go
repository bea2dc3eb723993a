// Package log sets up the zap logger shared by the ffi-cdecl commands.
package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// L is the process logger. It is a no-op logger until Init is called.
	L    = zap.NewNop()
	once sync.Once
)

// Init builds L for the given level. Only the first call takes effect.
func Init(level string) (err error) {
	once.Do(func() {
		var l *zap.Logger
		if l, err = New(level); err == nil {
			L = l
		}
	})
	return
}

// New creates a logger writing to stderr. "debug" selects zap's
// development config with colored levels; other levels use the
// production encoder.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	var cfg zap.Config
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.Sampling = nil
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
