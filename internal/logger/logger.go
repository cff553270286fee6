// Package logger wraps zap for application-wide structured logging.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger holds the underlying zap logger instance.
type Logger struct {
	// Log is the configured zap logger. It is a no-op until Init is called.
	Log *zap.Logger
}

// New returns a Logger with a no-op zap instance so callers can log
// safely before Init configures the real one.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init configures the logger at the given level ("Debug", "Info", "Warn",
// "Error"). Returns an error if the level cannot be parsed or the logger
// cannot be built.
func (l *Logger) Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	log, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = log
	return nil
}
