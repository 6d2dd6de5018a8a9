package ui

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	Debug bool
	z     *zap.SugaredLogger
}

// NewLogger returns a console logger writing to stderr; debug messages are
// only emitted when debug is set.
func NewLogger(debug bool) *Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = !debug
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.TimeKey = ""
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}

	return &Logger{Debug: debug, z: z.Sugar()}
}

// NopLogger discards everything.
func NopLogger() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.z.Debugf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.z.Infof(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.z.Errorf(format, args...)
}

// With returns a logger carrying the given key/value pairs.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{Debug: l.Debug, z: l.z.With(kv...)}
}

func (l *Logger) Sync() {
	_ = l.z.Sync()
}
