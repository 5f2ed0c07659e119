package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	stderr bool
	level  zapcore.Level
}

// Option tunes the logger built by New.
type Option func(*options)

// FileOnly drops the stderr core. The TUI uses it; console output would
// draw over the screen.
func FileOnly() Option {
	return func(o *options) { o.stderr = false }
}

// WithLevel sets the minimum level for every core.
func WithLevel(l zapcore.Level) Option {
	return func(o *options) { o.level = l }
}

// New creates a zap logger that writes JSON to logPath and, unless FileOnly
// is given, console lines to stderr. Profile, component and PID are
// included as initial fields.
func New(logPath, profile, component string, opts ...Option) (*zap.Logger, error) {
	const op = "logging.New"

	o := options{stderr: true, level: zapcore.InfoLevel}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), o.level),
	}
	if o.stderr {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(os.Stderr), o.level))
	}

	logger := zap.New(zapcore.NewTee(cores...),
		zap.Fields(
			zap.String("profile", profile),
			zap.String("component", component),
			zap.Int("pid", os.Getpid()),
		),
	)
	return logger, nil
}
