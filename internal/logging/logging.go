// Package logging builds the logr.Logger used for the debug journal.
// Operator-facing messages go through the console package instead.
package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects verbosity and destination.
type Options struct {
	// Verbose enables V(1) debug records (backend round trips, register I/O).
	Verbose bool
	// File, when set, receives JSON records at info level instead of
	// stderr.
	File string
}

// New returns a logger and a flush function to call before exit.
func New(opts Options) (logr.Logger, func() error, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	// The terminal belongs to the operator; only warnings reach stderr
	// unless asked for. A journal file records the full info stream.
	level := zapcore.WarnLevel
	switch {
	case opts.Verbose:
		level = zapcore.DebugLevel
	case opts.File != "":
		level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	cfg.OutputPaths = []string{"stderr"}
	if opts.File != "" {
		cfg.Encoding = "json"
		cfg.EncoderConfig = zap.NewProductionEncoderConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{opts.File}
	}

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), func() error { return nil }, fmt.Errorf("build logger: %w", err)
	}

	return zapr.NewLogger(zl).WithName("apm"), zl.Sync, nil
}
