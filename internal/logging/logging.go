package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger's verbosity and output encoding.
type Options struct {
	Level  string // debug, info, warn or error; empty means info
	Format string // console or json; empty means console
}

// New builds a structured logger from options.
func New(options Options) (*zap.Logger, error) {
	if options.Level == "" {
		options.Level = "info"
	}
	if options.Format == "" {
		options.Format = "console"
	}

	level, err := zapcore.ParseLevel(options.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", options.Level, err)
	}

	var config zap.Config
	switch options.Format {
	case "json":
		config = zap.NewProductionConfig()
	case "console":
		config = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", options.Format)
	}

	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
