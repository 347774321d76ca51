// Package logging builds the zap loggers of the executables.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger writing at least level ("debug", "info", "warn", "error").
// Development loggers write colored console lines, production loggers write JSON.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var config zap.Config
	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.Sampling = nil
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}

// Must is like New but falls back to a development logger on an invalid level
func Must(level string, development bool) *zap.Logger {
	logger, err := New(level, development)
	if err == nil {
		return logger
	}
	logger = zap.Must(zap.NewDevelopment())
	logger.Warn("Invalid log configuration, using development logger", zap.Error(err))
	return logger
}
