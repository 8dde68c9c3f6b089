// Package logger builds the zap logger every assistant component receives
// by constructor injection. Convention: "json" format selects the
// production encoder for deployed instances, anything else the console
// development encoder; tests use zap.NewNop().
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new zap.Logger instance from the configured level
// and format. An empty level means info, matching an empty config file.
func NewLogger(level string, format string) (*zap.Logger, error) {
	if level == "" {
		level = "info"
	}
	logLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.Level = zap.NewAtomicLevelAt(logLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
