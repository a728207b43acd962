package main

import (
	"fmt"
	"os"

	"go.elastic.co/ecszap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the process logger. format is "ecs" for Elastic Common
// Schema JSON, "json" for plain zap JSON, anything else for console output.
func newLogger(format, level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	switch format {
	case "ecs":
		core := ecszap.NewCore(ecszap.NewDefaultEncoderConfig(), zapcore.Lock(os.Stdout), lvl)
		return zap.New(core, zap.AddCaller()), nil
	case "json":
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		return cfg.Build()
	default:
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		return cfg.Build()
	}
}
