package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json", "ecs"} {
		t.Run(format, func(t *testing.T) {
			logger, err := newLogger(format, "warn")
			require.NoError(t, err)
			assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
			assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
		})
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := newLogger("console", "loud")
	assert.Error(t, err)
}
