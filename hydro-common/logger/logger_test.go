package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestNewLogger_Formats(t *testing.T) {
	jsonLogger, err := NewLogger("warn", "json", "hydro-kernel")
	require.NoError(t, err)
	assert.False(t, jsonLogger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, jsonLogger.Core().Enabled(zapcore.ErrorLevel))

	consoleLogger, err := NewLogger("debug", "console", "")
	require.NoError(t, err)
	assert.True(t, consoleLogger.Core().Enabled(zapcore.DebugLevel))
}
