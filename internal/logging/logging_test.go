package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewConfig(t *testing.T) {
	cfg, err := newConfig("debug", false)
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, cfg.Level.Level())
	assert.Equal(t, "console", cfg.Encoding)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
	assert.True(t, cfg.DisableStacktrace)

	_, err = newConfig("chatty", false)
	assert.Error(t, err)
}

func TestNew_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, colorEnabled())

	logger, err := New("warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}
