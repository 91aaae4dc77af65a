package logging

import (
	"errors"
	"testing"

	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var _ alpaca.Logger = (*Logger)(nil)

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := Wrap(zap.New(core))

	logger.Debug("HTTP Request", map[string]interface{}{"method": "GET", "url": "https://example.com/v2/clock"})
	logger.Info("Stream connected", nil)
	logger.Warn("Rate limited", map[string]interface{}{"retry_after": uint64(3)})
	logger.Error("Stream failed", map[string]interface{}{"error": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "HTTP Request", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"method": "GET", "url": "https://example.com/v2/clock"}, entries[0].ContextMap())

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Empty(t, entries[1].Context)

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, uint64(3), entries[2].ContextMap()["retry_after"])

	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
}

func TestLogger_FieldOrder(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := Wrap(zap.New(core))

	logger.Info("ordered", map[string]interface{}{"c": 3, "a": 1, "b": 2})

	entries := logs.All()
	require.Len(t, entries, 1)

	keys := make([]string, 0, 3)
	for _, field := range entries[0].Context {
		keys = append(keys, field.Key)
	}

	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestLogger_LevelFilter(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	logger := Wrap(zap.New(core))

	logger.Debug("dropped", nil)
	logger.Info("dropped", nil)
	logger.Warn("kept", nil)

	assert.Equal(t, 1, logs.Len())
}

func TestNew(t *testing.T) {
	t.Parallel()

	logger, err := New(WithLevel(DebugLevel), WithOutputPaths([]string{"stderr"}))
	require.NoError(t, err)
	assert.True(t, logger.Zap().Core().Enabled(zapcore.DebugLevel))

	logger, err = New(WithDevelopment(), WithLevel(ErrorLevel))
	require.NoError(t, err)
	assert.False(t, logger.Zap().Core().Enabled(zapcore.WarnLevel))

	Nop().Info("discarded", map[string]interface{}{"k": "v"})
}

func TestLevel_zapLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zapcore.DebugLevel, DebugLevel.zapLevel())
	assert.Equal(t, zapcore.ErrorLevel, ErrorLevel.zapLevel())
	assert.Equal(t, zapcore.InfoLevel, Level("verbose").zapLevel())
}
