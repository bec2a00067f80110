package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestVerbosityToLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{-1, zapcore.WarnLevel},
		{VerbosityUser, zapcore.WarnLevel},
		{VerbosityInfo, zapcore.InfoLevel},
		{VerbosityDebug, zapcore.DebugLevel},
		{7, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerbosityToLevel(tt.verbosity), "verbosity %d", tt.verbosity)
	}
}

func TestInitialize(t *testing.T) {
	prev := Logger
	defer func() { Logger = prev; JSONOutput = false }()

	for _, jsonOut := range []bool{true, false} {
		Logger = nil
		require.NoError(t, Initialize(VerbosityInfo, jsonOut))
		assert.NotNil(t, Logger)
		assert.Equal(t, jsonOut, JSONOutput)
	}
}

func TestUseObserver(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Use(zap.New(core))
	defer restore()

	Debugw("engine metrics", "invocations", 3)
	Warnw("unknown parameter ignored", "key", "max-foo")

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "engine metrics", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()["invocations"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestEnabled(t *testing.T) {
	assert.False(t, Enabled(zapcore.ErrorLevel), "no-op logger")

	core, _ := observer.New(zapcore.WarnLevel)
	restore := Use(zap.New(core))
	defer restore()
	assert.True(t, Enabled(zapcore.WarnLevel))
	assert.False(t, Enabled(zapcore.InfoLevel))
}
