package logger

import (
	"context"
	"errors"
	"testing"

	"tradingengine/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var _ ports.Logger = (*ZapLogger)(nil)

func TestZapLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))
	ctx := context.Background()

	l.Debug(ctx, "debug message")
	l.Info(ctx, "info message", map[string]interface{}{"symbol": "BTCUSDT", "bars": 42})
	l.Warn(ctx, "warn message", nil)
	l.Error(ctx, errors.New("boom"), "error message", map[string]interface{}{"stage": "risk"})

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "info message", entries[1].Message)
	assert.Equal(t, "BTCUSDT", entries[1].ContextMap()["symbol"])
	assert.EqualValues(t, 42, entries[1].ContextMap()["bars"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Empty(t, entries[2].Context)

	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
	assert.Equal(t, "risk", entries[3].ContextMap()["stage"])
}

func TestZapLogger_LevelFilter(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := NewFromZap(zap.New(core))

	l.Debug(context.Background(), "hidden")
	l.Info(context.Background(), "hidden")
	l.Warn(context.Background(), "shown")

	assert.Equal(t, 1, logs.Len())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		l, err := New("debug", env)
		require.NoError(t, err, env)
		l.Info(context.Background(), "hello")
	}
	NewNop().Error(context.Background(), nil, "discarded")
}
