package pkg

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)

	for _, level := range []slog.Level{LevelTrace, slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		t.Run(level.String(), func(t *testing.T) {
			SetLogLevel(level)
			assert.Equal(t, level, GetLogLevel())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.in))
		})
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, nil)
	require.NotNil(t, logger)

	logger.Warn("test message")
	assert.Contains(t, buf.String(), `"msg":"test message"`)
}

func TestLogComponents(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	tests := []struct {
		name string
		log  func(Component, string, ...any)
	}{
		{"debug", LogDebug},
		{"info", LogInfo},
		{"warn", LogWarn},
		{"error", LogError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetLogger(NewLogger(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			tt.log(ComponentEngine, tt.name+" message", "key", "value")
			out := buf.String()
			assert.Contains(t, out, tt.name+" message")
			assert.Contains(t, out, "component=engine")
			assert.Contains(t, out, "key=value")
		})
	}
}

func TestSetLogFormat(t *testing.T) {
	original := Logger()
	defer SetLogger(original)
	level := GetLogLevel()
	defer SetLogLevel(level)
	SetLogLevel(slog.LevelInfo)

	var buf bytes.Buffer
	SetLogFormat(LogFormatJSON, &buf)
	LogInfo(ComponentPMA, "formatted")
	assert.Contains(t, buf.String(), `"component":"pma"`)

	buf.Reset()
	SetLogFormat(LogFormatText, &buf)
	LogInfo(ComponentPMA, "formatted")
	assert.Contains(t, buf.String(), "component=pma")
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	ComponentLogger(base, ComponentSim).Debug("tick")
	assert.Contains(t, buf.String(), "component=sim")
}
