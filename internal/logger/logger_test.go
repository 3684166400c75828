package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	logger := New("warn", "production")

	assert.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestNew_DevelopmentUsesTint(t *testing.T) {
	logger := New("debug", "development")

	assert.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	_, isJSON := logger.Handler().(*slog.JSONHandler)
	assert.False(t, isJSON)
}

func TestNewDevelopmentHandler_WritesHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewDevelopmentHandler(&buf, slog.LevelInfo))

	logger.Info("voicemail recorded", slog.String("source", "smtp"))

	out := buf.String()
	assert.Contains(t, out, "voicemail recorded")
	assert.Contains(t, out, "source")
	assert.Contains(t, out, "smtp")
	assert.NotContains(t, out, "{")
}
