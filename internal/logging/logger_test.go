package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestInitWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn")
	defer Init("info")

	Info("hidden", "part", "x")
	Warn("invocation never fired", "invocation", "or[0]")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "invocation never fired")
	assert.Contains(t, out, "invocation=or[0]")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "debug")
	defer Init("info")

	With("component", "not").Debug("resolved")
	assert.Contains(t, buf.String(), "component=not")
}
