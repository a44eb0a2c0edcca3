package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestSlogLogger_Levels(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		log   func(l *SlogLogger)
		level string
	}{
		{"debug", func(l *SlogLogger) { l.Debug(ctx, "msg") }, "DEBUG"},
		{"info", func(l *SlogLogger) { l.Info(ctx, "msg") }, "INFO"},
		{"warn", func(l *SlogLogger) { l.Warn(ctx, "msg") }, "WARN"},
		{"error", func(l *SlogLogger) { l.Error(ctx, "msg") }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newTestLogger()
			tt.log(l)
			m := decodeLine(t, buf)
			assert.Equal(t, tt.level, m["level"])
			assert.Equal(t, "msg", m["msg"])
		})
	}
}

func TestSlogLogger_WithAddsFields(t *testing.T) {
	l, buf := newTestLogger()

	child := l.With("component", "submissions")
	child.Info(context.Background(), "created", "id", "SUB_1")

	m := decodeLine(t, buf)
	assert.Equal(t, "submissions", m["component"])
	assert.Equal(t, "SUB_1", m["id"])
}
