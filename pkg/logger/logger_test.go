package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestWithContextAddsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	prev := globalLogger
	globalLogger = slog.New(slog.NewJSONHandler(&buf, nil))
	t.Cleanup(func() { globalLogger = prev })

	ctx := WithRequest(context.Background(), "req-1", "trace-1")
	Info(ctx, "hello", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "trace-1", line["trace_id"])
	assert.Equal(t, "v", line["k"])
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestWithContextWithoutFields(t *testing.T) {
	assert.Equal(t, Get(), WithContext(context.Background()))
	assert.Equal(t, "", RequestID(context.Background()))
}
