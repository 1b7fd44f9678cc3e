package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/postcraft/internal/observability"
)

func TestLoggerFromContextAddsIDs(t *testing.T) {
	var buf bytes.Buffer
	observability.Configure(&buf, "debug")
	t.Cleanup(func() { observability.Configure(os.Stdout, "info") })

	ctx := observability.WithRequestID(context.Background(), "req-1")
	ctx = observability.WithSessionID(ctx, "sess-1")
	observability.LoggerFromContext(ctx).Debug("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "sess-1", line["session_id"])
	assert.Equal(t, "hello", line["msg"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, observability.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, observability.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, observability.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, observability.ParseLevel(""))
}

func TestWithFieldsAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	observability.Configure(&buf, "info")
	t.Cleanup(func() { observability.Configure(os.Stdout, "info") })

	observability.WithFields("mode", "local", "backend", "sqlite").Info("storage ready")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "local", line["mode"])
	assert.Equal(t, "sqlite", line["backend"])
}
