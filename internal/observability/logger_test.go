package observability_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/nucleus-tools-mcp/internal/observability"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		got, err := observability.ParseLevel(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	_, err := observability.ParseLevel("verbose")
	require.ErrorIs(t, err, observability.ErrUnknownLevel)
}

func TestNewLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger, err := observability.NewLogger(&buf, "info", "json")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("segment updated", slog.Int("start", 4))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "segment updated", rec["msg"])
	assert.Equal(t, observability.ServiceName, rec["service"])
	assert.InDelta(t, 4, rec["start"], 0)
}

func TestNewLogger_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger, err := observability.NewLogger(&buf, "debug", "text")
	require.NoError(t, err)

	logger.Debug("tracing border")
	assert.Contains(t, buf.String(), "msg=\"tracing border\"")
	assert.Contains(t, buf.String(), "service="+observability.ServiceName)

	_, err = observability.NewLogger(&buf, "loud", "text")
	require.ErrorIs(t, err, observability.ErrUnknownLevel)
}
