package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(level zerolog.Level) (*bytes.Buffer, *slog.Logger) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf).Level(level)
	return &buf, Slog(zl)
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestLevel(t *testing.T) {
	assert.Equal(t, zerolog.TraceLevel, Level(slog.LevelDebug-4))
	assert.Equal(t, zerolog.DebugLevel, Level(slog.LevelDebug))
	assert.Equal(t, zerolog.InfoLevel, Level(slog.LevelInfo))
	assert.Equal(t, zerolog.WarnLevel, Level(slog.LevelWarn))
	assert.Equal(t, zerolog.ErrorLevel, Level(slog.LevelError))
	assert.Equal(t, zerolog.ErrorLevel, Level(slog.LevelError+4))
}

func TestHandler_Levels(t *testing.T) {
	buf, logger := capture(zerolog.InfoLevel)
	logger.Debug("hidden")
	logger.Info("shown")
	logger.Warn("careful")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "shown", lines[0]["message"])
	assert.Equal(t, "warn", lines[1]["level"])
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestHandler_Attrs(t *testing.T) {
	buf, logger := capture(zerolog.DebugLevel)
	logger = logger.With("tree", "drawing").WithGroup("req")
	logger.Debug("databook: get",
		slog.Int("fields", 3),
		slog.Uint64("size", 42),
		slog.Bool("compressed", true),
		slog.Float64("ratio", 0.5),
		slog.Duration("took", 2*time.Millisecond),
		slog.Group("node", slog.String("kind", "node")),
		slog.Any("err", errors.New("boom")),
	)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	m := lines[0]
	assert.Equal(t, "debug", m["level"])
	assert.Equal(t, "databook: get", m["message"])
	assert.Equal(t, "drawing", m["tree"])
	assert.Equal(t, float64(3), m["req.fields"])
	assert.Equal(t, float64(42), m["req.size"])
	assert.Equal(t, true, m["req.compressed"])
	assert.Equal(t, 0.5, m["req.ratio"])
	assert.Contains(t, m, "req.took")
	assert.Equal(t, "node", m["req.node.kind"])
	assert.Equal(t, "boom", m["req.err"])
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel(" Debug ")
	assert.True(t, ok)
	assert.Equal(t, zerolog.DebugLevel, lvl)

	lvl, ok = ParseLevel("off")
	assert.True(t, ok)
	assert.Equal(t, zerolog.Disabled, lvl)

	_, ok = ParseLevel("")
	assert.False(t, ok)
	_, ok = ParseLevel("loud")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, zerolog.WarnLevel, true)
	logger.Info().Msg("quiet")
	logger.Warn().Str("tree", "t").Msg("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
	assert.Contains(t, out, "tree=t")
	assert.Contains(t, out, "app=databook")
}
