package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		"INFO":     slog.LevelInfo,
		"warning":  slog.LevelWarn,
		"error":    slog.LevelError,
		"critical": LevelCritical,
		"":         slog.LevelInfo,
		"bogus":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestSetupWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "automation.log")

	logger, closeFn, err := Setup(Options{Level: "info", Format: "json", File: logFile, Stdout: &console})
	require.NoError(t, err)

	NewSlogObserver(logger).Critical("write failed", "path", "out.xlsx")
	require.NoError(t, closeFn())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(console.Bytes(), &entry))
	assert.Equal(t, "CRITICAL", entry["level"])
	assert.Equal(t, "write failed", entry["msg"])
	assert.Equal(t, "out.xlsx", entry["path"])

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, console.String(), string(data))
}

func TestSetupFiltersByLevel(t *testing.T) {
	var console bytes.Buffer
	logger, _, err := Setup(Options{Level: "warn", Stdout: &console})
	require.NoError(t, err)

	obs := NewSlogObserver(logger).With("run_id", "abc")
	obs.Info("hidden")
	obs.Warn("shown")

	out := console.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "run_id=abc")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	rec.Info("loaded", "rows", 3)
	rec.Warn("missing column", "column", "date", "table", "a.csv")
	rec.Error("load failed")
	rec.Critical("write failed")

	events := rec.Events()
	require.Len(t, events, 4)
	assert.Equal(t, "missing column", events[1].Msg)

	col, ok := events[1].Attr("column")
	assert.True(t, ok)
	assert.Equal(t, "date", col)

	_, ok = events[0].Attr("column")
	assert.False(t, ok)

	assert.Len(t, rec.AtLevel(slog.LevelError), 1)
	assert.Len(t, rec.AtLevel(LevelCritical), 1)
}
