package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstall(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	flush := install(&buf, Options{AppName: "Gallery"})
	flush()

	slog.Debug("hidden")
	slog.Info("image uploaded", "key", "1000-cat.png")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "image uploaded", entry["msg"])
	assert.Equal(t, "1000-cat.png", entry["key"])
	assert.Equal(t, "Gallery", entry["app"])
}

func TestInstallDevelopment(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	install(&buf, Options{Development: true})

	slog.Debug("session refreshed", "session_id", "s1")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "session_id=s1")
}
