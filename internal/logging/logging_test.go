package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewLogger_JSONToStderr(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := newLogger(&buf, Options{Level: "info"})
	require.NoError(t, err)
	defer closer.Close()

	log.Debug().Msg("hidden")
	log.Info().Str("path", "car.jpg").Msg("loaded")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "loaded", entry["message"])
	assert.Equal(t, "car.jpg", entry["path"])
	assert.Equal(t, "car-spotter", entry["service"])
	assert.Contains(t, entry, "time")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, closer, err := newLogger(&bytes.Buffer{}, Options{Level: "verbose"})
	assert.Error(t, err)
	assert.NotNil(t, closer)
}

func TestNewLogger_TeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "car-spotter.log")

	var buf bytes.Buffer
	log, closer, err := newLogger(&buf, Options{File: path})
	require.NoError(t, err)

	log.Warn().Msg("no plate found")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "no plate found")
	assert.Contains(t, buf.String(), "no plate found")
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := newLogger(&buf, Options{Console: true})
	require.NoError(t, err)

	log.Info().Msg("ready")
	assert.Contains(t, buf.String(), "ready")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "console output should not be JSON")
}
