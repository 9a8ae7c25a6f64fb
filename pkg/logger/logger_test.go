package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Out: &buf})
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Str("input", "wait2decode.nav").Msg("Progress: 50%")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Progress: 50%", entry["message"])
	assert.Equal(t, "wait2decode.nav", entry["input"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_PrettyPrint(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "debug", PrettyPrint: true, Out: &buf})
	require.NoError(t, err)

	l.Debug().Msg("starting decode")

	assert.Contains(t, buf.String(), "DBG")
	assert.Contains(t, buf.String(), "starting decode")
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navcodec.log")
	var buf bytes.Buffer

	l, err := New(Config{Level: "info", FileName: path, Out: &buf})
	require.NoError(t, err)

	l.Error().Msg("operation failed")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "operation failed")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Out: &buf})
	require.NoError(t, err)

	l.SetLevel("debug")
	l.Debug().Msg("verbose")

	assert.Contains(t, buf.String(), "verbose")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Out: &buf})
	require.NoError(t, err)

	child := l.With(func(c zerolog.Context) zerolog.Context {
		return c.Str("run_id", "abc")
	})
	child.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"run_id":"abc"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("disabled"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info().Msg("discarded")
	assert.NoError(t, l.Close())
}
