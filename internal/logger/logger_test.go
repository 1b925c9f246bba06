package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsNop(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	l.Log.Info("discarded")
}

func TestInit_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "Info", "WARN", "error"} {
		l := New()
		assert.NoError(t, l.Init(lvl, "stderr"), lvl)
	}

	assert.Error(t, New().Init("loud"))
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.log")
	l := New()
	require.NoError(t, l.Init("info", path))

	l.Log.Info("hello")
	l.Log.Debug("hidden")
	require.NoError(t, l.Log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"hello"`))
	assert.False(t, strings.Contains(string(data), "hidden"))
}
