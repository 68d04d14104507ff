package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Config{Name: "mealplan", Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Info("scaling finished")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"scaling finished"`)
	assert.Contains(t, string(data), `"logger":"mealplan"`)
}

func TestNewFallsBackToInfoLevel(t *testing.T) {
	log, err := New(Config{Level: "not-a-level", Format: "console"})
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}
