package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(model.LogConfig{Level: "chatty"}, false)
	require.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskboard.log")

	logger, err := New(model.LogConfig{Level: "info", File: path}, true)
	require.NoError(t, err)
	logger.Info("Opened task")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Opened task")
}

func TestNewWithoutFileIsSilent(t *testing.T) {
	logger, err := New(model.LogConfig{Level: "warn"}, true)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(0))
}
