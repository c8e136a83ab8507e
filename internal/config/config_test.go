package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "neuromirror.db", cfg.Database.Path)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.ModelName)
	assert.Empty(t, cfg.Gemini.APIKey)
	assert.Equal(t, "fer", cfg.Vision.Backend)
	assert.Equal(t, 30*time.Second, cfg.Vision.Timeout)
	assert.True(t, cfg.Maintenance.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":8080"
logger:
  level: debug
  json: false
database:
  path: /tmp/mirror.db
vision:
  backend: fer
  fer_url: http://fer:5001/classify
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.False(t, cfg.Logger.JSON)
	assert.Equal(t, "/tmp/mirror.db", cfg.Database.Path)
	assert.Equal(t, "http://fer:5001/classify", cfg.Vision.FERURL)
	// Untouched sections keep their defaults.
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.ModelName)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("NEUROMIRROR_SERVER_ADDR", ":9090")
	t.Setenv("NEUROMIRROR_GEMINI_API_KEY", "test-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "test-key", cfg.Gemini.APIKey)
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger:\n  level: loud\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidVisionBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vision:\n  backend: opencv\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [:::"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
