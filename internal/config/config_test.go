package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults without a config file", func(t *testing.T) {
		// Given: no config file and no overrides
		t.Setenv("PORT", "")
		require.NoError(t, os.Unsetenv("PORT"))

		// When: loading the config
		conf, err := Load(filepath.Join(t.TempDir(), "config.yml"))

		// Then: defaults apply
		require.NoError(t, err)
		assert.Equal(t, 3000, conf.Port)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, 256, conf.WebSocket.SendBuffer)
		assert.Equal(t, int64(4096), conf.WebSocket.MaxMessageSize)
	})

	t.Run("PORT from the environment", func(t *testing.T) {
		t.Setenv("PORT", "8081")

		conf, err := Load(filepath.Join(t.TempDir(), "config.yml"))

		require.NoError(t, err)
		assert.Equal(t, 8081, conf.Port)
	})

	t.Run("Values from config.yml", func(t *testing.T) {
		// Given: a config file
		t.Setenv("PORT", "")
		require.NoError(t, os.Unsetenv("PORT"))
		path := filepath.Join(t.TempDir(), "config.yml")
		content := "log-level: debug\nport: 9000\nwebsocket:\n  send-buffer: 8\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// When: loading it
		conf, err := Load(path)

		// Then: file values are used and the rest falls back to defaults
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, 9000, conf.Port)
		assert.Equal(t, 8, conf.WebSocket.SendBuffer)
		assert.Equal(t, int64(4096), conf.WebSocket.MaxMessageSize)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("port: 9000\n"), 0o600))
		t.Setenv("PORT", "7000")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, 7000, conf.Port)
	})

	t.Run("Non-numeric PORT is an error", func(t *testing.T) {
		// Given: a PORT that is not a number
		t.Setenv("PORT", "http")

		// When: loading the config
		_, err := Load(filepath.Join(t.TempDir(), "config.yml"))

		// Then: it is refused
		require.Error(t, err)
	})

	t.Run("Broken file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("port: [\n"), 0o600))

		_, err := Load(path)

		require.Error(t, err)
	})
}
