package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8100", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Equal(t, "/tmp/halcyon-storage", cfg.Storage.Path)
	assert.Equal(t, "default", cfg.Storage.AutosaveName)

	// Recognizer contract values.
	assert.Equal(t, int64(300), cfg.Input.TapMaxDuration)
	assert.Equal(t, 10, cfg.Input.TapMaxMovement)
	assert.Equal(t, 10, cfg.Input.DragThreshold)
	assert.Equal(t, int64(500), cfg.Input.SwipeMaxDuration)
	assert.Equal(t, 50, cfg.Input.SwipeMinDistance)
	assert.Equal(t, 0.1, cfg.Input.SwipeMinVelocity)
	assert.Equal(t, int64(500), cfg.Input.LongPressDelay)
	assert.Equal(t, 10, cfg.Input.RecentEvents)
	assert.Equal(t, 100, cfg.Input.HistoryLimit)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8100", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	t.Setenv("HALCYON_PORT", "9000")
	t.Setenv("HALCYON_HOST", "127.0.0.1")
	t.Setenv("HALCYON_LOG_LEVEL", "debug")
	t.Setenv("HALCYON_LOG_DEV", "true")
	t.Setenv("HALCYON_RATE_LIMIT_RPS", "500")
	t.Setenv("HALCYON_RATE_LIMIT_BURST", "1000")
	t.Setenv("HALCYON_RATE_LIMIT_ENABLED", "false")
	t.Setenv("HALCYON_INPUT_TAP_MAX_DURATION", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, int64(250), cfg.Input.TapMaxDuration)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("HALCYON_PORT", "3000")
	t.Setenv("HALCYON_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Defaults still apply elsewhere.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10, cfg.Input.DragThreshold)
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halcyon.toml")
	content := `
[server]
port = "7000"

[input]
swipe_min_distance = 75
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, 75, cfg.Input.SwipeMinDistance)

	// Untouched sections keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, int64(500), cfg.Input.LongPressDelay)
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halcyon.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = \"7000\"\n"), 0o644))

	t.Setenv("HALCYON_PORT", "7100")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7100", cfg.Server.Port)
}

func TestFileValuesSurviveUnsetEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halcyon.toml")
	content := `
[server]
port = "7000"

[rate_limit]
enabled = false

[input]
swipe_min_distance = 75
long_press_delay = 450
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// An env var holding the built-in default must still override the
	// file, while absent vars leave file values alone.
	t.Setenv("HALCYON_INPUT_LONG_PRESS_DELAY", "500")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 75, cfg.Input.SwipeMinDistance)
	assert.Equal(t, int64(500), cfg.Input.LongPressDelay)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
