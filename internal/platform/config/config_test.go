package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_DefaultValues tests that hardcoded defaults are applied correctly.
// This test doesn't depend on YAML files - it only tests the defaults() function.
func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "quotesync", cfg.App.Name)
	assert.Equal(t, "dev", cfg.App.Version)
	assert.Equal(t, "local", cfg.App.Environment)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DefaultClientRetryMaxAttempts, cfg.Client.Retry.MaxAttempts)
	assert.Equal(t, DefaultClientCircuitMaxFailures, cfg.Client.CircuitBreaker.MaxFailures)

	require.NoError(t, cfg.Validate(), "defaults must be a valid configuration")
}

// TestLoad_EnvVarOverrides tests that environment variables override defaults.
func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_LOG_LEVEL", "warn")
	t.Setenv("APP_SYNC_PUSH_ENABLED", "true")
	t.Setenv("APP_SYNC_INTERVAL", "1m")
	t.Setenv("APP_REMOTE_BASE_URL", "http://localhost:3000")
	t.Setenv("APP_CLIENT_RETRY__MAX_ATTEMPTS", "5")
	t.Setenv("APP_LOG_FILE__ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Sync.PushEnabled)
	assert.Equal(t, time.Minute, cfg.Sync.Interval)
	assert.Equal(t, "http://localhost:3000", cfg.Remote.BaseURL)
	assert.Equal(t, 5, cfg.Client.Retry.MaxAttempts)
	assert.True(t, cfg.Log.File.Enabled)
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"APP_SERVER_PORT":                "server.port",
		"APP_SYNC_PUSH_ENABLED":          "sync.push_enabled",
		"APP_CLIENT_RETRY__MAX_ATTEMPTS": "client.retry.max_attempts",
		"APP_LOG_FILE__MAX_SIZE":         "log.file.max_size",
		"APP_STORAGE":                    "storage",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, envKey(in))
		})
	}
}

// TestLoad_DurationParsing tests that duration strings are parsed correctly.
func TestLoad_DurationParsing(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Client.Retry.InitialInterval)
	assert.Equal(t, 10*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Sync.Interval)
}

// TestLoad_NonExistentProfile tests that a missing profile file doesn't cause errors.
func TestLoad_NonExistentProfile(t *testing.T) {
	cfg, err := Load("nonexistent")
	require.NoError(t, err)

	assert.Equal(t, "quotesync", cfg.App.Name)
}

// TestLoad_ProfileFiles tests that base and profile files layer in order.
func TestLoad_ProfileFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "base.yaml"), []byte(`
storage:
  driver: sqlite
  path: ./data/quotes.db
sync:
  interval: 45s
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "test.yaml"), []byte(`
app:
  environment: test
sync:
  interval: 5s
`), 0o600))

	t.Chdir(dir)

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "./data/quotes.db", cfg.Storage.Path)
	assert.Equal(t, "test", cfg.App.Environment)
	assert.Equal(t, 5*time.Second, cfg.Sync.Interval)
}

// TestLoad_MalformedFile tests that an unparseable config file is an error.
func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "base.yaml"), []byte("server: [unclosed"), 0o600))

	t.Chdir(dir)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading base config")
}

// TestLoad_LogFileDefaults tests that log file defaults are set correctly.
func TestLoad_LogFileDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Log.File.Enabled)
	assert.Equal(t, "./logs/app.log", cfg.Log.File.Path)
	assert.Equal(t, DefaultLogFileMaxSizeMB, cfg.Log.File.MaxSizeMB)
	assert.Equal(t, DefaultLogFileMaxBackups, cfg.Log.File.MaxBackups)
	assert.Equal(t, DefaultLogFileMaxAgeDays, cfg.Log.File.MaxAgeDays)
	assert.True(t, cfg.Log.File.Compress)
}

// TestLoad_SyncDefaults tests the remote, storage, sync and notify defaults.
func TestLoad_SyncDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "quote-server", cfg.Remote.Name)
	assert.Equal(t, "https://jsonplaceholder.typicode.com", cfg.Remote.BaseURL)
	assert.Equal(t, "/posts", cfg.Remote.FetchPath)
	assert.Equal(t, "Server", cfg.Remote.DefaultCategory)
	assert.Equal(t, DefaultRemoteMaxFetch, cfg.Remote.MaxFetch)

	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "quotes", cfg.Storage.Key)

	assert.True(t, cfg.Sync.Enabled)
	assert.True(t, cfg.Sync.RunOnStart)
	assert.False(t, cfg.Sync.PushEnabled)

	assert.Equal(t, DefaultNotifyHistorySize, cfg.Notify.HistorySize)
}

// TestDefaults tests that the defaults map contains expected values.
func TestDefaults(t *testing.T) {
	d := defaults()

	assert.Equal(t, "quotesync", d["app.name"])
	assert.Equal(t, DefaultServerPort, d["server.port"])
	assert.Equal(t, "30s", d["sync.interval"])
	assert.Equal(t, "file", d["storage.driver"])
}
