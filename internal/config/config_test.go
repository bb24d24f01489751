package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/stockroom/internal/api"
	"github.com/felixgeelhaar/stockroom/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, "/", cfg.BaseURL)
	assert.Equal(t, api.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "text", cfg.Output)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "stockroom:", cfg.Storage.RedisPrefix)
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
api_url: https://inventory.example.com
timeout: 3s
log:
  level: debug
storage:
  backend: memory
`)
	t.Setenv("STOCKROOM_API_URL", "https://override.example.com")
	t.Setenv("STOCKROOM_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoad_DefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".stockroom"), 0o755))
	writeFile(t, filepath.Join(home, ".stockroom"), "config.yaml", "base_url: /app\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/app", cfg.BaseURL)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	writeFile(t, dir, ".env", "STOCKROOM_STORAGE_BACKEND=memory\n")
	t.Chdir(dir)
	t.Cleanup(func() { _ = os.Unsetenv("STOCKROOM_STORAGE_BACKEND") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var se *errors.StockroomError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errors.ErrCodeConfigReadFailed, se.Code)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing api url", func(c *Config) { c.APIURL = "" }, true},
		{"bad api url", func(c *Config) { c.APIURL = "not a url" }, true},
		{"relative base url", func(c *Config) { c.BaseURL = "app" }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"unknown output", func(c *Config) { c.Output = "xml" }, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "s3" }, true},
		{"redis without addr", func(c *Config) { c.Storage.Backend = "redis" }, true},
		{"redis with addr", func(c *Config) {
			c.Storage.Backend = "redis"
			c.Storage.RedisAddr = "localhost:6379"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var se *errors.StockroomError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, errors.ErrCodeConfigInvalid, se.Code)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.APIURL = "https://inventory.example.com"
	cfg.Timeout = 5 * time.Second
	cfg.Storage.RedisPassword = "hunter2"

	require.NoError(t, Save(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.APIURL, loaded.APIURL)
	assert.Equal(t, cfg.Timeout, loaded.Timeout)
}

func TestStorageOptions(t *testing.T) {
	s := StorageConfig{Backend: "redis", RedisAddr: "a:1", RedisDB: 2, RedisPrefix: "p:"}
	opts := s.Options()
	assert.Equal(t, "redis", opts.Backend)
	assert.Equal(t, "a:1", opts.RedisAddr)
	assert.Equal(t, 2, opts.RedisDB)
	assert.Equal(t, "p:", opts.RedisPrefix)
}
