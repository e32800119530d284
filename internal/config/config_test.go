package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3002", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 10*time.Second, cfg.HealthTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.Retry.Total)
	assert.Equal(t, time.Second, cfg.Retry.BackoffFactor)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("REVIEW_BASE_URL", "http://127.0.0.1:4000")
	t.Setenv("REVIEW_TIMEOUT", "5s")
	t.Setenv("REVIEW_RETRY_TOTAL", "5")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:4000", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retry.Total)
}

func TestLoadFlagBeatsEnvironmentAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://file:1\nlog_level: debug\nretry:\n  backoff_factor: 2s\n"), 0o644))
	t.Setenv("REVIEW_BASE_URL", "http://env:2")

	cfg, err := Load(newFlags(t, "--config", path, "--base-url", "http://flag:3"))
	require.NoError(t, err)

	assert.Equal(t, "http://flag:3", cfg.BaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.Retry.BackoffFactor)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "none.yaml")))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{BaseURL: "http://localhost:3002", Timeout: time.Second, HealthTimeout: time.Second}
	require.NoError(t, base.Validate())

	bad := []func(c *Config){
		func(c *Config) { c.BaseURL = "ftp://localhost" },
		func(c *Config) { c.BaseURL = "http://" },
		func(c *Config) { c.Timeout = 0 },
		func(c *Config) { c.HealthTimeout = -time.Second },
		func(c *Config) { c.Retry.Total = -1 },
	}
	for i, mutate := range bad {
		c := base
		mutate(&c)
		assert.Error(t, c.Validate(), "case %d", i)
	}
}
