package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_LoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
upstream:
  api_key: from-file
  shape: supply
tracker:
  ids: [bitcoin, ethereum]
  currency: eur
  throttle_interval: 30m
mirror:
  backend: memory
  ttl: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("TICKER_UPSTREAM_API_KEY", "from-env")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_OUTPUT", "stderr")

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Upstream.APIKey)
	assert.Equal(t, "supply", cfg.Upstream.Shape)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, cfg.Tracker.IDs)
	assert.Equal(t, "eur", cfg.Tracker.Currency)
	assert.Equal(t, 30*time.Minute, cfg.Tracker.ThrottleInterval)
	assert.Equal(t, time.Minute, cfg.Tracker.PollInterval)
	assert.Equal(t, "memory", cfg.Mirror.Backend)
	assert.Equal(t, time.Hour, cfg.Mirror.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoader_TrackedIDsFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tracker:\n  ids: [BTC]\n"), 0o600))

	t.Setenv("TRACKED_IDS", " btc, eth ,,doge ")

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"btc", "eth", "doge"}, cfg.Tracker.IDs)
}

func TestLoader_RateLimitAndMockFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate_limit:\n  capacity: 10\n"), 0o600))

	t.Setenv("MOCK_MODE", "true")
	t.Setenv("RATE_LIMIT_REFILL_RATE", "5")

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Upstream.Mock)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.Capacity)
	assert.Equal(t, 5, cfg.RateLimit.RefillRate)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(" , "))
	assert.Equal(t, []string{"a", "b"}, SplitList("a, b"))
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("ENVIRONMENT", "")
	assert.Equal(t, "development", GetEnvironment())

	t.Setenv("ENVIRONMENT", "Production")
	assert.Equal(t, "production", GetEnvironment())
}
