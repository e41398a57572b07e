package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, []string{"02109", "02119"}, cfg.Harvest.Locations)
	assert.Equal(t, []int{2022, 2023}, cfg.Harvest.Years)
	assert.Equal(t, 8*time.Second, cfg.Harvest.PacingInterval)
	assert.Equal(t, 10*time.Second, cfg.AirNow.RequestTimeout)
	assert.Equal(t, 25, cfg.AirNow.Distance)
	assert.Equal(t, 3, cfg.Retry.ConnectRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.BackoffBase)
	assert.Equal(t, "aqi_data.db", cfg.Storage.DatabasePath)
	assert.Zero(t, cfg.RateLimit.RequestsPerHour, "hourly cap is opt-in")
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AQISCRAPER_API_KEY", "secret")
	t.Setenv("AQISCRAPER_LOCATIONS", "10001, 94103,")
	t.Setenv("AQISCRAPER_YEARS", "2021,2019")
	t.Setenv("AQISCRAPER_PACING_INTERVAL", "2s")
	t.Setenv("AQISCRAPER_REQUESTS_PER_HOUR", "0")
	t.Setenv("AQISCRAPER_DATABASE_PATH", "/tmp/aqi.db")
	t.Setenv("AQISCRAPER_LOG_FILE", "")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "secret", cfg.AirNow.APIKey)
	assert.Equal(t, []string{"10001", "94103"}, cfg.Harvest.Locations)
	assert.Equal(t, []int{2021, 2019}, cfg.Harvest.Years)
	assert.Equal(t, 2*time.Second, cfg.Harvest.PacingInterval)
	assert.Equal(t, 0, cfg.RateLimit.RequestsPerHour)
	assert.Equal(t, "/tmp/aqi.db", cfg.Storage.DatabasePath)
	assert.Empty(t, cfg.Logging.File)
}

func TestLoadFromEnvRejectsMalformedValues(t *testing.T) {
	t.Setenv("AQISCRAPER_YEARS", "2022,twenty")
	t.Setenv("AQISCRAPER_REQUEST_TIMEOUT", "ten")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AQISCRAPER_YEARS")
	assert.Contains(t, err.Error(), "AQISCRAPER_REQUEST_TIMEOUT")
	assert.Equal(t, []int{2022, 2023}, cfg.Harvest.Years)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
airnow:
  request_timeout: 15s
harvest:
  locations: ["60601"]
  years: [2023, 2021]
  pacing_interval: 1m
retry:
  connect_retries: 5
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, 15*time.Second, cfg.AirNow.RequestTimeout)
	assert.Equal(t, []string{"60601"}, cfg.Harvest.Locations)
	assert.Equal(t, []int{2023, 2021}, cfg.Harvest.Years)
	assert.Equal(t, time.Minute, cfg.Harvest.PacingInterval)
	assert.Equal(t, 5, cfg.Retry.ConnectRetries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched sections keep their defaults
	assert.Equal(t, 25, cfg.AirNow.Distance)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("harvest: [unclosed"), 0644))
	assert.Error(t, cfg.LoadFromFile(bad))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"relative base url", func(c *Config) { c.AirNow.BaseURL = "airnow/historical" }, "not an absolute URL"},
		{"no locations", func(c *Config) { c.Harvest.Locations = nil }, "at least one location"},
		{"duplicate location", func(c *Config) { c.Harvest.Locations = []string{"02109", "02109"} }, "listed twice"},
		{"no years", func(c *Config) { c.Harvest.Years = nil }, "at least one year"},
		{"duplicate year", func(c *Config) { c.Harvest.Years = []int{2022, 2022} }, "year 2022 is listed twice"},
		{"csv format", func(c *Config) { c.AirNow.Format = "text/csv" }, "only application/json"},
		{"zero timeout", func(c *Config) { c.AirNow.RequestTimeout = 0 }, "request timeout"},
		{"negative retries", func(c *Config) { c.Retry.ConnectRetries = -1 }, "connect retries"},
		{"shrinking backoff", func(c *Config) { c.Retry.BackoffMultiplier = 0.5 }, "backoff multiplier"},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }, "invalid log level"},
		{"no database", func(c *Config) { c.Storage.DatabasePath = "" }, "database path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	path := filepath.Join(t.TempDir(), "aqiscraper.yaml")
	require.NoError(t, os.WriteFile(path, []byte("harvest:\n  years: [2020]\n"), 0644))
	require.NoError(t, os.WriteFile(".env", []byte("AQISCRAPER_LOCATIONS=73301\nAQISCRAPER_LOG_LEVEL=warn\n"), 0644))

	t.Setenv("AQISCRAPER_CONFIG", path)
	t.Setenv("AQISCRAPER_LOG_LEVEL", "error")
	t.Cleanup(func() { os.Unsetenv("AQISCRAPER_LOCATIONS") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int{2020}, cfg.Harvest.Years)
	assert.Equal(t, []string{"73301"}, cfg.Harvest.Locations)
	// real environment wins over .env
	assert.Equal(t, "error", cfg.Logging.Level)
}
