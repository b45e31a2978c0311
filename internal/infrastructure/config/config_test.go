package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Store config
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, "agent-registry:snapshot", cfg.Store.SlotKey)

	// Query config
	assert.Equal(t, 5*time.Minute, cfg.Query.CacheTTL)
	assert.False(t, cfg.Query.InvalidateOnWrite)

	// Ledger config
	assert.Equal(t, "simulated", cfg.Ledger.Mode)

	require.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                      "9000",
		"HOST":                      "127.0.0.1",
		"LOG_LEVEL":                 "debug",
		"LOG_DEV":                   "true",
		"RATE_LIMIT_RPS":            "500",
		"RATE_LIMIT_BURST":          "1000",
		"RATE_LIMIT_ENABLED":        "false",
		"STORE_DRIVER":              "s3",
		"STORE_S3_BUCKET":           "registry",
		"STORE_S3_PATH_STYLE":       "true",
		"STORE_SEED_DIR":            "/etc/agents",
		"QUERY_CACHE_TTL":           "30s",
		"QUERY_CACHE_SIZE":          "64",
		"QUERY_INVALIDATE_ON_WRITE": "true",
		"LEDGER_MODE":               "http",
		"LEDGER_ENDPOINT":           "https://ledger.example.com",
		"LEDGER_TIMEOUT":            "3s",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "s3", cfg.Store.Driver)
	assert.Equal(t, "registry", cfg.Store.S3Bucket)
	assert.True(t, cfg.Store.S3PathStyle)
	assert.Equal(t, "/etc/agents", cfg.Store.SeedDir)
	assert.Equal(t, 30*time.Second, cfg.Query.CacheTTL)
	assert.Equal(t, 64, cfg.Query.CacheSize)
	assert.True(t, cfg.Query.InvalidateOnWrite)
	assert.Equal(t, "http", cfg.Ledger.Mode)
	assert.Equal(t, "https://ledger.example.com", cfg.Ledger.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Ledger.Timeout)
}

func TestLoadRejectsInvalidCombinations(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "redis"}},
		{"postgres without dsn", map[string]string{"STORE_DRIVER": "postgres"}},
		{"s3 without bucket", map[string]string{"STORE_DRIVER": "s3"}},
		{"http ledger without endpoint", map[string]string{"LEDGER_MODE": "http"}},
		{"unknown ledger mode", map[string]string{"LEDGER_MODE": "mainnet"}},
		{"default above max", map[string]string{"QUERY_DEFAULT_PAGE_SIZE": "200"}},
		{"malformed duration", map[string]string{"QUERY_CACHE_TTL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)

			cfg := LoadOrDefault()
			assert.Equal(t, Default(), cfg)
		})
	}
}
