package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Query     QueryConfig
	Ledger    LedgerConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StoreConfig selects the persistence slot and its parameters.
type StoreConfig struct {
	Driver      string `envconfig:"STORE_DRIVER" default:"file"`
	SlotKey     string `envconfig:"STORE_SLOT_KEY" default:"agent-registry:snapshot"`
	FileDir     string `envconfig:"STORE_FILE_DIR" default:"./data"`
	Compress    bool   `envconfig:"STORE_COMPRESS" default:"false"`
	SQLitePath  string `envconfig:"STORE_SQLITE_PATH" default:"./data/registry.db"`
	PostgresDSN string `envconfig:"STORE_POSTGRES_DSN"`
	S3Bucket    string `envconfig:"STORE_S3_BUCKET"`
	S3Region    string `envconfig:"STORE_S3_REGION" default:"us-east-1"`
	S3Endpoint  string `envconfig:"STORE_S3_ENDPOINT"`
	S3Prefix    string `envconfig:"STORE_S3_PREFIX"`
	S3PathStyle bool   `envconfig:"STORE_S3_PATH_STYLE" default:"false"`
	SeedDir     string `envconfig:"STORE_SEED_DIR"`
}

// QueryConfig holds query engine configuration.
type QueryConfig struct {
	CacheTTL          time.Duration `envconfig:"QUERY_CACHE_TTL" default:"5m"`
	CacheSize         int           `envconfig:"QUERY_CACHE_SIZE" default:"1024"`
	DefaultPageSize   int           `envconfig:"QUERY_DEFAULT_PAGE_SIZE" default:"20"`
	MaxPageSize       int           `envconfig:"QUERY_MAX_PAGE_SIZE" default:"100"`
	InvalidateOnWrite bool          `envconfig:"QUERY_INVALIDATE_ON_WRITE" default:"false"`
}

// LedgerConfig selects the ledger gateway.
type LedgerConfig struct {
	Mode      string        `envconfig:"LEDGER_MODE" default:"simulated"`
	Endpoint  string        `envconfig:"LEDGER_ENDPOINT"`
	NetworkID string        `envconfig:"LEDGER_NETWORK_ID" default:"agentos-sim"`
	Timeout   time.Duration `envconfig:"LEDGER_TIMEOUT" default:"10s"`
	APIToken  string        `envconfig:"LEDGER_API_TOKEN"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "file", "sqlite":
	case "postgres":
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("STORE_POSTGRES_DSN is required for the postgres driver")
		}
	case "s3":
		if c.Store.S3Bucket == "" {
			return fmt.Errorf("STORE_S3_BUCKET is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Ledger.Mode {
	case "simulated":
	case "http":
		if c.Ledger.Endpoint == "" {
			return fmt.Errorf("LEDGER_ENDPOINT is required in http mode")
		}
	default:
		return fmt.Errorf("unknown ledger mode %q", c.Ledger.Mode)
	}

	if c.Query.MaxPageSize < 1 || c.Query.DefaultPageSize < 1 {
		return fmt.Errorf("query page sizes must be positive")
	}
	if c.Query.DefaultPageSize > c.Query.MaxPageSize {
		return fmt.Errorf("QUERY_DEFAULT_PAGE_SIZE exceeds QUERY_MAX_PAGE_SIZE")
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Store: StoreConfig{
			Driver:     "file",
			SlotKey:    "agent-registry:snapshot",
			FileDir:    "./data",
			SQLitePath: "./data/registry.db",
			S3Region:   "us-east-1",
		},
		Query: QueryConfig{
			CacheTTL:        5 * time.Minute,
			CacheSize:       1024,
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Ledger: LedgerConfig{
			Mode:      "simulated",
			NetworkID: "agentos-sim",
			Timeout:   10 * time.Second,
		},
	}
}
