// Package config provides 12-factor configuration for the agent registry.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override individual values for development.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting
//   - Store: Persistence driver, slot key and seed directory
//   - Query: Cache TTL and size, page size bounds, invalidate-on-write
//   - Ledger: Simulated or HTTP gateway
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - STORE_DRIVER, STORE_SLOT_KEY, STORE_FILE_DIR, STORE_COMPRESS, STORE_SEED_DIR
//   - STORE_SQLITE_PATH, STORE_POSTGRES_DSN
//   - STORE_S3_BUCKET, STORE_S3_REGION, STORE_S3_ENDPOINT, STORE_S3_PREFIX, STORE_S3_PATH_STYLE
//   - QUERY_CACHE_TTL, QUERY_CACHE_SIZE, QUERY_DEFAULT_PAGE_SIZE, QUERY_MAX_PAGE_SIZE
//   - QUERY_INVALIDATE_ON_WRITE
//   - LEDGER_MODE, LEDGER_ENDPOINT, LEDGER_NETWORK_ID, LEDGER_TIMEOUT, LEDGER_API_TOKEN
package config
