package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence/file"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence/memory"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence/postgres"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence/s3"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence/sqlite"
)

// OpenSlot opens the persistence backend named by cfg.Driver
func OpenSlot(ctx context.Context, cfg config.StoreConfig) (persistence.Slot, error) {
	switch persistence.Driver(cfg.Driver) {
	case persistence.DriverMemory:
		return memory.New(), nil
	case persistence.DriverFile:
		return file.New(cfg.FileDir, file.WithCompression(cfg.Compress))
	case persistence.DriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		return sqlite.New(ctx, cfg.SQLitePath)
	case persistence.DriverPostgres:
		return postgres.New(ctx, cfg.PostgresDSN)
	case persistence.DriverS3:
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
			PathStyle: cfg.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
