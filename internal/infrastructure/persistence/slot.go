// Package persistence defines the durable key-value slot the record store
// snapshots into, and opens the configured backend.
//
// Drivers:
//   - memory: process-local map, used in tests and ephemeral runs
//   - file: one file per key under a directory, optionally zstd-compressed
//   - sqlite: a single slots table in a pure-Go SQLite database
//   - postgres: the same table in PostgreSQL through pgx
//   - s3: one object per key in an S3-compatible bucket
//
// Every driver is last-write-wins per key. Load returns ErrNotFound when the
// key has never been written.
package persistence

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when the key holds no value
var ErrNotFound = errors.New("persistence: slot not found")

// Driver names a slot backend
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverS3       Driver = "s3"
)

// Slot is a durable key-value store holding opaque payloads
type Slot interface {
	// Load returns the payload stored under key or ErrNotFound
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the payload stored under key
	Save(ctx context.Context, key string, data []byte) error
	// Driver reports the backend name, used for logs and metrics
	Driver() Driver
	Close() error
}
