// Package postgres persists slots in PostgreSQL through the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence"
)

const defaultDriver = "pgx"

var (
	openMu  sync.Mutex
	sqlOpen = sql.Open
)

const ddl = `CREATE TABLE IF NOT EXISTS slots (
	key TEXT PRIMARY KEY,
	payload BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Slot implements persistence.Slot on PostgreSQL
type Slot struct {
	db *sql.DB
}

// New connects to dsn and ensures the slots table exists
func New(ctx context.Context, dsn string) (*Slot, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn required")
	}

	openMu.Lock()
	open := sqlOpen
	openMu.Unlock()

	db, err := open(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure slots table: %w", err)
	}
	return &Slot{db: db}, nil
}

// Load reads the payload stored under key
func (s *Slot) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM slots WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select slot %s: %w", key, err)
	}
	return payload, nil
}

// Save upserts the payload stored under key
func (s *Slot) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots(key, payload, updated_at) VALUES($1, $2, now())
		 ON CONFLICT(key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		key, data)
	if err != nil {
		return fmt.Errorf("upsert slot %s: %w", key, err)
	}
	return nil
}

func (s *Slot) Driver() persistence.Driver { return persistence.DriverPostgres }

func (s *Slot) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sql.Open function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
