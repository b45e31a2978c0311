// Package sqlite persists slots in a single SQLite table using the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/persistence"
)

// Slot implements persistence.Slot on SQLite
type Slot struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// New opens (and creates if needed) the database at path
func New(ctx context.Context, path string) (*Slot, error) {
	if path == "" {
		path = "agentregistry.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; SQLite serializes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS slots (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create slots table: %w", err)
	}

	return &Slot{db: db, path: path, now: time.Now}, nil
}

// Load reads the payload stored under key
func (s *Slot) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM slots WHERE key = ?`, key).Scan(&payload)
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
		`INSERT INTO slots(key, payload, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, data, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert slot %s: %w", key, err)
	}
	return nil
}

func (s *Slot) Driver() persistence.Driver { return persistence.DriverSQLite }

// Path returns the database file path
func (s *Slot) Path() string { return s.path }

func (s *Slot) Close() error { return s.db.Close() }
