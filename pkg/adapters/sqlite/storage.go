// Package sqlite implements core.Storage on a single-table SQLite database
// using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	_ "modernc.org/sqlite"

	"github.com/aretw0/syllabus/pkg/core"
)

// DefaultFilename is the database file created inside the data directory.
const DefaultFilename = "syllabus.db"

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// Config holds the configuration for the SQLite storage.
type Config struct {
	Path     string // directory, or a file path ending in .db
	ReadOnly bool
	Logger   *slog.Logger
}

// Storage is a core.Storage backed by a kv table.
type Storage struct {
	config Config
	file   string
	db     *sql.DB
}

// NewStorage returns an unopened Storage. Initialize opens the database.
func NewStorage(config Config) *Storage {
	file := config.Path
	if filepath.Ext(file) != ".db" {
		file = filepath.Join(config.Path, DefaultFilename)
	}
	return &Storage{config: config, file: file}
}

// Initialize opens the database and creates the kv table.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if !s.config.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(s.file), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.file)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.db = db
	if s.config.Logger != nil {
		s.config.Logger.Debug("sqlite storage opened", "file", s.file)
	}
	return nil
}

// Load returns the value stored under key.
func (s *Storage) Load(ctx context.Context, key string) ([]byte, error) {
	if err := core.ValidateKey(key); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, nil
}

// Save upserts the value for key.
func (s *Storage) Save(ctx context.Context, key string, data []byte) error {
	if err := core.ValidateKey(key); err != nil {
		return err
	}
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. An absent key is not an error.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if err := core.ValidateKey(key); err != nil {
		return err
	}
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys matching a doublestar pattern, sorted.
func (s *Storage) Keys(ctx context.Context, pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern: %q", pattern)
	}
	rows, err := s.db.QueryContext(ctx, "SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		if pattern != "" {
			if ok, _ := doublestar.Match(pattern, k); !ok {
				continue
			}
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	return map[string]any{
		"file":      s.file,
		"open":      s.db != nil,
		"read_only": s.config.ReadOnly,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "sqlite-storage"
}

var (
	_ core.Storage = (*Storage)(nil)
	_ core.Lister  = (*Storage)(nil)
	_ core.Closer  = (*Storage)(nil)
)
