// Package local implements the fallback blob store as an embedded
// SQLite database. It is used only when no remote store is configured;
// the two persistence paths are mutually exclusive per run.
package local

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Store is a key-value blob store backed by a single SQLite table.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates or opens the fallback database at path. The parent
// directory is created if needed, and WAL mode is enabled so a
// dashboard reader never blocks a save.
//
// The caller MUST call Close() when done.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create fallback directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fallback store: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping fallback store: %w", err)
	}

	s := &Store{conn: conn, path: path}

	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		blob TEXT NOT NULL
	)`
	if _, err := s.conn.Exec(schema); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to initialize fallback schema: %w", err)
	}

	return s, nil
}

// Close closes the store.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close fallback store: %w", err)
	}
	s.conn = nil
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the blob stored under key, or ok=false if absent.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var blob string
	err := s.conn.QueryRow("SELECT blob FROM kv WHERE key = ?", key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return []byte(blob), true, nil
}

// Set overwrites the blob stored under key.
func (s *Store) Set(key string, blob []byte) error {
	query := `
	INSERT INTO kv (key, blob) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET blob = excluded.blob`
	if _, err := s.conn.Exec(query, key, string(blob)); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes key if present. Idempotent.
func (s *Store) Delete(key string) error {
	if _, err := s.conn.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
