package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteFile = "oembed.db"

const schema = `
CREATE TABLE IF NOT EXISTS embeds (
	key        TEXT PRIMARY KEY,
	html       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps entries in a single SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path and its parent directory.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Location returns the database file path.
func (s *SQLiteStore) Location() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get reads the entry for key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var html string
	err := s.db.QueryRowContext(ctx, `SELECT html FROM embeds WHERE key = ?`, key).Scan(&html)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache entry: %w", err)
	}
	return html, true, nil
}

// Put writes or overwrites the entry for key.
func (s *SQLiteStore) Put(ctx context.Context, key, html string) error {
	query := `
		INSERT INTO embeds (key, html, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE
		SET html = excluded.html,
		    updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, html, time.Now().Unix()); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM embeds WHERE key = ?`, key); err != nil {
		return fmt.Errorf("removing cache entry: %w", err)
	}
	return nil
}

// Len counts stored entries.
func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeds`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}
