// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLite is a Store persisted to a SQLite database, so cached answers
// survive process restarts. All backend errors are logged and degrade to
// a cache miss.
type SQLite struct {
	db  *sql.DB
	log *zap.Logger

	// Now is the clock, replaceable in tests. Defaults to time.Now.
	Now func() time.Time
}

// NewSQLite opens or creates the cache database at path and ensures the
// schema exists. Opening is the one operation that can fail; after that
// the store never surfaces errors.
func NewSQLite(path string, log *zap.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &SQLite{db: db, log: log, Now: time.Now}, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get returns the value for key if present and unexpired. Expired entries
// are deleted on access; backend errors are a miss.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool) {
	var value string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache_entries WHERE key = ?`, key).Scan(&value, &expiresAt)
	switch {
	case err == sql.ErrNoRows:
		return "", false
	case err != nil:
		s.log.Warn("cache read failed, treating as miss", zap.Error(err))
		return "", false
	}

	if s.Now().Unix() > expiresAt {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
			s.log.Warn("expired cache entry cleanup failed", zap.Error(err))
		}
		return "", false
	}
	return value, true
}

// Set stores value under key for ttl (DefaultTTL when non-positive).
// Backend errors are logged and dropped.
func (s *SQLite) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)`,
		key, value, s.Now().Add(ttl).Unix())
	if err != nil {
		s.log.Warn("cache write failed", zap.Error(err))
	}
}
