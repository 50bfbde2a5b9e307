// Package storage provides the SQLite-backed response cache.
// Bodies are stored zstd-compressed and keyed by request URL.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// DefaultTTL is how long a cached response stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// DB wraps the SQLite database connection
type DB struct {
	conn    *sql.DB
	path    string
	ttl     time.Duration // 0 = entries never expire
	now     func() time.Time
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// DefaultPath returns $XDG_CACHE_HOME/ut_course_catalog/cache.sqlite
// (or the platform equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	return filepath.Join(dir, "ut_course_catalog", "cache.sqlite"), nil
}

// New opens the database at dbPath, creating directories and schema as needed.
func New(ctx context.Context, dbPath string, ttl time.Duration) (*DB, error) {
	memory := dbPath == ":memory:"

	// Ensure directory exists (skip for in-memory database)
	if !memory {
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if memory {
		// Every connection to :memory: is a separate database
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(4)
		conn.SetMaxIdleConns(4)
	}
	conn.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=30000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := InitSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &DB{
		conn:    conn,
		path:    dbPath,
		ttl:     ttl,
		now:     time.Now,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// NewTestDB creates an in-memory database with the default TTL.
func NewTestDB() (*DB, error) {
	return New(context.Background(), ":memory:", DefaultTTL)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.decoder != nil {
		db.decoder.Close()
	}
	if db.encoder != nil {
		_ = db.encoder.Close()
	}
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// TTL returns the configured cache TTL
func (db *DB) TTL() time.Duration {
	return db.ttl
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// cutoff returns the Unix timestamp at or before which entries are expired.
// With no TTL nothing expires.
func (db *DB) cutoff() int64 {
	if db.ttl <= 0 {
		return 0
	}
	return db.now().Add(-db.ttl).Unix()
}
