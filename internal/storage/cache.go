package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CacheStats summarizes the response cache.
type CacheStats struct {
	Entries     int   `json:"entries"`
	Expired     int   `json:"expired"`
	RawBytes    int64 `json:"raw_bytes"`
	StoredBytes int64 `json:"stored_bytes"`
}

// Get returns the cached body for url. Expired entries are reported as misses.
func (db *DB) Get(ctx context.Context, url string) ([]byte, bool, error) {
	query := `SELECT body FROM responses WHERE url = ? AND cached_at > ?`

	var compressed []byte
	err := db.conn.QueryRowContext(ctx, query, url, db.cutoff()).Scan(&compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached response: %w", err)
	}

	body, err := db.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decompress cached response %s: %w", url, err)
	}
	return body, true, nil
}

// Set stores body for url, replacing any previous entry.
func (db *DB) Set(ctx context.Context, url string, body []byte) error {
	query := `
		INSERT INTO responses (url, body, size, cached_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			body = excluded.body,
			size = excluded.size,
			cached_at = excluded.cached_at
	`

	compressed := db.encoder.EncodeAll(body, make([]byte, 0, len(body)/4))
	if _, err := db.conn.ExecContext(ctx, query, url, compressed, len(body), db.now().Unix()); err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}

// DeleteExpired removes entries older than the TTL and returns how many went.
func (db *DB) DeleteExpired(ctx context.Context) (int64, error) {
	if db.ttl <= 0 {
		return 0, nil
	}
	result, err := db.conn.ExecContext(ctx, `DELETE FROM responses WHERE cached_at <= ?`, db.cutoff())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired responses: %w", err)
	}
	return result.RowsAffected()
}

// DeleteByPrefix removes every entry whose URL starts with prefix.
// An empty prefix clears the cache.
func (db *DB) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	query := `DELETE FROM responses WHERE url LIKE ? ESCAPE '\'`
	result, err := db.conn.ExecContext(ctx, query, sanitizeSearchTerm(prefix)+"%")
	if err != nil {
		return 0, fmt.Errorf("failed to delete responses: %w", err)
	}
	return result.RowsAffected()
}

// Stats counts entries and their raw and stored sizes.
func (db *DB) Stats(ctx context.Context) (CacheStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN cached_at <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(size), 0),
			COALESCE(SUM(LENGTH(body)), 0)
		FROM responses
	`

	var stats CacheStats
	err := db.conn.QueryRowContext(ctx, query, db.cutoff()).
		Scan(&stats.Entries, &stats.Expired, &stats.RawBytes, &stats.StoredBytes)
	if err != nil {
		return CacheStats{}, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return stats, nil
}
