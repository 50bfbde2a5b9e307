package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailURL = "https://catalog.he.u-tokyo.ac.jp/detail?code=0505001&year=2025"

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_FileSystemDatabase(t *testing.T) {
	t.Parallel()
	dbPath := filepath.Join(t.TempDir(), "nested", "cache.sqlite")

	ctx := context.Background()
	db, err := New(ctx, dbPath, DefaultTTL)
	require.NoError(t, err)

	require.NoError(t, db.Set(ctx, detailURL, []byte("<html>detail</html>")))
	require.NoError(t, db.Close())

	_, err = os.Stat(dbPath)
	require.NoError(t, err, "database file should exist")

	// Entries survive reopening
	reopened, err := New(ctx, dbPath, DefaultTTL)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	body, ok, err := reopened.Get(ctx, detailURL)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<html>detail</html>", string(body))
	assert.Equal(t, dbPath, reopened.Path())
	assert.NoError(t, reopened.Ping(ctx))
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	t.Setenv("HOME", "/tmp/home")

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, filepath.Join("ut_course_catalog", "cache.sqlite")), path)
}

func TestCache_GetSet(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	_, ok, err := db.Get(ctx, detailURL)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache should miss")

	page := []byte(strings.Repeat("<tr><td>数学講究</td></tr>", 200))
	require.NoError(t, db.Set(ctx, detailURL, page))

	body, ok, err := db.Get(ctx, detailURL)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, page, body)

	// Overwrite
	require.NoError(t, db.Set(ctx, detailURL, []byte("v2")))
	body, _, err = db.Get(ctx, detailURL)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(body))
}

func TestCache_Compressed(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	page := []byte(strings.Repeat("catalog-search-result-card ", 1000))
	require.NoError(t, db.Set(ctx, detailURL, page))

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(len(page)), stats.RawBytes)
	assert.Less(t, stats.StoredBytes, stats.RawBytes/10, "repetitive markup should compress well")
}

func TestCache_Expiry(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return base }
	require.NoError(t, db.Set(ctx, detailURL, []byte("old")))
	require.NoError(t, db.Set(ctx, detailURL+"1", []byte("old")))

	db.now = func() time.Time { return base.Add(DefaultTTL - time.Minute) }
	require.NoError(t, db.Set(ctx, detailURL+"2", []byte("fresh")))
	_, ok, err := db.Get(ctx, detailURL)
	require.NoError(t, err)
	assert.True(t, ok, "entry within TTL should hit")

	db.now = func() time.Time { return base.Add(DefaultTTL + time.Minute) }
	_, ok, err = db.Get(ctx, detailURL)
	require.NoError(t, err)
	assert.False(t, ok, "expired entry should miss")

	stats, err := db.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Entries)
	assert.Equal(t, 2, stats.Expired)

	deleted, err := db.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, ok, err = db.Get(ctx, detailURL+"2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_NoTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := New(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	db.now = func() time.Time { return time.Unix(1, 0) }
	require.NoError(t, db.Set(ctx, detailURL, []byte("forever")))
	db.now = time.Now

	_, ok, err := db.Get(ctx, detailURL)
	require.NoError(t, err)
	assert.True(t, ok)

	deleted, err := db.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestCache_DeleteByPrefix(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	urls := []string{
		"https://catalog.he.u-tokyo.ac.jp/result?type=all&page=1",
		"https://catalog.he.u-tokyo.ac.jp/result?type=all&page=2",
		"https://catalog.he.u-tokyo.ac.jp/detail?code=0505001&year=2025",
		// Would match "result_" if _ were left as a wildcard
		"https://catalog.he.u-tokyo.ac.jp/resultX",
	}
	for _, u := range urls {
		require.NoError(t, db.Set(ctx, u, []byte("x")))
	}

	deleted, err := db.DeleteByPrefix(ctx, "https://catalog.he.u-tokyo.ac.jp/result?")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = db.DeleteByPrefix(ctx, "https://catalog.he.u-tokyo.ac.jp/result_")
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = db.DeleteByPrefix(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestSanitizeSearchTerm(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected string
	}{
		{"detail?code=0505001", "detail?code=0505001"},
		{"facet=%7B%22a%22", `facet=\%7B\%22a\%22`},
		{"grades_codes", `grades\_codes`},
		{`a\b`, `a\\b`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeSearchTerm(tt.input); got != tt.expected {
			t.Errorf("sanitizeSearchTerm(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
