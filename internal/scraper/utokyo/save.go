package utokyo

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/garyellow/ut-course-catalog-go/internal/archive"
	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
	"github.com/garyellow/ut-course-catalog-go/internal/ctxutil"
)

// SaveOptions controls where SaveSearchDetailAll writes its archive.
type SaveOptions struct {
	AggregateOptions

	// Path of the archive. Empty means "<params ID>.json.zst" inside Dir.
	// The .json.zst extension is appended when missing.
	Path string
	Dir  string
}

// SaveResult is what SaveSearchDetailAll fetched and where it went.
type SaveResult struct {
	Path    string
	Archive *archive.Archive
}

// SaveSearchDetailAll runs FetchSearchDetailAll and writes the details to a
// zstd-compressed JSON archive.
//
// When only the write fails, the fetched archive is still returned together
// with the error so the crawl is not lost.
func (c *Catalog) SaveSearchDetailAll(ctx context.Context, params catalog.SearchParams, year int, opts SaveOptions) (*SaveResult, error) {
	ctx, runID := ctxutil.EnsureRunID(ctx)

	declared := 0
	aggregate := opts.AggregateOptions
	onInitial := aggregate.OnInitial
	aggregate.OnInitial = func(first *catalog.SearchResult) {
		declared = first.TotalCount
		if onInitial != nil {
			onInitial(first)
		}
	}

	details, err := c.FetchSearchDetailAll(ctx, params, year, aggregate)
	if err != nil {
		return nil, err
	}

	result := &SaveResult{
		Path: ArchivePath(params, opts.Path, opts.Dir),
		Archive: archive.New(archive.Metadata{
			RunID:         runID,
			Params:        params,
			Year:          year,
			DeclaredTotal: declared,
			FetchedAt:     time.Now().UTC(),
		}, details),
	}

	if err := archive.WriteFile(result.Path, result.Archive); err != nil {
		c.log.WithError(err).ErrorContext(ctx, "Failed to save archive",
			"path", result.Path,
			"details", len(details),
		)
		return result, fmt.Errorf("failed to save %d details: %w", len(details), err)
	}

	c.log.InfoContext(ctx, "Archive saved",
		"path", result.Path,
		"details", len(details),
	)
	return result, nil
}

// ArchivePath resolves the archive location for params.
func ArchivePath(params catalog.SearchParams, path, dir string) string {
	if path == "" {
		path = archive.Filename(params)
	}
	path = archive.WithExtension(path)
	if dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	return path
}
