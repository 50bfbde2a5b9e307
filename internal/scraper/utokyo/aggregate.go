package utokyo

import (
	"context"
	"iter"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
	"github.com/garyellow/ut-course-catalog-go/internal/ctxutil"
	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
)

// AggregateOptions carries progress observers for batch crawls.
// Observers are never called concurrently.
type AggregateOptions struct {
	// OnInitial receives the first result page before any item is yielded.
	OnInitial func(first *catalog.SearchResult)

	// OnDetail receives every successfully fetched detail.
	OnDetail func(details *catalog.Details)
}

// FetchSearchAll fetches the first result page and returns a sequence over
// every item of the result set.
//
// Page 1 is fetched before FetchSearchAll returns and its failure is the
// returned error. The sequence yields page 1 items first; the remaining pages
// are then fetched concurrently and, once all have settled, yielded in
// completion order. Pages that still fail after retries are logged and
// dropped. Each iteration of the sequence fetches the remaining pages anew.
func (c *Catalog) FetchSearchAll(ctx context.Context, params catalog.SearchParams, opts AggregateOptions) (iter.Seq[catalog.SearchResultItem], error) {
	first, err := c.FetchSearch(ctx, params, 1)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordUnitFetched(domerrors.StageSearchPage)
	if opts.OnInitial != nil {
		opts.OnInitial(first)
	}

	return func(yield func(catalog.SearchResultItem) bool) {
		for _, item := range first.Items {
			if !yield(item) {
				return
			}
		}
		if first.TotalPages <= 1 {
			return
		}
		for page := range c.fetchPages(ctx, params, first.TotalPages) {
			for _, item := range page.Items {
				if !yield(item) {
					return
				}
			}
		}
	}, nil
}

// fetchPages fetches pages 2..total concurrently. The returned channel is
// closed after every fetch settled and holds the successful pages in
// completion order.
func (c *Catalog) fetchPages(ctx context.Context, params catalog.SearchParams, total int) <-chan *catalog.SearchResult {
	pages := make(chan *catalog.SearchResult, total-1)

	g, gctx := errgroup.WithContext(ctx)
	for page := 2; page <= total; page++ {
		g.Go(func() error {
			result, err := c.FetchSearch(gctx, params, page)
			if err != nil {
				c.dropUnit(gctx, domerrors.StageSearchPage, strconv.Itoa(page), err)
				return nil
			}
			c.metrics.RecordUnitFetched(domerrors.StageSearchPage)
			pages <- result
			return nil
		})
	}
	_ = g.Wait()
	close(pages)
	return pages
}

// FetchSearchDetailAll collects the whole result set and fetches the detail
// page of every item for the given year, at most DetailConcurrency at a time.
// Identical time-table codes in flight share one fetch.
//
// Items whose detail fetch fails after retries are logged and left out, so
// the result holds exactly the details that succeeded, in completion order.
// Only a failure of the first result page or cancellation of ctx is
// returned as an error.
func (c *Catalog) FetchSearchDetailAll(ctx context.Context, params catalog.SearchParams, year int, opts AggregateOptions) ([]catalog.Details, error) {
	start := time.Now()
	// run_id is attached to every log line through the context
	ctx, _ = ctxutil.EnsureRunID(ctx)

	declared := 0
	onInitial := opts.OnInitial
	items, err := c.FetchSearchAll(ctx, params, AggregateOptions{
		OnInitial: func(first *catalog.SearchResult) {
			declared = first.TotalCount
			c.log.InfoContext(ctx, "Search started",
				"total_items", first.TotalCount,
				"total_pages", first.TotalPages,
			)
			if onInitial != nil {
				onInitial(first)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	var collected []catalog.SearchResultItem
	for item := range items {
		collected = append(collected, item)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		details = make([]catalog.Details, 0, len(collected))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.detailConcurrency)
	for _, item := range collected {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			d, err := c.fetchDetailShared(gctx, item.TimetableCode, year)
			if err != nil {
				c.dropUnit(gctx, domerrors.StageDetail, item.TimetableCode, err)
				return nil
			}
			c.metrics.RecordUnitFetched(domerrors.StageDetail)

			mu.Lock()
			defer mu.Unlock()
			details = append(details, *d)
			if opts.OnDetail != nil {
				opts.OnDetail(d)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return details, err
	}

	c.metrics.RecordCrawl(declared, time.Since(start).Seconds())
	c.log.InfoContext(ctx, "Search finished",
		"declared", declared,
		"listed", len(collected),
		"fetched", len(details),
		"duration", time.Since(start).String(),
	)
	return details, nil
}

// fetchDetailShared collapses concurrent fetches of the same detail page.
func (c *Catalog) fetchDetailShared(ctx context.Context, code string, year int) (*catalog.Details, error) {
	key := code + "/" + strconv.Itoa(year)
	d, shared, err := c.details.Do(ctx, key, func(ctx context.Context) (*catalog.Details, error) {
		return c.FetchDetail(ctx, code, year)
	})
	if shared {
		c.metrics.RecordSingleflightDedup(opDetail)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// dropUnit logs, counts and reports a unit that failed after retries.
// Cancellation is not a failure of the unit and is not reported.
func (c *Catalog) dropUnit(ctx context.Context, stage, unit string, cause error) {
	if ctx.Err() != nil {
		return
	}
	err := domerrors.NewUnitError(stage, unit, cause)
	c.metrics.RecordUnitDropped(stage)
	c.log.WithError(err).ErrorContext(ctxutil.WithUnit(ctx, unit), "Dropped crawl unit",
		"stage", stage,
	)
	if c.onDrop != nil {
		c.onDrop(err)
	}
}
