package utokyo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
	"github.com/garyellow/ut-course-catalog-go/internal/parser"
)

// Retry operation labels
const (
	opSearch = "search"
	opDetail = "detail"
)

// FetchSearch fetches and parses one page (1-based) of search results.
// The fetch is retried under the catalog's policy.
func (c *Catalog) FetchSearch(ctx context.Context, params catalog.SearchParams, page int) (*catalog.SearchResult, error) {
	if page < 1 {
		return nil, domerrors.InvalidConfiguration("page must be >= 1, got %d", page)
	}

	pageURL := c.SearchURL(params, page)
	var result *catalog.SearchResult
	err := c.retry(ctx, opSearch, pageURL, func(ctx context.Context) error {
		doc, err := c.document(ctx, pageURL)
		if err != nil {
			return err
		}
		res, err := parser.ParseSearchPage(doc, page)
		if err != nil {
			return withURL(err, pageURL)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search page %d: %w", page, err)
	}
	return result, nil
}

// FetchDetail fetches and parses the detail page of a time-table code.
func (c *Catalog) FetchDetail(ctx context.Context, code string, year int) (*catalog.Details, error) {
	if code == "" {
		return nil, domerrors.InvalidConfiguration("time-table code is empty")
	}

	detailURL := c.DetailURL(code, year)
	var details *catalog.Details
	err := c.retry(ctx, opDetail, detailURL, func(ctx context.Context) error {
		doc, err := c.document(ctx, detailURL)
		if err != nil {
			return err
		}
		d, err := parser.ParseDetailPage(doc)
		if err != nil {
			return withURL(err, detailURL)
		}
		details = d
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch detail %s: %w", code, err)
	}
	return details, nil
}

// FetchCommonCode looks up the common code of a time-table code via keyword
// search and returns the first hit.
func (c *Catalog) FetchCommonCode(ctx context.Context, timetableCode string) (catalog.CommonCode, error) {
	item, err := c.firstHit(ctx, timetableCode)
	if err != nil {
		return catalog.CommonCode{}, err
	}
	return item.CommonCode, nil
}

// FetchCode looks up the time-table code of a common code via keyword
// search and returns the first hit.
func (c *Catalog) FetchCode(ctx context.Context, commonCode string) (string, error) {
	item, err := c.firstHit(ctx, commonCode)
	if err != nil {
		return "", err
	}
	return item.TimetableCode, nil
}

func (c *Catalog) firstHit(ctx context.Context, keyword string) (catalog.SearchResultItem, error) {
	if keyword == "" {
		return catalog.SearchResultItem{}, domerrors.InvalidConfiguration("keyword is empty")
	}
	result, err := c.FetchSearch(ctx, catalog.SearchParams{Keyword: keyword}, 1)
	if err != nil {
		return catalog.SearchResultItem{}, err
	}
	if len(result.Items) == 0 {
		return catalog.SearchResultItem{}, fmt.Errorf("%w for %q", domerrors.ErrNoResults, keyword)
	}
	return result.Items[0], nil
}

// document performs one GET through the session and parses the body.
func (c *Catalog) document(ctx context.Context, url string) (parser.Node, error) {
	session, err := c.currentSession()
	if err != nil {
		return nil, err
	}
	body, err := session.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := parser.FromReader(bytes.NewReader(body))
	if err != nil {
		return nil, domerrors.NewParserError("invalid HTML: %v", err).WithURL(url)
	}
	return doc, nil
}

// retry runs fn under the catalog policy, logging and counting each retry.
func (c *Catalog) retry(ctx context.Context, operation, url string, fn func(context.Context) error) error {
	policy := c.policy
	onRetry := policy.OnRetry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.metrics.RecordRetry(operation)
		c.log.WithError(err).WarnContext(ctx, "Retrying fetch",
			"operation", operation,
			"url", url,
			"attempt", attempt,
			"delay", delay.String(),
		)
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
	}
	return policy.Do(ctx, fn)
}

func withURL(err error, url string) error {
	var pe *domerrors.ParserError
	if errors.As(err, &pe) && pe.URL == "" {
		return pe.WithURL(url)
	}
	return err
}
