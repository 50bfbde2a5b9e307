// Package scraper provides the HTTP session used to read catalog pages:
// response caching, request spacing, user-agent rotation and status
// classification, plus the retry policy and fetch de-duplication shared by
// the catalog client.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/corpix/uarand"

	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
	"github.com/garyellow/ut-course-catalog-go/internal/logger"
	"github.com/garyellow/ut-course-catalog-go/internal/metrics"
	"github.com/garyellow/ut-course-catalog-go/internal/ratelimit"
)

const (
	defaultTimeout = 60 * time.Second
	maxBodySize    = 16 << 20
)

// Cache stores raw response bodies keyed by request URL.
type Cache interface {
	Get(ctx context.Context, key string) (body []byte, ok bool, err error)
	Set(ctx context.Context, key string, body []byte) error
}

// ClientOptions configures a Client. Every field is optional.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string             // Fixed UA; random per request when empty
	Limiter   *ratelimit.Limiter // Waited on before every network request
	Cache     Cache
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
	Transport http.RoundTripper
}

// Client is an HTTP session for GET requests against the catalog.
// Cached responses are served without touching the rate limiter.
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *ratelimit.Limiter
	cache      Cache
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a new scraper client.
func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		userAgent:  opts.UserAgent,
		limiter:    opts.Limiter,
		cache:      opts.Cache,
		log:        log.WithModule("scraper"),
		metrics:    opts.Metrics,
	}
}

// Get returns the body of rawURL. Only 2xx bodies are returned and cached.
// 401, 403 and 404 come back marked Permanent; every other failure is a
// *errors.ScraperError the retry policy may try again.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	endpoint := endpointOf(rawURL)

	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, rawURL)
		switch {
		case err != nil:
			c.log.WithError(err).WarnContext(ctx, "Response cache read failed", "url", rawURL)
		case ok:
			c.metrics.RecordCacheHit(endpoint)
			return body, nil
		}
		c.metrics.RecordCacheMiss(endpoint)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	body, err := c.fetch(ctx, rawURL)
	c.metrics.RecordScraperRequest(endpoint, requestStatus(err), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, rawURL, body); err != nil {
			c.log.WithError(err).WarnContext(ctx, "Response cache write failed", "url", rawURL)
		}
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, Permanent(domerrors.NewScraperError(rawURL, 0, fmt.Errorf("failed to create request: %w", err)))
	}
	req.Header.Set("User-Agent", c.randomUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.8,en;q=0.7")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.WithError(err).DebugContext(ctx, "Request failed",
			"url", rawURL,
			"network", IsNetworkError(err),
		)
		return nil, domerrors.NewScraperError(rawURL, 0, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))

		serr := domerrors.NewScraperError(rawURL, resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return nil, Permanent(serr)
		default: // 429, 5xx and anything unexpected
			return nil, serr
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, domerrors.NewScraperError(rawURL, resp.StatusCode, fmt.Errorf("failed to read body: %w", err))
	}
	return body, nil
}

// Close releases idle connections. The cache is owned by the caller.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) randomUserAgent() string {
	if c.userAgent != "" {
		return c.userAgent
	}
	return uarand.GetRandom()
}

// endpointOf returns the last path segment ("result", "detail") as a
// low-cardinality metric label.
func endpointOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "unknown"
	}
	return path.Base(u.Path)
}

func requestStatus(err error) string {
	if err == nil {
		return "success"
	}
	var serr *domerrors.ScraperError
	if errors.As(err, &serr) {
		switch {
		case serr.StatusCode == http.StatusNotFound:
			return "not_found"
		case serr.StatusCode == http.StatusTooManyRequests:
			return "rate_limited"
		}
	}
	return "error"
}

// IsNetworkError reports whether err looks like a transport failure
// (timeout, refused or reset connection, 5xx, rate limiting) as opposed to
// a permanent client error or a parsing problem.
func IsNetworkError(err error) bool {
	if err == nil || IsPermanent(err) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var serr *domerrors.ScraperError
	if errors.As(err, &serr) && (serr.StatusCode >= 500 || serr.StatusCode == http.StatusTooManyRequests) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"i/o timeout",
		"eof",
		"server error",
		"rate limited",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
