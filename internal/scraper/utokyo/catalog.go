// Package utokyo is the client for the University of Tokyo Online Course
// Catalogue. It builds search and detail requests, parses the pages and
// aggregates paginated results with bounded concurrency.
package utokyo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
	domerrors "github.com/garyellow/ut-course-catalog-go/internal/errors"
	"github.com/garyellow/ut-course-catalog-go/internal/logger"
	"github.com/garyellow/ut-course-catalog-go/internal/metrics"
	"github.com/garyellow/ut-course-catalog-go/internal/ratelimit"
	"github.com/garyellow/ut-course-catalog-go/internal/scraper"
)

const (
	// BaseURL is the catalog root. Endpoints are resolved against it.
	BaseURL = "https://catalog.he.u-tokyo.ac.jp/"

	// DefaultMinInterval spaces network requests of a library client.
	DefaultMinInterval = time.Second

	// DefaultDetailConcurrency caps in-flight detail fetches.
	DefaultDetailConcurrency = 100
)

// Session performs GET requests and returns response bodies.
type Session interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Close() error
}

// SessionOpener acquires a Session when the catalog is opened.
type SessionOpener interface {
	Open(ctx context.Context) (Session, error)
}

// OpenerFunc adapts a function to SessionOpener.
type OpenerFunc func(ctx context.Context) (Session, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context) (Session, error) {
	return f(ctx)
}

// Options configures a Catalog.
type Options struct {
	BaseURL     string        // Defaults to BaseURL
	MinInterval time.Duration // Minimum spacing between network requests; 0 disables spacing

	// Retry wraps every search and detail fetch. Nil means scraper.DefaultPolicy.
	Retry *scraper.Policy

	DetailConcurrency int // Defaults to DefaultDetailConcurrency

	// Used by the default session only.
	HTTPTimeout time.Duration
	UserAgent   string
	Cache       scraper.Cache

	// Opener replaces the default scraper.Client session. A custom session
	// is responsible for its own request spacing; see Catalog.Limiter.
	Opener SessionOpener

	// OnDrop is called with a *errors.UnitError for every unit a crawl drops.
	// It may be called from several goroutines at once.
	OnDrop func(err error)

	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// DefaultOptions returns options for the public catalog.
func DefaultOptions() Options {
	return Options{
		BaseURL:           BaseURL,
		MinInterval:       DefaultMinInterval,
		DetailConcurrency: DefaultDetailConcurrency,
	}
}

// Catalog fetches and parses catalog pages.
// Open must be called before fetching; Close releases the session.
type Catalog struct {
	baseURL           string
	policy            scraper.Policy
	detailConcurrency int
	opener            SessionOpener
	limiter           *ratelimit.Limiter
	onDrop            func(error)
	log               *logger.Logger
	metrics           *metrics.Metrics

	details scraper.Group[*catalog.Details]

	mu      sync.RWMutex
	session Session
}

// New validates opts and creates a closed Catalog.
func New(opts Options) (*Catalog, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, domerrors.InvalidConfiguration("base URL must be http(s), got %q", baseURL)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	policy := scraper.DefaultPolicy()
	if opts.Retry != nil {
		policy = *opts.Retry
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	concurrency := opts.DetailConcurrency
	switch {
	case concurrency < 0:
		return nil, domerrors.InvalidConfiguration("detail concurrency must be >= 0, got %d", concurrency)
	case concurrency == 0:
		concurrency = DefaultDetailConcurrency
	}

	m := opts.Metrics
	limiter, err := ratelimit.New(opts.MinInterval, ratelimit.WithObserver(func(d time.Duration) {
		m.RecordRateLimiterWait(d.Seconds())
	}))
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithModule("utokyo")

	c := &Catalog{
		baseURL:           baseURL,
		policy:            policy,
		detailConcurrency: concurrency,
		opener:            opts.Opener,
		limiter:           limiter,
		onDrop:            opts.OnDrop,
		log:               log,
		metrics:           m,
	}

	if c.opener == nil {
		clientOpts := scraper.ClientOptions{
			Timeout:   opts.HTTPTimeout,
			UserAgent: opts.UserAgent,
			Limiter:   limiter,
			Cache:     opts.Cache,
			Logger:    opts.Logger,
			Metrics:   m,
		}
		c.opener = OpenerFunc(func(context.Context) (Session, error) {
			return scraper.NewClient(clientOpts), nil
		})
	}
	return c, nil
}

// Open acquires the network session. Opening an open catalog is a no-op.
func (c *Catalog) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return nil
	}
	s, err := c.opener.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	c.session = s
	return nil
}

// Close releases the session. Fetches after Close fail with ErrNotInitialized.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

// Limiter returns the request limiter shared by the default session.
func (c *Catalog) Limiter() *ratelimit.Limiter {
	return c.limiter
}

// BaseURL returns the normalized catalog root.
func (c *Catalog) BaseURL() string {
	return c.baseURL
}

func (c *Catalog) currentSession() (Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil, domerrors.ErrNotInitialized
	}
	return c.session, nil
}
