// Package config provides centralized timeout constants for the application.
//
// The catalog is a single university server. Defaults favor finishing a full
// crawl politely over finishing it fast:
//   - Requests are spaced by MinInterval, so a 10k-course crawl takes hours
//   - Retries back off exponentially (4s -> 8s -> 16s) and give up quickly
//   - Cached responses skip both the network and the spacing
package config

import "time"

// Scraper timeouts
const (
	// ScraperRequest is the timeout for a single HTTP request to the catalog.
	ScraperRequest = 60 * time.Second

	// ScraperMinInterval is the minimum spacing between catalog requests
	// used by the CLI. The library default is one second.
	ScraperMinInterval = 500 * time.Millisecond

	// ScraperRetryMaxElapsed stops retrying once a fetch has been failing
	// for this long.
	ScraperRetryMaxElapsed = 10 * time.Second

	// ScraperRetryMinBackoff and ScraperRetryMaxBackoff bound the
	// exponential delay between attempts.
	ScraperRetryMinBackoff = 4 * time.Second
	ScraperRetryMaxBackoff = 16 * time.Second
)

// Cache
const (
	// CacheTTL is how long a cached catalog response stays valid.
	// Course pages change a few times per term.
	CacheTTL = 7 * 24 * time.Hour
)

// Shutdown
const (
	// FlushTimeout bounds how long the CLI waits for buffered error reports
	// and remote logs before exiting.
	FlushTimeout = 5 * time.Second
)
