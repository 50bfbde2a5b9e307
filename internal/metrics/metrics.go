// Package metrics defines the Prometheus metrics of a catalog crawl.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Scraper metrics
	ScraperRequestsTotal   *prometheus.CounterVec
	ScraperDurationSeconds *prometheus.HistogramVec
	ScraperRetriesTotal    *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterWaitDuration prometheus.Histogram

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec

	// Crawl metrics
	CrawlUnitsTotal   *prometheus.CounterVec
	CrawlDuration     prometheus.Histogram
	CrawlDeclaredSize prometheus.Gauge
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		ScraperRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "utcc_scraper_requests_total",
				Help: "Total number of catalog HTTP requests by endpoint and status",
			},
			[]string{"endpoint", "status"}, // status: success, error, not_found, rate_limited
		),

		ScraperDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "utcc_scraper_duration_seconds",
				Help:    "Catalog HTTP request duration in seconds by endpoint",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"endpoint"}, // endpoint: result, detail
		),

		ScraperRetriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "utcc_scraper_retries_total",
				Help: "Total number of retried fetches by operation",
			},
			[]string{"operation"}, // operation: search, detail
		),

		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "utcc_cache_hits_total",
				Help: "Total number of response cache hits by endpoint",
			},
			[]string{"endpoint"},
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "utcc_cache_misses_total",
				Help: "Total number of response cache misses by endpoint",
			},
			[]string{"endpoint"},
		),

		RateLimiterWaitDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "utcc_rate_limiter_wait_duration_seconds",
				Help:    "Time spent waiting for the request rate limiter",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
			},
		),

		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "utcc_singleflight_dedup_total",
				Help: "Total number of fetches that joined an in-flight fetch of the same key",
			},
			[]string{"operation"},
		),

		CrawlUnitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "utcc_crawl_units_total",
				Help: "Total number of crawl units by stage and outcome",
			},
			[]string{"stage", "outcome"}, // stage: search_page, detail; outcome: fetched, dropped
		),

		CrawlDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "utcc_crawl_duration_seconds",
				Help:    "Duration of a full search-and-detail crawl",
				Buckets: []float64{1, 10, 60, 300, 900, 1800, 3600, 7200},
			},
		),

		CrawlDeclaredSize: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "utcc_crawl_declared_items",
				Help: "Total item count declared by the first result page of the last crawl",
			},
		),
	}

	return m
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordScraperRequest records one HTTP request
func (m *Metrics) RecordScraperRequest(endpoint, status string, duration float64) {
	if m == nil {
		return
	}
	m.ScraperRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.ScraperDurationSeconds.WithLabelValues(endpoint).Observe(duration)
}

// RecordRetry records a retried fetch
func (m *Metrics) RecordRetry(operation string) {
	if m == nil {
		return
	}
	m.ScraperRetriesTotal.WithLabelValues(operation).Inc()
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(endpoint string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(endpoint).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(endpoint string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(endpoint).Inc()
}

// RecordRateLimiterWait records time spent in the rate limiter
func (m *Metrics) RecordRateLimiterWait(duration float64) {
	if m == nil {
		return
	}
	m.RateLimiterWaitDuration.Observe(duration)
}

// RecordSingleflightDedup records a deduplicated fetch
func (m *Metrics) RecordSingleflightDedup(operation string) {
	if m == nil {
		return
	}
	m.SingleflightDedupTotal.WithLabelValues(operation).Inc()
}

// RecordUnitFetched records a successfully fetched crawl unit
func (m *Metrics) RecordUnitFetched(stage string) {
	if m == nil {
		return
	}
	m.CrawlUnitsTotal.WithLabelValues(stage, "fetched").Inc()
}

// RecordUnitDropped records a crawl unit dropped after retries
func (m *Metrics) RecordUnitDropped(stage string) {
	if m == nil {
		return
	}
	m.CrawlUnitsTotal.WithLabelValues(stage, "dropped").Inc()
}

// RecordCrawl records a finished crawl
func (m *Metrics) RecordCrawl(declared int, duration float64) {
	if m == nil {
		return
	}
	m.CrawlDeclaredSize.Set(float64(declared))
	m.CrawlDuration.Observe(duration)
}

// WriteToTextfile writes every registered metric in the text exposition
// format, for collection by node_exporter's textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
