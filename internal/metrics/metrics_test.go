package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	t.Parallel()
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m.Registry() != registry {
		t.Error("Registry() should return the constructor's registry")
	}
	if m.ScraperRequestsTotal == nil || m.CrawlUnitsTotal == nil || m.RateLimiterWaitDuration == nil {
		t.Fatal("metric fields not initialized")
	}
}

func TestRecord(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())

	m.RecordScraperRequest("detail", "success", 0.2)
	m.RecordScraperRequest("detail", "success", 0.4)
	m.RecordScraperRequest("result", "not_found", 0.1)
	m.RecordCacheHit("detail")
	m.RecordCacheMiss("result")
	m.RecordRetry("search")
	m.RecordSingleflightDedup("detail")
	m.RecordUnitFetched("detail")
	m.RecordUnitDropped("detail")
	m.RecordUnitDropped("search_page")
	m.RecordRateLimiterWait(0.5)
	m.RecordCrawl(23, 12.5)

	tests := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{"detail successes", m.ScraperRequestsTotal.WithLabelValues("detail", "success"), 2},
		{"result not found", m.ScraperRequestsTotal.WithLabelValues("result", "not_found"), 1},
		{"cache hits", m.CacheHitsTotal.WithLabelValues("detail"), 1},
		{"cache misses", m.CacheMissesTotal.WithLabelValues("result"), 1},
		{"retries", m.ScraperRetriesTotal.WithLabelValues("search"), 1},
		{"dedup", m.SingleflightDedupTotal.WithLabelValues("detail"), 1},
		{"fetched details", m.CrawlUnitsTotal.WithLabelValues("detail", "fetched"), 1},
		{"dropped details", m.CrawlUnitsTotal.WithLabelValues("detail", "dropped"), 1},
		{"dropped pages", m.CrawlUnitsTotal.WithLabelValues("search_page", "dropped"), 1},
		{"declared size", m.CrawlDeclaredSize, 23},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.collector); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()
	var m *Metrics

	// Every recorder is a no-op on nil
	m.RecordScraperRequest("detail", "success", 1)
	m.RecordCacheHit("detail")
	m.RecordCacheMiss("detail")
	m.RecordRetry("detail")
	m.RecordRateLimiterWait(1)
	m.RecordSingleflightDedup("detail")
	m.RecordUnitFetched("detail")
	m.RecordUnitDropped("detail")
	m.RecordCrawl(1, 1)

	if m.Registry() != nil {
		t.Error("nil Metrics should have no registry")
	}
	if err := m.WriteToTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteToTextfile() on nil = %v", err)
	}
}

func TestWriteToTextfile(t *testing.T) {
	t.Parallel()
	m := New(prometheus.NewRegistry())
	m.RecordUnitDropped("detail")

	path := filepath.Join(t.TempDir(), "utcc.prom")
	if err := m.WriteToTextfile(path); err != nil {
		t.Fatalf("WriteToTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `utcc_crawl_units_total{outcome="dropped",stage="detail"} 1`) {
		t.Errorf("textfile missing dropped counter:\n%s", data)
	}
}
