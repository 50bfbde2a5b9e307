package utokyo

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
	"github.com/garyellow/ut-course-catalog-go/internal/logger"
	"github.com/garyellow/ut-course-catalog-go/internal/metrics"
	"github.com/garyellow/ut-course-catalog-go/internal/parser/parsertest"
	"github.com/garyellow/ut-course-catalog-go/internal/scraper"
)

// siteFailure answers status while left is non-zero; negative means forever.
type siteFailure struct {
	status int
	left   int
}

// catalogSite serves result and detail pages for a fixed course list.
type catalogSite struct {
	courses []parsertest.Course

	mu       sync.Mutex
	failures map[string]siteFailure // keyed by "page:N" or "detail:CODE"
	hits     map[string]int
	onDetail func(r *http.Request) // runs before a detail page is served
}

func newCatalogSite(courses []parsertest.Course) *catalogSite {
	return &catalogSite{
		courses:  courses,
		failures: make(map[string]siteFailure),
		hits:     make(map[string]int),
	}
}

// fail makes key answer status for the next n requests (n < 0: always).
func (s *catalogSite) fail(key string, status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key] = siteFailure{status: status, left: n}
}

// holdDetails makes every detail request run hook before it is answered.
func (s *catalogSite) holdDetails(hook func(r *http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDetail = hook
}

func (s *catalogSite) hitCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

// failure records a hit and returns the status to fail with, or 0.
func (s *catalogSite) failure(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[key]++
	f, ok := s.failures[key]
	if !ok || f.left == 0 {
		return 0
	}
	if f.left > 0 {
		f.left--
		s.failures[key] = f
	}
	return f.status
}

func (s *catalogSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch r.URL.Path {
	case "/result":
		page, err := strconv.Atoi(q.Get("page"))
		if err != nil || page < 1 {
			http.Error(w, "bad page", http.StatusBadRequest)
			return
		}
		if status := s.failure("page:" + strconv.Itoa(page)); status != 0 {
			http.Error(w, "failure", status)
			return
		}

		courses := s.courses
		if keyword := q.Get("q"); keyword != "" {
			courses = nil
			for _, c := range s.courses {
				if c.TimetableCode == keyword || c.CommonCode == keyword {
					courses = append(courses, c)
				}
			}
		}
		if len(courses) == 0 {
			_, _ = fmt.Fprint(w, parsertest.EmptySearchPage())
			return
		}
		first := (page - 1) * catalog.ItemsPerPage
		if first >= len(courses) {
			http.NotFound(w, r)
			return
		}
		last := min(first+catalog.ItemsPerPage, len(courses))
		_, _ = fmt.Fprint(w, parsertest.SearchPage(first+1, last, len(courses), courses[first:last]))

	case "/detail":
		code := q.Get("code")
		s.mu.Lock()
		hook := s.onDetail
		s.mu.Unlock()
		if hook != nil {
			hook(r)
		}
		if status := s.failure("detail:" + code); status != 0 {
			http.Error(w, "failure", status)
			return
		}
		for _, c := range s.courses {
			if c.TimetableCode == code {
				_, _ = fmt.Fprint(w, parsertest.DetailPage(c, parsertest.DefaultDetail()))
				return
			}
		}
		http.NotFound(w, r)

	default:
		http.NotFound(w, r)
	}
}

// fastPolicy retries once with millisecond backoff.
func fastPolicy() *scraper.Policy {
	return &scraper.Policy{
		MaxAttempts: 2,
		MaxElapsed:  time.Second,
		Multiplier:  time.Millisecond,
		MinBackoff:  time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	}
}

type testCatalog struct {
	*Catalog
	site    *catalogSite
	logs    *bytes.Buffer
	metrics *metrics.Metrics
	drops   *[]error
}

// newTestCatalog opens a catalog against a fixture server for courses.
// Each of overrides may adjust the options before the catalog is created.
func newTestCatalog(t *testing.T, courses []parsertest.Course, overrides ...func(*Options)) testCatalog {
	t.Helper()
	site := newCatalogSite(courses)
	srv := httptest.NewServer(site)
	t.Cleanup(srv.Close)

	var (
		logs    bytes.Buffer
		dropsMu sync.Mutex
		drops   []error
	)
	m := metrics.New(prometheus.NewRegistry())
	opts := Options{
		BaseURL:           srv.URL,
		Retry:             fastPolicy(),
		DetailConcurrency: 4,
		Logger:            logger.NewWithWriter("info", &logs),
		Metrics:           m,
		OnDrop: func(err error) {
			dropsMu.Lock()
			defer dropsMu.Unlock()
			drops = append(drops, err)
		},
	}
	for _, override := range overrides {
		override(&opts)
	}
	cat, err := New(opts)
	require.NoError(t, err)
	require.NoError(t, cat.Open(t.Context()))
	t.Cleanup(func() { _ = cat.Close() })

	return testCatalog{Catalog: cat, site: site, logs: &logs, metrics: m, drops: &drops}
}
