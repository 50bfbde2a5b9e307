package main

import (
	"fmt"
	"os"
	"time"

	"github.com/titanous/json5"

	"github.com/garyellow/ut-course-catalog-go/internal/catalog"
)

// loadParams reads search parameters from a JSON5 file. An empty path means
// the unfiltered search.
//
// Example:
//
//	{
//	  keyword: "数学",
//	  institution: "ug",
//	  faculties: ["理学部"],
//	  weekdays: ["Mon", "水"],
//	  periods: [2],
//	}
func loadParams(path string) (catalog.SearchParams, error) {
	var params catalog.SearchParams
	if path == "" {
		return params, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("failed to read params file: %w", err)
	}
	if err := json5.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("failed to parse params file %s: %w", path, err)
	}
	return params, nil
}

// resolveYear picks the detail year: the flag, then the config, then the
// current fiscal year.
func resolveYear(flag, configured int, now time.Time) int {
	switch {
	case flag > 0:
		return flag
	case configured > 0:
		return configured
	default:
		return catalog.CurrentFiscalYear(now)
	}
}

// seconds converts a fractional seconds flag value.
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
