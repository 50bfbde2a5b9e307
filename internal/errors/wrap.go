package errors

import (
	"fmt"
)

// Stage names used when a unit of a batch crawl is dropped.
const (
	StageSearchPage = "search_page"
	StageDetail     = "detail"
)

// UnitError records a single unit of a batch crawl (a result page or a detail
// page) that failed after retries and was dropped from the result.
type UnitError struct {
	Stage string // Crawl stage, see Stage* constants
	Unit  string // Page number or time-table code
	Cause error  // Last error returned by the retry policy
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("[%s:%s] dropped: %v", e.Stage, e.Unit, e.Cause)
}

func (e *UnitError) Unwrap() error {
	return e.Cause
}

// NewUnitError wraps cause as a dropped unit.
// Returns nil if cause is nil.
func NewUnitError(stage, unit string, cause error) error {
	if cause == nil {
		return nil
	}
	return &UnitError{
		Stage: stage,
		Unit:  unit,
		Cause: cause,
	}
}
