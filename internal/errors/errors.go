// Package errors provides domain-specific error types and sentinel errors
// for the catalog scraper.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrInvalidConfiguration indicates a constructor received unusable arguments.
	// It is never retried.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNotInitialized indicates a fetch was attempted before the network
	// session was opened (or after it was closed).
	ErrNotInitialized = errors.New("session not initialized")

	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrNoResults indicates a search that was expected to match returned nothing.
	ErrNoResults = errors.New("no results")
)

// IsInvalidConfiguration reports whether err wraps ErrInvalidConfiguration.
func IsInvalidConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsNotInitialized reports whether err wraps ErrNotInitialized.
func IsNotInitialized(err error) bool {
	return errors.Is(err, ErrNotInitialized)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// InvalidConfiguration returns an error wrapping ErrInvalidConfiguration.
func InvalidConfiguration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// ParserError reports that expected markup was absent or that a parsed page
// failed a consistency check.
type ParserError struct {
	URL    string
	Reason string
}

func (e *ParserError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("parser error (url=%s): %s", e.URL, e.Reason)
	}
	return "parser error: " + e.Reason
}

// NewParserError creates a new parser error with a formatted reason.
func NewParserError(format string, args ...any) *ParserError {
	return &ParserError{Reason: fmt.Sprintf(format, args...)}
}

// WithURL returns a copy of the error annotated with the page URL.
func (e *ParserError) WithURL(url string) *ParserError {
	return &ParserError{URL: url, Reason: e.Reason}
}

// IsParserError reports whether err is or wraps a *ParserError.
func IsParserError(err error) bool {
	var pe *ParserError
	return errors.As(err, &pe)
}

// DecodeWarning reports a code segment that matched no lookup table.
// It is recoverable: callers substitute an unknown value and continue.
type DecodeWarning struct {
	Field string
	Code  string
}

func (e *DecodeWarning) Error() string {
	return fmt.Sprintf("unknown %s code: %q", e.Field, e.Code)
}

// NewDecodeWarning creates a new decode warning.
func NewDecodeWarning(field, code string) *DecodeWarning {
	return &DecodeWarning{
		Field: field,
		Code:  code,
	}
}

// ScraperError represents web scraping failures with context.
type ScraperError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ScraperError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("scraper error (url=%s, status=%d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("scraper error (url=%s): %v", e.URL, e.Err)
}

func (e *ScraperError) Unwrap() error {
	return e.Err
}

// NewScraperError creates a new scraper error.
func NewScraperError(url string, statusCode int, err error) *ScraperError {
	return &ScraperError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}
