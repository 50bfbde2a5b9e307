// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	runIDKey contextKey = "ctxutil.runID"
	unitKey  contextKey = "ctxutil.unit"
)

// NewRunID returns a fresh crawl run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID adds a crawl run ID to the context.
// Every log line and archive produced by one crawl carries the same run ID.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
// Returns the run ID and true if found, empty string and false otherwise.
func GetRunID(ctx context.Context) (string, bool) {
	runID, ok := ctx.Value(runIDKey).(string)
	return runID, ok && runID != ""
}

// EnsureRunID returns ctx unchanged if it already carries a run ID,
// otherwise a child context with a new one.
func EnsureRunID(ctx context.Context) (context.Context, string) {
	if runID, ok := GetRunID(ctx); ok {
		return ctx, runID
	}
	runID := NewRunID()
	return WithRunID(ctx, runID), runID
}

// WithUnit adds the unit being fetched (a page number or time-table code).
func WithUnit(ctx context.Context, unit string) context.Context {
	return context.WithValue(ctx, unitKey, unit)
}

// GetUnit retrieves the unit from the context.
// Returns the unit if found, empty string otherwise.
func GetUnit(ctx context.Context) string {
	if v := ctx.Value(unitKey); v != nil {
		if unit, ok := v.(string); ok {
			return unit
		}
	}
	return ""
}

// PreserveTracing creates a detached context that keeps the run ID.
// The new context is independent of the parent's cancellation and deadlines.
//
// Use for work that must finish after the crawl context is canceled,
// such as persisting results already fetched.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()
	if runID, ok := GetRunID(ctx); ok {
		newCtx = WithRunID(newCtx, runID)
	}
	return newCtx
}
