package ctxutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRunID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, ok := GetRunID(ctx); ok {
		t.Error("GetRunID() on empty context should report false")
	}

	ctx = WithRunID(ctx, "run-1")
	runID, ok := GetRunID(ctx)
	if !ok || runID != "run-1" {
		t.Errorf("GetRunID() = %q, %v, want run-1, true", runID, ok)
	}

	if _, ok := GetRunID(WithRunID(context.Background(), "")); ok {
		t.Error("empty run ID should report false")
	}
}

func TestEnsureRunID(t *testing.T) {
	t.Parallel()

	ctx, runID := EnsureRunID(context.Background())
	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("generated run ID %q is not a UUID: %v", runID, err)
	}
	if got, _ := GetRunID(ctx); got != runID {
		t.Errorf("context run ID = %q, want %q", got, runID)
	}

	same, again := EnsureRunID(ctx)
	if again != runID || same != ctx {
		t.Error("EnsureRunID() must keep an existing run ID")
	}
}

func TestUnit(t *testing.T) {
	t.Parallel()

	if GetUnit(context.Background()) != "" {
		t.Error("GetUnit() on empty context should be empty")
	}
	ctx := WithUnit(context.Background(), "page:3")
	if got := GetUnit(ctx); got != "page:3" {
		t.Errorf("GetUnit() = %q, want page:3", got)
	}
}

func TestPreserveTracing(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	parent = WithRunID(parent, "run-42")
	parent = WithUnit(parent, "0505001")
	cancel()

	detached := PreserveTracing(parent)
	if detached.Err() != nil {
		t.Errorf("detached context should not be canceled, got %v", detached.Err())
	}
	if _, ok := detached.Deadline(); ok {
		t.Error("detached context should have no deadline")
	}
	if runID, _ := GetRunID(detached); runID != "run-42" {
		t.Errorf("run ID not preserved, got %q", runID)
	}
	if GetUnit(detached) != "" {
		t.Error("unit should not be carried over")
	}
}
