package logger

import (
	"context"
	"log/slog"

	"github.com/garyellow/ut-course-catalog-go/internal/ctxutil"
)

// ContextHandler is a slog.Handler that extracts tracing values (run ID,
// unit) from the context and adds them as attributes to log records.
//
// It wraps another handler so call sites only pass ctx to the *Context
// logging methods instead of threading the values manually.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a new ContextHandler that wraps the provided handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds context values before delegating to the wrapped handler.
//
// Context values extracted:
//   - run_id: crawl run ID shared by every fetch of one crawl
//   - unit: result page or time-table code being fetched
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if runID, ok := ctxutil.GetRunID(ctx); ok {
		r.AddAttrs(slog.String("run_id", runID))
	}
	if unit := ctxutil.GetUnit(ctx); unit != "" {
		r.AddAttrs(slog.String("unit", unit))
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler whose attributes consist of
// both the receiver's attributes and the arguments.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new ContextHandler with the given group name prepended
// to the current group name.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}
