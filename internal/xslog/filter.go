package xslog

import (
	"context"
	"log/slog"
)

var _ slog.Handler = (*FilterHandler)(nil)

// FilterFunc reports whether a record should be logged.
type FilterFunc func(ctx context.Context, record slog.Record) bool

// NewFilterHandler wraps handler so only records accepted by filter are
// passed through. A nil filter accepts everything.
func NewFilterHandler(handler slog.Handler, filter FilterFunc) *FilterHandler {
	if filter == nil {
		filter = func(ctx context.Context, record slog.Record) bool {
			return true
		}
	}
	return &FilterHandler{handler: handler, filter: filter}
}

type FilterHandler struct {
	handler slog.Handler
	filter  FilterFunc
}

func (h *FilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *FilterHandler) Handle(ctx context.Context, record slog.Record) error {
	if !h.filter(ctx, record) {
		return nil
	}
	return h.handler.Handle(ctx, record)
}

func (h *FilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &FilterHandler{handler: h.handler.WithAttrs(attrs), filter: h.filter}
}

func (h *FilterHandler) WithGroup(name string) slog.Handler {
	return &FilterHandler{handler: h.handler.WithGroup(name), filter: h.filter}
}
