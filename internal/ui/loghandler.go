package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"
)

// MultiHandler fans a record out to every handler that accepts its level.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler combines handlers; each keeps its own level filter.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled reports whether any handler accepts level.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

//nolint:ireturn // slog.Handler contract
func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: out}
}

//nolint:ireturn // slog.Handler contract
func (m *MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: out}
}

// NewConsoleHandler returns the handler for human-facing log output. On a
// terminal it is a colored charmbracelet/log handler with a short
// timestamp; otherwise a plain slog text handler so piped output stays
// greppable.
//
//nolint:ireturn // returns whichever handler fits the writer
func NewConsoleHandler(w io.Writer, level slog.Level) slog.Handler {
	if !IsTerminalWriter(w) {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
	return log.NewWithOptions(w, log.Options{
		Level:           log.Level(level),
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "assetsync",
	})
}
