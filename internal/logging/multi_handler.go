package logging

import (
	"context"
	"log/slog"
)

// MultiHandler writes every record to a primary handler (stdout) and then to
// secondary sinks such as the system_logs table. Only the primary's error is
// returned; the stdout line is the record of last resort.
type MultiHandler struct {
	primary slog.Handler
	sinks   []slog.Handler
}

func NewMultiHandler(primary slog.Handler, sinks ...slog.Handler) *MultiHandler {
	return &MultiHandler{primary: primary, sinks: sinks}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if m.primary.Enabled(ctx, level) {
		return true
	}
	for _, h := range m.sinks {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range m.sinks {
		if h.Enabled(ctx, record.Level) {
			_ = h.Handle(ctx, record.Clone())
		}
	}
	if !m.primary.Enabled(ctx, record.Level) {
		return nil
	}
	return m.primary.Handle(ctx, record)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *MultiHandler) derive(fn func(slog.Handler) slog.Handler) *MultiHandler {
	sinks := make([]slog.Handler, len(m.sinks))
	for i, h := range m.sinks {
		sinks[i] = fn(h)
	}
	return &MultiHandler{primary: fn(m.primary), sinks: sinks}
}
