package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// FromContext builds an extractor reading a string stored under key.
// Empty values are skipped.
func FromContext(key any, attr string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if ctx == nil {
			return slog.Attr{}, false
		}
		switch v := ctx.Value(key).(type) {
		case string:
			if v != "" {
				return slog.String(attr, v), true
			}
		case int64:
			if v != 0 {
				return slog.Int64(attr, v), true
			}
		}
		return slog.Attr{}, false
	}
}

// Decorator adds context-extracted attributes to every record before
// passing it on.
type Decorator struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// NewDecorator wraps next. Nil extractors are dropped.
func NewDecorator(next slog.Handler, extractors ...ContextExtractor) *Decorator {
	d := &Decorator{next: next}
	for _, ex := range extractors {
		if ex != nil {
			d.extractors = append(d.extractors, ex)
		}
	}
	return d
}

func (d *Decorator) Enabled(ctx context.Context, level slog.Level) bool {
	return d.next.Enabled(ctx, level)
}

func (d *Decorator) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range d.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return d.next.Handle(ctx, rec)
}

func (d *Decorator) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Decorator{next: d.next.WithAttrs(attrs), extractors: d.extractors}
}

func (d *Decorator) WithGroup(name string) slog.Handler {
	return &Decorator{next: d.next.WithGroup(name), extractors: d.extractors}
}
