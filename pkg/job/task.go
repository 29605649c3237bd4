package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/robfig/cron/v3"
)

// Enqueuer schedules a named task with a JSON-encodable payload.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any) error
}

// executor runs a task from its encoded payload.
type executor func(ctx context.Context, payload json.RawMessage) error

type scheduled struct {
	schedule cron.Schedule
	name     string
	expr     string
}

type config struct {
	tasks      map[string]executor
	log        *slog.Logger
	schedules  []scheduled
	errs       []error
	maxWorkers int
}

func newConfig(opts []Option) (*config, error) {
	c := &config{
		tasks:      make(map[string]executor),
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxWorkers: 10,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, errors.Join(c.errs...)
}

func (c *config) names() []string {
	return slices.Sorted(maps.Keys(c.tasks))
}

// Option configures a Manager or Inline runner.
type Option func(*config)

// WithTask registers a task whose payload type P comes from its Handle
// method.
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.tasks[task.Name()] = func(ctx context.Context, raw json.RawMessage) error {
			var p P
			if len(raw) > 0 && string(raw) != "null" {
				if err := json.Unmarshal(raw, &p); err != nil {
					return errors.Join(ErrInvalidPayload, err)
				}
			}
			return task.Handle(ctx, p)
		}
	}
}

// WithScheduledTask registers a task that runs on a five field cron
// schedule (minute hour day month weekday).
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		sched, err := ParseCron(task.Schedule())
		if err != nil {
			c.errs = append(c.errs, fmt.Errorf("task %s: %w", task.Name(), err))
			return
		}
		c.tasks[task.Name()] = func(ctx context.Context, _ json.RawMessage) error {
			return task.Handle(ctx)
		}
		c.schedules = append(c.schedules, scheduled{name: task.Name(), expr: task.Schedule(), schedule: sched})
	}
}

// WithLogger sets the logger used for task execution.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMaxWorkers bounds concurrent task execution. Default: 10.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// ParseCron parses a five field cron expression.
func ParseCron(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidCron, expr, err)
	}
	return s, nil
}

func run(ctx context.Context, log *slog.Logger, name string, exec executor, payload json.RawMessage, attrs ...slog.Attr) error {
	start := time.Now()
	attrs = append(attrs, slog.String("task", name))
	log.LogAttrs(ctx, slog.LevelDebug, "task started", attrs...)

	if err := exec(ctx, payload); err != nil {
		log.LogAttrs(ctx, slog.LevelError, "task failed", append(attrs, slog.Any("error", err))...)
		return err
	}

	log.LogAttrs(ctx, slog.LevelDebug, "task completed", append(attrs, slog.Duration("took", time.Since(start)))...)
	return nil
}
