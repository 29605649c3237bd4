package health

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// ErrCheckTimeout replaces the error of a check that outlived the timeout.
var ErrCheckTimeout = errors.New("health: check timeout")

// CheckFunc reports a dependency's health.
type CheckFunc func(ctx context.Context) error

// Report is the outcome of one run.
type Report struct {
	Checks map[string]Result `json:"checks,omitempty"`
	Status string            `json:"status"`
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool { return r.Status == StatusHealthy }

// Result is the outcome of one check.
type Result struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout bounds a whole run. Default: 3s.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failing checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.log = l
		}
	}
}

// Checker runs named checks.
type Checker struct {
	checks  map[string]CheckFunc
	log     *slog.Logger
	timeout time.Duration
}

// New creates a Checker without checks.
func New(opts ...Option) *Checker {
	c := &Checker{
		checks:  make(map[string]CheckFunc),
		log:     slog.New(slog.DiscardHandler),
		timeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add registers a check. Nil checks are ignored so optional dependencies
// can be passed unconditionally.
func (c *Checker) Add(name string, fn CheckFunc) *Checker {
	if fn != nil {
		c.checks[name] = fn
	}
	return c
}

// Names returns the registered check names in order.
func (c *Checker) Names() []string {
	return slices.Sorted(maps.Keys(c.checks))
}

// Run executes every check concurrently.
func (c *Checker) Run(ctx context.Context) Report {
	report := Report{Status: StatusHealthy}
	if len(c.checks) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var mu sync.Mutex
	report.Checks = make(map[string]Result, len(c.checks))

	// Checks never return their errors to the group so one failure does not
	// cancel the others.
	var g errgroup.Group
	for name, fn := range c.checks {
		g.Go(func() error {
			res := Result{Status: StatusHealthy}
			if err := fn(ctx); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = ErrCheckTimeout
				}
				res = Result{Status: StatusUnhealthy, Error: err.Error()}
				c.log.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}
			mu.Lock()
			report.Checks[name] = res
			if res.Status == StatusUnhealthy {
				report.Status = StatusUnhealthy
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return report
}
