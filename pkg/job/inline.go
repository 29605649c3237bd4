package job

import (
	"context"
	"encoding/json"
	"fmt"
)

// Inline executes tasks synchronously on Enqueue. Scheduled tasks only run
// through RunScheduled.
type Inline struct {
	cfg *config
}

// NewInline creates an inline runner.
func NewInline(opts ...Option) (*Inline, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Inline{cfg: cfg}, nil
}

// Enqueue runs the task now and returns its error.
func (i *Inline) Enqueue(ctx context.Context, name string, payload any) error {
	exec, ok := i.cfg.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("job: marshal payload: %w", err)
	}
	return run(ctx, i.cfg.log, name, exec, raw)
}

// RunScheduled runs a scheduled task by name once.
func (i *Inline) RunScheduled(ctx context.Context, name string) error {
	return i.Enqueue(ctx, name, nil)
}

// Tasks returns the registered task names.
func (i *Inline) Tasks() []string { return i.cfg.names() }

var _ Enqueuer = (*Inline)(nil)
