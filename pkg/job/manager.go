package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

// taskArgs carries every task through River under a single job kind.
type taskArgs struct {
	Task    string          `json:"task"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string { return "globomantics:task" }

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	cfg *config
}

func (w *taskWorker) Work(ctx context.Context, job *river.Job[taskArgs]) error {
	exec, ok := w.cfg.tasks[job.Args.Task]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, job.Args.Task)
	}
	return run(ctx, w.cfg.log, job.Args.Task, exec, job.Args.Payload,
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	)
}

// Manager queues tasks in PostgreSQL and works them off with River.
// Tasks can be enqueued before Start.
type Manager struct {
	client  *river.Client[pgx.Tx]
	cfg     *config
	mu      sync.Mutex
	started bool
}

// NewManager creates the River client for pool.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{cfg: cfg})

	periodic := make([]*river.PeriodicJob, 0, len(cfg.schedules))
	for _, s := range cfg.schedules {
		name := s.name
		periodic = append(periodic, river.NewPeriodicJob(
			s.schedule,
			func() (river.JobArgs, *river.InsertOpts) { return taskArgs{Task: name}, nil },
			&river.PeriodicJobOpts{RunOnStart: false},
		))
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       map[string]river.QueueConfig{river.QueueDefault: {MaxWorkers: cfg.maxWorkers}},
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.log,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{client: client, cfg: cfg}, nil
}

// Enqueue inserts a job for a registered task.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any) error {
	args, err := m.args(name, payload)
	if err != nil {
		return err
	}
	if _, err := m.client.Insert(ctx, args, nil); err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	return nil
}

// EnqueueTx inserts a job that becomes visible when tx commits.
func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any) error {
	args, err := m.args(name, payload)
	if err != nil {
		return err
	}
	if _, err := m.client.InsertTx(ctx, tx, args, nil); err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	return nil
}

func (m *Manager) args(name string, payload any) (taskArgs, error) {
	if _, ok := m.cfg.tasks[name]; !ok {
		return taskArgs{}, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return taskArgs{}, fmt.Errorf("job: marshal payload: %w", err)
	}
	return taskArgs{Task: name, Payload: raw}, nil
}

// Start begins working jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start: %w", err)
	}
	m.started = true
	m.cfg.log.InfoContext(ctx, "job manager started", slog.Any("tasks", m.cfg.names()))
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop: %w", err)
	}
	m.started = false
	m.cfg.log.InfoContext(ctx, "job manager stopped")
	return nil
}

// Tasks returns the registered task names.
func (m *Manager) Tasks() []string { return m.cfg.names() }

// Migrate creates or upgrades River's tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("job: migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("job: migrate: %w", err)
	}
	return nil
}

var _ Enqueuer = (*Manager)(nil)
