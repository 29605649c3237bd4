package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/globomantics/cms/internal/config"
	"github.com/globomantics/cms/internal/repository"
	"github.com/globomantics/cms/internal/tasks"
	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/middlewares"
	"github.com/globomantics/cms/pkg/cache"
	"github.com/globomantics/cms/pkg/db"
	"github.com/globomantics/cms/pkg/health"
	"github.com/globomantics/cms/pkg/job"
	"github.com/globomantics/cms/pkg/mailer"
	"github.com/globomantics/cms/pkg/mailer/resend"
	"github.com/globomantics/cms/pkg/redis"
	"github.com/globomantics/cms/pkg/storage"
)

// pageCachePrefix namespaces the page cache in a shared Redis.
const pageCachePrefix = "globomantics:pages"

// Runtime owns the live connections of a running server.
type Runtime struct {
	App     *web.App
	Pool    *pgxpool.Pool
	cfg     *config.Config
	log     *slog.Logger
	startup []web.Hook
	closers []web.Hook
}

// Open connects to PostgreSQL (and Redis when configured), applies the
// migrations and builds the app. Close releases whatever was opened, also
// when Open fails halfway.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (rt *Runtime, err error) {
	rt = &Runtime{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			err = errors.Join(err, rt.Close(context.WithoutCancel(ctx)))
			rt = nil
		}
	}()

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return rt, err
	}
	rt.Pool = pool
	rt.closers = append(rt.closers, db.Shutdown(pool))
	if err := Migrate(ctx, pool, log); err != nil {
		return rt, err
	}

	checker := health.New(health.WithLogger(log)).Add("postgres", db.Healthcheck(pool))
	store := repository.New(pool)

	var pages cache.Cache[middlewares.CachedPage]
	if cfg.Redis.Enabled() {
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return rt, err
		}
		rt.closers = append(rt.closers, redis.Shutdown(client))
		checker.Add("redis", redis.Healthcheck(client))
		pages = cache.NewRedis[middlewares.CachedPage](client, cache.WithPrefix(pageCachePrefix), cache.WithTTL(cfg.CacheTTL))
	}

	files, err := openStorage(cfg.Storage)
	if err != nil {
		return rt, err
	}
	if d, ok := files.(*storage.Dir); ok {
		rt.closers = append(rt.closers, func(context.Context) error { return d.Close() })
	}

	var sender mailer.Sender = mailer.LogSender{Log: log}
	if cfg.Resend.Enabled() {
		sender = resend.New(cfg.Resend)
	} else {
		log.Warn("RESEND_API_KEY not set, emails are logged instead of sent")
	}
	taskOpts := tasks.Options(mailer.New(sender, tasks.Emails(), cfg.Mail), store.Sessions, log)

	var jobs job.Enqueuer
	if cfg.JobWorkers > 0 {
		manager, err := job.NewManager(pool, append(taskOpts, job.WithMaxWorkers(cfg.JobWorkers))...)
		if err != nil {
			return rt, err
		}
		rt.startup = append(rt.startup, manager.Start)
		stop := func(ctx context.Context) error {
			if err := manager.Stop(ctx); err != nil && !errors.Is(err, job.ErrNotStarted) {
				return err
			}
			return nil
		}
		rt.closers = append([]web.Hook{stop}, rt.closers...)
		jobs = manager
	} else {
		inline, err := job.NewInline(taskOpts...)
		if err != nil {
			return rt, err
		}
		jobs = inline
	}

	rt.App, err = NewApp(Deps{
		Config:   cfg,
		Logger:   log,
		Store:    store,
		Sessions: store.Sessions,
		Storage:  files,
		Pages:    pages,
		Jobs:     jobs,
		Health:   checker,
	})
	return rt, err
}

// Migrate applies the schema and the job queue tables.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	if err := db.Migrate(ctx, pool, repository.Migrations(), log); err != nil {
		return err
	}
	return job.Migrate(ctx, pool)
}

func openStorage(cfg storage.Config) (storage.Storage, error) {
	if cfg.UsesS3() {
		s3, err := storage.NewS3(cfg)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	dir, err := storage.NewDir(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return dir, nil
}

// Run serves until the process is signalled, then stops the job workers
// and closes the connections.
func (rt *Runtime) Run(ctx context.Context) error {
	opts := []web.RunOption{
		web.BaseContext(ctx),
		web.ShutdownTimeout(rt.cfg.ShutdownTimeout),
	}
	for _, hook := range rt.startup {
		opts = append(opts, web.StartupHook(hook))
	}
	for _, hook := range rt.closers {
		opts = append(opts, web.ShutdownHook(hook))
	}
	if rt.cfg.IsDevSecret() {
		rt.log.Warn("SECRET_KEY is the development default, do not use it in production")
	}
	return rt.App.Run(rt.cfg.Address, opts...)
}

// Close releases the connections without serving. Run does this itself
// on shutdown.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for _, hook := range rt.closers {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("server: close: %w", errors.Join(errs...))
	}
	return nil
}
