package tasks

import (
	"context"
	"log/slog"
)

const (
	TaskCleanupSessions     = "cleanup_sessions"
	cleanupSessionsSchedule = "0 * * * *"
)

// ExpiredSessions removes sessions past their expiry.
type ExpiredSessions interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupSessions runs hourly and prunes the session table.
type CleanupSessions struct {
	store ExpiredSessions
	log   *slog.Logger
}

func NewCleanupSessions(store ExpiredSessions, log *slog.Logger) *CleanupSessions {
	return &CleanupSessions{store: store, log: log}
}

func (t *CleanupSessions) Name() string     { return TaskCleanupSessions }
func (t *CleanupSessions) Schedule() string { return cleanupSessionsSchedule }

func (t *CleanupSessions) Handle(ctx context.Context) error {
	n, err := t.store.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		t.log.InfoContext(ctx, "expired sessions removed", slog.Int64("count", n))
	}
	return nil
}
