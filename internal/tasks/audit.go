package tasks

import (
	"context"
	"log/slog"

	"github.com/globomantics/cms/internal/admin"
)

// LogAdminDeleted records deletions made from the admin tables.
type LogAdminDeleted struct {
	log *slog.Logger
}

func NewLogAdminDeleted(log *slog.Logger) *LogAdminDeleted {
	return &LogAdminDeleted{log: log}
}

func (t *LogAdminDeleted) Name() string { return admin.TaskDeleted }

func (t *LogAdminDeleted) Handle(ctx context.Context, ev admin.DeletedEvent) error {
	t.log.InfoContext(ctx, ev.Message(),
		slog.String("resource", ev.Resource),
		slog.Int64("id", ev.ID),
		slog.String("admin", ev.Admin),
	)
	return nil
}
