// Package tasks holds the background jobs of the application.
package tasks

import (
	"embed"
	"io/fs"
	"log/slog"

	"github.com/globomantics/cms/pkg/job"
	"github.com/globomantics/cms/pkg/mailer"
)

//go:embed emails
var emailFS embed.FS

// Emails returns the mail templates ("{name}.md").
func Emails() fs.FS {
	sub, err := fs.Sub(emailFS, "emails")
	if err != nil {
		panic(err)
	}
	return sub
}

// Options registers every task with a job.Manager or job.Inline.
func Options(m *mailer.Mailer, sessions ExpiredSessions, log *slog.Logger) []job.Option {
	return []job.Option{
		job.WithTask(NewSendWelcomeEmail(m)),
		job.WithTask(NewLogAdminDeleted(log)),
		job.WithScheduledTask(NewCleanupSessions(sessions, log)),
		job.WithLogger(log),
	}
}
