package tasks_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/internal/admin"
	"github.com/globomantics/cms/internal/tasks"
	"github.com/globomantics/cms/pkg/job"
	"github.com/globomantics/cms/pkg/mailer"
)

type outbox struct {
	sent []*mailer.Email
	mu   sync.Mutex
}

func (o *outbox) Send(_ context.Context, e *mailer.Email) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, e)
	return nil
}

type sessionStore struct {
	err     error
	removed int64
	calls   int
}

func (s *sessionStore) DeleteExpired(context.Context) (int64, error) {
	s.calls++
	return s.removed, s.err
}

func newRunner(t *testing.T, store *sessionStore) (*job.Inline, *outbox, *bytes.Buffer) {
	t.Helper()
	box := &outbox{}
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	m := mailer.New(box, tasks.Emails(), mailer.Config{From: "noreply@example.com", AppName: "Globomantics"})

	runner, err := job.NewInline(tasks.Options(m, store, log)...)
	require.NoError(t, err)
	return runner, box, &logs
}

func TestRegisteredTasks(t *testing.T) {
	t.Parallel()

	runner, _, _ := newRunner(t, &sessionStore{})
	assert.ElementsMatch(t, []string{
		tasks.TaskSendWelcomeEmail,
		tasks.TaskCleanupSessions,
		admin.TaskDeleted,
	}, runner.Tasks())
}

func TestSendWelcomeEmail(t *testing.T) {
	t.Parallel()

	runner, box, _ := newRunner(t, &sessionStore{})
	err := runner.Enqueue(context.Background(), tasks.TaskSendWelcomeEmail, tasks.WelcomeEmail{
		Username: "stevie",
		Email:    "stevie@example.com",
		LoginURL: "https://globomantics.local/en/login",
	})
	require.NoError(t, err)

	require.Len(t, box.sent, 1)
	e := box.sent[0]
	assert.Equal(t, []string{"stevie@example.com"}, e.To)
	assert.Equal(t, "Welcome to Globomantics, stevie", e.Subject)
	assert.Contains(t, e.HTML, `href="https://globomantics.local/en/login"`)
}

func TestWelcomeEmailNeedsRecipient(t *testing.T) {
	t.Parallel()

	runner, box, _ := newRunner(t, &sessionStore{})
	err := runner.Enqueue(context.Background(), tasks.TaskSendWelcomeEmail, tasks.WelcomeEmail{Username: "stevie"})
	require.ErrorIs(t, err, mailer.ErrNoRecipient)
	assert.Empty(t, box.sent)
}

func TestCleanupSessions(t *testing.T) {
	t.Parallel()

	store := &sessionStore{removed: 3}
	runner, _, logs := newRunner(t, store)
	require.NoError(t, runner.RunScheduled(context.Background(), tasks.TaskCleanupSessions))
	assert.Equal(t, 1, store.calls)
	assert.Contains(t, logs.String(), "expired sessions removed")

	failing := &sessionStore{err: errors.New("db down")}
	runner, _, _ = newRunner(t, failing)
	require.Error(t, runner.RunScheduled(context.Background(), tasks.TaskCleanupSessions))
}

func TestLogAdminDeleted(t *testing.T) {
	t.Parallel()

	runner, _, logs := newRunner(t, &sessionStore{})
	err := runner.Enqueue(context.Background(), admin.TaskDeleted, admin.DeletedEvent{
		Resource: "album",
		ID:       7,
		Admin:    "ada",
	})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "Album with id 7 was deleted by ada")
}
