package mailer_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/pkg/logger"
	"github.com/globomantics/cms/pkg/mailer"
)

type recorder struct {
	err  error
	sent []*mailer.Email
}

func (r *recorder) Send(_ context.Context, e *mailer.Email) error {
	r.sent = append(r.sent, e)
	return r.err
}

var templates = fstest.MapFS{
	"welcome.md": {Data: []byte(`---
subject: "Welcome, {{.Username}}"
tags:
  kind: welcome
---
Hi **{{.Username}}**, thanks for joining.
`)},
	"nosubject.md": {Data: []byte("Hello")},
	"broken.md":    {Data: []byte("---\nsubject: x\n")},
}

func TestSend(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	m := mailer.New(rec, templates, mailer.Config{From: "noreply@example.com", AppName: "Globomantics"})

	require.NoError(t, m.Send(context.Background(), "ana@example.com", "welcome", map[string]string{"Username": "ana"}))
	require.Len(t, rec.sent, 1)

	e := rec.sent[0]
	assert.Equal(t, []string{"ana@example.com"}, e.To)
	assert.Equal(t, "Welcome, ana", e.Subject)
	assert.Equal(t, "noreply@example.com", e.From)
	assert.Equal(t, "welcome", e.Tags["kind"])
	assert.Contains(t, e.HTML, "<strong>ana</strong>")
	assert.Contains(t, e.HTML, "Globomantics")
	assert.Contains(t, e.Text, "Hi **ana**")
}

func TestSendErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	data := map[string]string{"Username": "ana"}

	m := mailer.New(&recorder{}, templates, mailer.Config{})
	assert.ErrorIs(t, m.Send(ctx, "", "welcome", data), mailer.ErrNoRecipient)
	assert.ErrorIs(t, m.Send(ctx, "a@b.c", "missing", data), mailer.ErrTemplateNotFound)
	assert.ErrorIs(t, m.Send(ctx, "a@b.c", "nosubject", data), mailer.ErrNoSubject)
	assert.ErrorIs(t, m.Send(ctx, "a@b.c", "broken", data), mailer.ErrInvalidFrontmatter)
	assert.ErrorIs(t, m.Send(ctx, "a@b.c", "welcome", map[string]string{}), mailer.ErrRenderFailed)

	failing := mailer.New(&recorder{err: errors.New("smtp down")}, templates, mailer.Config{})
	assert.ErrorIs(t, failing.Send(ctx, "a@b.c", "welcome", data), mailer.ErrSendFailed)
}

func TestLogSender(t *testing.T) {
	t.Parallel()
	s := mailer.LogSender{Log: logger.Discard()}
	assert.NoError(t, s.Send(context.Background(), &mailer.Email{Subject: "x"}))
}

func TestAddress(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ana@example.com", mailer.Address("", "ana@example.com"))
	assert.Equal(t, "Ana <ana@example.com>", mailer.Address("Ana", "ana@example.com"))
}
