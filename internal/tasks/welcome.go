package tasks

import (
	"context"
	"fmt"

	"github.com/globomantics/cms/pkg/mailer"
)

// TaskSendWelcomeEmail is enqueued after a successful registration.
const TaskSendWelcomeEmail = "send_welcome_email"

// WelcomeEmail is the payload of TaskSendWelcomeEmail.
type WelcomeEmail struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	LoginURL string `json:"login_url"`
}

// SendWelcomeEmail greets a new user.
type SendWelcomeEmail struct {
	mailer *mailer.Mailer
}

func NewSendWelcomeEmail(m *mailer.Mailer) *SendWelcomeEmail {
	return &SendWelcomeEmail{mailer: m}
}

func (t *SendWelcomeEmail) Name() string { return TaskSendWelcomeEmail }

func (t *SendWelcomeEmail) Handle(ctx context.Context, p WelcomeEmail) error {
	if err := t.mailer.Send(ctx, p.Email, "welcome", p); err != nil {
		return fmt.Errorf("welcome email for %s: %w", p.Username, err)
	}
	return nil
}
