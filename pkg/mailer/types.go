package mailer

import (
	"context"
	"fmt"
	"log/slog"
)

// Email is a rendered message ready for delivery.
type Email struct {
	Tags    map[string]string
	Subject string
	HTML    string
	Text    string
	From    string
	ReplyTo string
	To      []string
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Address formats "Name <email>", or the bare email without a name.
func Address(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// LogSender logs emails instead of delivering them.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) Send(ctx context.Context, email *Email) error {
	s.Log.InfoContext(ctx, "email not delivered: no provider configured",
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
	)
	return nil
}
