package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Config holds sender defaults.
type Config struct {
	From    string `env:"MAIL_FROM" envDefault:"noreply@globomantics.local"`
	AppName string `env:"MAIL_APP_NAME" envDefault:"Globomantics"`
}

var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Subject}}</title></head>
<body style="font-family:sans-serif;max-width:600px;margin:0 auto;padding:24px">
{{.Content}}
<p style="color:#888;font-size:12px">{{.AppName}}</p>
</body></html>`))

// Mailer renders templates from an fs.FS and sends them.
type Mailer struct {
	sender    Sender
	templates fs.FS
	md        goldmark.Markdown
	cfg       Config
}

// New creates a Mailer reading "{name}.md" templates from templates.
func New(sender Sender, templates fs.FS, cfg Config) *Mailer {
	return &Mailer{
		sender:    sender,
		templates: templates,
		md:        goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough)),
		cfg:       cfg,
	}
}

// Render executes a template and returns the email without sending it.
func (m *Mailer) Render(name string, data any) (*Email, error) {
	content, err := fs.ReadFile(m.templates, name+".md")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}
	meta, body, err := splitFrontMatter(content)
	if err != nil {
		return nil, err
	}
	if meta.Subject == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoSubject, name)
	}

	subject, err := execText(name+":subject", meta.Subject, data)
	if err != nil {
		return nil, err
	}
	text, err := execText(name, body, data)
	if err != nil {
		return nil, err
	}

	var html bytes.Buffer
	if err := m.md.Convert([]byte(text), &html); err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}
	var page bytes.Buffer
	err = layout.Execute(&page, map[string]any{
		"Subject": subject,
		"Content": template.HTML(html.String()), //nolint:gosec // rendered from trusted templates
		"AppName": m.cfg.AppName,
	})
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	return &Email{
		Subject: strings.TrimSpace(subject),
		HTML:    page.String(),
		Text:    text,
		From:    m.cfg.From,
		Tags:    meta.Tags,
	}, nil
}

// Send renders the named template with data and delivers it to "to".
func (m *Mailer) Send(ctx context.Context, to, name string, data any) error {
	if to == "" {
		return ErrNoRecipient
	}
	email, err := m.Render(name, data)
	if err != nil {
		return err
	}
	email.To = []string{to}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func execText(name, src string, data any) (string, error) {
	tmpl, err := texttemplate.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return buf.String(), nil
}
