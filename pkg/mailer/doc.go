// Package mailer renders Markdown email templates and hands the result to a
// delivery [Sender].
//
// Templates are Markdown files with YAML front matter. The front matter
// provides the subject; the body is a text/template executed with the send
// data, converted to HTML with goldmark and wrapped in a minimal layout:
//
//	---
//	subject: "Welcome to Globomantics, {{.Username}}"
//	---
//	Hi **{{.Username}}**, thanks for registering.
//
// The sender is the resend subpackage in production and [LogSender] when no
// API key is configured.
package mailer
