// Package job runs background tasks.
//
// Tasks are plain structs with Name and Handle methods, registered through
// [WithTask] and [WithScheduledTask]. The payload type is inferred from the
// Handle signature and travels as JSON:
//
//	type SendWelcome struct{ mailer *mailer.Mailer }
//
//	func (SendWelcome) Name() string { return "send_welcome_email" }
//	func (t SendWelcome) Handle(ctx context.Context, p WelcomePayload) error { ... }
//
// [Manager] queues tasks in PostgreSQL through River and runs them on its
// workers, firing scheduled tasks from cron expressions. [Inline] runs the
// same tasks synchronously in the calling goroutine, which suits tests and
// deployments without a queue. Both satisfy [Enqueuer].
package job
