// Package logger builds the application's [log/slog] logger.
//
// Records go to a JSON or text handler on stdout, optionally fanned out to
// Sentry when a DSN is configured. A [Decorator] adds request-scoped
// attributes (request id, language, user id) pulled from the context of
// every *Context logging call.
//
//	log, flush := logger.New(cfg.Log, os.Stdout, web.RequestIDExtractor())
//	defer flush()
//	log.InfoContext(ctx, "album saved", slog.Int64("id", album.ID))
package logger
