package middlewares

import (
	"context"
	"errors"
	"time"

	"github.com/globomantics/cms/internal/web"
)

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Timeout returns middleware that puts a deadline on the request context.
// Repository calls observe it; when the handler fails after the deadline
// passed, the error becomes a *TimeoutError.
func Timeout(timeout time.Duration) web.Middleware {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			c.SetContext(ctx)
			err := next(c)
			// Keep values added downstream but drop the deadline, so the
			// error handler and session hooks can still do their work.
			c.SetContext(context.WithoutCancel(c.Context()))

			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				c.LogWarn("request timeout", "timeout", timeout.String(), "error", err)
				return &TimeoutError{Duration: timeout}
			}
			return err
		}
	}
}
