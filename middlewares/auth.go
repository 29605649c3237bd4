package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/pkg/logger"
)

// LoginPath and HomePath are application paths, prefixed with the
// language at redirect time.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Flash messages, also used as translation keys.
const (
	MsgLoginRequired = "You need to be logged in to access this page."
)

// LoginRequired redirects anonymous users to the login page with a danger
// flash. HTMX requests get HX-Redirect.
func LoginRequired() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			if c.IsAuthenticated() {
				return next(c)
			}
			if err := c.Flash(web.FlashDanger, c.T(MsgLoginRequired)); err != nil {
				return err
			}
			return c.Redirect(http.StatusSeeOther, c.URL(LoginPath))
		}
	}
}

// AnonymousOnly sends authenticated users home, e.g. away from the
// register and login pages.
func AnonymousOnly() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			if c.IsAuthenticated() {
				return c.Redirect(http.StatusSeeOther, c.URL(HomePath))
			}
			return next(c)
		}
	}
}

type (
	userKey   struct{}
	userIDKey struct{}
)

// CurrentUser loads the authenticated user once per request and stores it
// in the context for User. A session pointing at a deleted user is
// destroyed and the request continues anonymously.
func CurrentUser[U any](load func(ctx context.Context, id int64) (U, error), missing func(error) bool) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			uid := c.UserID()
			if uid == 0 {
				return next(c)
			}
			u, err := load(c, uid)
			if err != nil {
				if missing == nil || !missing(err) {
					return err
				}
				c.LogWarn("session references missing user", "user_id", uid)
				if err := c.DestroySession(); err != nil {
					return err
				}
				return next(c)
			}
			c.Set(userKey{}, u)
			c.Set(userIDKey{}, uid)
			return next(c)
		}
	}
}

// User returns the user stored by CurrentUser.
func User[U any](ctx context.Context) (U, bool) {
	u, ok := ctx.Value(userKey{}).(U)
	return u, ok
}

// UserIDExtractor adds "user_id" to log records of requests by a user
// loaded through CurrentUser.
func UserIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := ctx.Value(userIDKey{}).(int64); ok {
			return slog.Int64("user_id", id), true
		}
		return slog.Attr{}, false
	}
}
