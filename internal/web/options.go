package web

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/globomantics/cms/pkg/cookie"
	"github.com/globomantics/cms/pkg/health"
	"github.com/globomantics/cms/pkg/job"
	"github.com/globomantics/cms/pkg/storage"
)

// Option configures the App.
type Option func(*App)

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMiddleware appends global middleware, applied to every route in
// the order given.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHTTPMiddleware appends plain net/http middleware. It runs before
// every Middleware added with WithMiddleware.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.httpMiddlewares = append(a.httpMiddlewares, mw...)
	}
}

// WithHandlers registers route handlers.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithStaticFiles mounts fsys under pattern, e.g. "/static/".
func WithStaticFiles(pattern string, fsys fs.FS) Option {
	return func(a *App) {
		pattern = strings.TrimSuffix(strings.TrimSuffix(pattern, "*"), "/") + "/"
		a.staticRoutes = append(a.staticRoutes, staticRoute{
			pattern: pattern,
			handler: staticHandler(pattern, fsys),
		})
	}
}

// WithErrorHandler sets the handler for errors returned by handlers.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithNotFoundHandler sets the handler for unmatched routes.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets the handler for routes matched by
// path but not by method.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealth mounts the checker at /health/live and /health/ready.
func WithHealth(checker *health.Checker) Option {
	return func(a *App) {
		a.health = checker
	}
}

// WithCookieManager sets the cookie manager used for flashes and cookies.
func WithCookieManager(m *cookie.Manager) Option {
	return func(a *App) {
		if m != nil {
			a.cookieManager = m
		}
	}
}

// WithSession enables server-side sessions.
func WithSession(sm *SessionManager) Option {
	return func(a *App) {
		a.sessionManager = sm
	}
}

// WithJobs sets the queue used by Context.Enqueue.
func WithJobs(e job.Enqueuer) Option {
	return func(a *App) {
		a.jobs = e
	}
}

// WithStorage sets the object storage returned by Context.Storage.
func WithStorage(s storage.Storage) Option {
	return func(a *App) {
		a.storage = s
	}
}

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(a *App) {
		a.maxBodyBytes = n
	}
}
