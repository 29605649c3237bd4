package web

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/globomantics/cms/pkg/cookie"
	"github.com/globomantics/cms/pkg/health"
	"github.com/globomantics/cms/pkg/job"
	"github.com/globomantics/cms/pkg/logger"
	"github.com/globomantics/cms/pkg/storage"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// Default health check paths.
const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
)

// App wires routing, middleware and the per-request collaborators.
// It is immutable after New returns.
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	logger                  *slog.Logger
	cookieManager           *cookie.Manager
	sessionManager          *SessionManager
	jobs                    job.Enqueuer
	storage                 storage.Storage
	health                  *health.Checker
	httpMiddlewares         []func(http.Handler) http.Handler
	middlewares             []Middleware
	handlers                []Handler
	staticRoutes            []staticRoute
	endpoints               []*Endpoint
	maxBodyBytes            int64
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
//
// Example:
//
//	app := web.New(
//	    web.WithLogger(log),
//	    web.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    web.WithHandlers(handlers.NewAuth(users), handlers.NewAlbums(albums)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:        chi.NewRouter(),
		logger:        logger.Discard(),
		cookieManager: cookie.New(),
		errorHandler:  DefaultErrorHandler,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Router returns the app as an http.Handler.
func (a *App) Router() http.Handler {
	return a.router
}

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Endpoints returns every route registered through handlers, in
// registration order.
func (a *App) Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(a.endpoints))
	for _, e := range a.endpoints {
		out = append(out, *e)
	}
	return out
}

// Path resolves a named endpoint, substituting URL parameters in order.
// Regexp constraints such as {id:[0-9]+} are replaced like plain params.
func (a *App) Path(name string, params ...string) (string, error) {
	i := slices.IndexFunc(a.endpoints, func(e *Endpoint) bool { return e.Name == name })
	if i < 0 {
		return "", fmt.Errorf("web: unknown endpoint %q", name)
	}

	var b strings.Builder
	pattern := a.endpoints[i].Pattern
	for {
		open := strings.IndexByte(pattern, '{')
		if open < 0 {
			b.WriteString(pattern)
			break
		}
		end := strings.IndexByte(pattern[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("web: malformed pattern %q", a.endpoints[i].Pattern)
		}
		if len(params) == 0 {
			return "", fmt.Errorf("web: missing parameter for %q", name)
		}
		b.WriteString(pattern[:open])
		b.WriteString(params[0])
		params = params[1:]
		pattern = pattern[open+end+1:]
	}
	return b.String(), nil
}

func (a *App) setupRoutes() {
	for _, mw := range a.httpMiddlewares {
		a.router.Use(mw)
	}
	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.health != nil {
		a.router.Get(LivenessPath, a.health.Live)
		a.router.Get(ReadinessPath, a.health.Ready)
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// wrapHandler converts a HandlerFunc to an http.HandlerFunc.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := a.contextFor(w, r)
		err := h(c)
		if err == nil {
			return
		}
		if c.depth > 0 {
			c.pending = err
			return
		}
		a.handleError(c, err)
	}
}

// handleError passes err to the error handler unless a response was
// already written.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		a.logger.ErrorContext(c, "error after response was written", "error", err)
		return
	}
	if herr := a.errorHandler(c, err); herr != nil && !c.Written() {
		a.logger.ErrorContext(c, "error handler failed", "error", herr)
		http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// DefaultErrorHandler writes HTTPErrors as plain text and turns anything
// else into a logged 500.
func DefaultErrorHandler(c Context, err error) error {
	if he := AsHTTPError(err); he != nil {
		return c.String(he.Code, he.Message)
	}
	c.LogError("request failed", "error", err)
	return c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// staticHandler serves fsys under pattern with the prefix stripped.
func staticHandler(pattern string, fsys fs.FS) http.Handler {
	prefix := strings.TrimSuffix(pattern, "/")
	return http.StripPrefix(prefix, http.FileServerFS(fsys))
}
