package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Router is the interface handlers use to declare routes.
type Router interface {
	GET(path string, h HandlerFunc, mw ...Middleware) *Endpoint
	POST(path string, h HandlerFunc, mw ...Middleware) *Endpoint
	PUT(path string, h HandlerFunc, mw ...Middleware) *Endpoint
	PATCH(path string, h HandlerFunc, mw ...Middleware) *Endpoint
	DELETE(path string, h HandlerFunc, mw ...Middleware) *Endpoint

	// Group creates an inline group sharing the current prefix.
	Group(fn func(r Router))

	// Route creates a group under a pattern prefix.
	Route(pattern string, fn func(r Router))

	// Use appends middleware to the router's stack. Must be called
	// before any route is registered on the same router.
	Use(mw ...Middleware)

	// Mount attaches a plain http.Handler at the given pattern.
	Mount(pattern string, h http.Handler)
}

// Endpoint describes one registered route. Named endpoints show up in
// route listings and can be resolved with App.Path.
type Endpoint struct {
	Method  string
	Pattern string
	Name    string
}

// Named sets the endpoint name, e.g. "album.list".
func (e *Endpoint) Named(name string) *Endpoint {
	e.Name = name
	return e
}

// routerAdapter wraps chi.Router to implement the Router interface.
type routerAdapter struct {
	router chi.Router
	app    *App
	prefix string
}

func (r *routerAdapter) GET(path string, h HandlerFunc, mw ...Middleware) *Endpoint {
	return r.handle(http.MethodGet, path, h, mw)
}

func (r *routerAdapter) POST(path string, h HandlerFunc, mw ...Middleware) *Endpoint {
	return r.handle(http.MethodPost, path, h, mw)
}

func (r *routerAdapter) PUT(path string, h HandlerFunc, mw ...Middleware) *Endpoint {
	return r.handle(http.MethodPut, path, h, mw)
}

func (r *routerAdapter) PATCH(path string, h HandlerFunc, mw ...Middleware) *Endpoint {
	return r.handle(http.MethodPatch, path, h, mw)
}

func (r *routerAdapter) DELETE(path string, h HandlerFunc, mw ...Middleware) *Endpoint {
	return r.handle(http.MethodDelete, path, h, mw)
}

func (r *routerAdapter) Group(fn func(Router)) {
	r.router.Group(func(cr chi.Router) {
		fn(&routerAdapter{router: cr, app: r.app, prefix: r.prefix})
	})
}

func (r *routerAdapter) Route(pattern string, fn func(Router)) {
	r.router.Route(pattern, func(cr chi.Router) {
		fn(&routerAdapter{router: cr, app: r.app, prefix: joinPattern(r.prefix, pattern)})
	})
}

func (r *routerAdapter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.router.Use(r.app.adaptMiddleware(m))
	}
}

func (r *routerAdapter) Mount(pattern string, h http.Handler) {
	r.router.Mount(pattern, h)
}

func (r *routerAdapter) handle(method, path string, h HandlerFunc, mw []Middleware) *Endpoint {
	r.router.Method(method, path, r.app.wrapHandler(Chain(mw...)(h)))
	e := &Endpoint{Method: method, Pattern: joinPattern(r.prefix, path)}
	r.app.endpoints = append(r.app.endpoints, e)
	return e
}

func joinPattern(prefix, path string) string {
	if prefix == "" {
		return path
	}
	return strings.TrimSuffix(prefix, "/") + path
}

// adaptMiddleware converts a Middleware to chi middleware. The Context
// built for the middleware is carried to the wrapped handler through the
// request context so both share one response writer and session. Errors
// of the wrapped handler are returned to mw; the outermost middleware
// hands them to the error handler.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := a.contextFor(w, r)
			h := mw(func(c Context) error {
				next.ServeHTTP(c.Response(), c.Request())
				return rc.takePending()
			})
			a.finish(rc, func() error { return h(rc) })
		})
	}
}

// finish runs fn one middleware level deeper. A failure is parked for the
// enclosing middleware, or handled when no middleware encloses fn.
func (a *App) finish(rc *requestContext, fn func() error) {
	err := func() error {
		rc.depth++
		defer func() { rc.depth-- }()
		return fn()
	}()
	if err == nil {
		return
	}
	if rc.depth > 0 {
		rc.pending = err
		return
	}
	a.handleError(rc, err)
}
