package web

import (
	"context"
	"io"
)

// Handler declares routes on a router.
//
// Example:
//
//	type AlbumHandler struct {
//	    albums *repository.Albums
//	}
//
//	func (h *AlbumHandler) Routes(r web.Router) {
//	    r.GET("/album/", h.list).Named("album.list")
//	    r.POST("/album/create", h.create).Named("album.create")
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error hands the error to the app's ErrorHandler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc. It may inspect the request, short-circuit
// processing or wrap the response.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error

// Component is anything that renders itself to a writer.
// templ.Component satisfies it.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Chain composes middleware so that the first argument runs outermost.
func Chain(mw ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		return next
	}
}
