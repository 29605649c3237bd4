package handlers

import (
	"errors"
	"net/http"

	"github.com/globomantics/cms/internal/views"
	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/middlewares"
	"github.com/globomantics/cms/pkg/form"
)

// Errors renders error pages.
type Errors struct {
	views *views.Views
}

func NewErrors(v *views.Views) *Errors {
	return &Errors{views: v}
}

// Handle is the app's web.ErrorHandler. HTTP errors keep their status,
// timeouts become 504 and anything else is logged and shown as a 500.
func (h *Errors) Handle(c web.Context, err error) error {
	he := web.AsHTTPError(err)
	switch {
	case he != nil:
		if he.Code >= http.StatusInternalServerError {
			c.LogError("request failed", "status", he.Code, "error", err)
		}
	case middlewares.IsTimeoutError(err):
		he = web.ErrGatewayTimeout("", web.WithError(err))
	case errors.Is(err, form.ErrBind):
		he = web.ErrBadRequest("", web.WithError(err))
	default:
		if pe, ok := middlewares.AsPanicError(err); ok {
			c.LogError("panic recovered", "panic", pe.Value, "stack", string(pe.Stack))
		} else {
			c.LogError("request failed", "error", err)
		}
		he = web.ErrInternal("", web.WithErrorCode("errors.internal"), web.WithError(err))
	}
	if he.RequestID == "" {
		he.RequestID = middlewares.GetRequestID(c)
	}
	return c.Render(he.Code, h.views.Error(he))
}

// NotFound handles unmatched routes.
func (h *Errors) NotFound(c web.Context) error {
	return h.Handle(c, web.ErrNotFound("", web.WithErrorCode("errors.not_found")))
}

// MethodNotAllowed handles routes matched by path only.
func (h *Errors) MethodNotAllowed(c web.Context) error {
	return h.Handle(c, web.ErrMethodNotAllowed("", web.WithErrorCode("errors.method_not_allowed")))
}
