package admin

import (
	"context"
	"net/http"

	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/pkg/authz"
)

// MsgAdminRequired is flashed when the guard turns a request away.
const MsgAdminRequired = "You need to be an administrator to access this page"

// LoginPath is where rejected requests are sent, below the language prefix.
const LoginPath = "/login"

// Authorizer decides whether a role may perform action on object.
type Authorizer interface {
	Authorize(role, object, action string) (bool, error)
}

// Principal is the signed-in actor as the guard sees it.
type Principal struct {
	Name  string
	ID    int64
	Admin bool
}

// PrincipalFunc resolves the principal of a request. ok is false for
// anonymous requests.
type PrincipalFunc func(c web.Context) (p Principal, ok bool)

type principalKey struct{}

// PrincipalFrom returns the principal admitted by the guard.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Guard admits authenticated principals whose role passes the policy for
// "admin/<resource>".
type Guard struct {
	authorizer Authorizer
	principal  PrincipalFunc
}

// NewGuard creates a Guard.
func NewGuard(authorizer Authorizer, principal PrincipalFunc) *Guard {
	return &Guard{authorizer: authorizer, principal: principal}
}

// Require returns middleware checking action on resource. Rejected
// requests get a danger flash and a 303 (HX-Redirect for HTMX) to the
// login page; next never runs for them.
func (g *Guard) Require(resource, action string) web.Middleware {
	object := "admin/" + resource
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			p, ok := g.principal(c)
			if ok {
				allowed, err := g.authorizer.Authorize(authz.RoleOf(true, p.Admin), object, action)
				if err != nil {
					return err
				}
				if allowed {
					c.Set(principalKey{}, p)
					return next(c)
				}
			}

			c.LogWarn("admin access denied",
				"resource", resource,
				"action", action,
				"user_id", p.ID,
			)
			if err := c.Flash(web.FlashDanger, c.T(MsgAdminRequired)); err != nil {
				return err
			}
			return c.Redirect(http.StatusSeeOther, c.URL(LoginPath))
		}
	}
}

// actionFor maps an HTTP method onto a policy action.
func actionFor(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return authz.ActionRead
	case http.MethodDelete:
		return authz.ActionDelete
	default:
		return authz.ActionWrite
	}
}
