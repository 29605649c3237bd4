// Package authz decides role based access with casbin. The model and the
// default policy are embedded; subjects are role names such as
// "role:admin", objects are slash separated resource paths.
package authz

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
)

// Roles.
const (
	RoleAnonymous = "role:anonymous"
	RoleUser      = "role:user"
	RoleAdmin     = "role:admin"
)

// Actions.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

var (
	//go:embed model.conf
	modelText string
	//go:embed policy.csv
	defaultPolicy string
)

// ErrInvalidPolicy wraps model and policy load failures.
var ErrInvalidPolicy = errors.New("authz: invalid policy")

// Authorizer answers whether a role may act on an object.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// New builds an Authorizer with the embedded model. An empty policy selects
// the embedded default policy.
func New(policy string) (*Authorizer, error) {
	if strings.TrimSpace(policy) == "" {
		policy = defaultPolicy
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, errors.Join(ErrInvalidPolicy, err)
	}
	enforcer, err := casbin.NewEnforcer(m, stringadapter.NewAdapter(policy))
	if err != nil {
		return nil, errors.Join(ErrInvalidPolicy, err)
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// Authorize reports whether role may perform action on object.
func (a *Authorizer) Authorize(role, object, action string) (bool, error) {
	ok, err := a.enforcer.Enforce(role, object, action)
	if err != nil {
		return false, fmt.Errorf("authz: enforce %s %s %s: %w", role, object, action, err)
	}
	return ok, nil
}

// RoleOf maps a principal onto its role.
func RoleOf(authenticated, isAdmin bool) string {
	switch {
	case !authenticated:
		return RoleAnonymous
	case isAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}
