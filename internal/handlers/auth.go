package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/globomantics/cms/internal/auth"
	"github.com/globomantics/cms/internal/forms"
	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/internal/tasks"
	"github.com/globomantics/cms/internal/views"
	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/middlewares"
	"github.com/globomantics/cms/pkg/form"
	"github.com/globomantics/cms/pkg/validator"
)

// Accounts is what the auth pages need from the user store.
type Accounts interface {
	forms.UserLookup
	Register(ctx context.Context, username, email, password string, admin bool) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// Auth serves registration, login and logout.
type Auth struct {
	accounts Accounts
	views    *views.Views
	register *form.Schema
	login    *form.Schema
}

func NewAuth(accounts Accounts, v *views.Views) *Auth {
	return &Auth{
		accounts: accounts,
		views:    v,
		register: forms.Register(accounts),
		login:    forms.Login(accounts),
	}
}

func (h *Auth) Routes(r web.Router) {
	anon := middlewares.AnonymousOnly()
	r.GET("/register", h.registerForm, anon).Named("auth.register")
	r.POST("/register", h.registerSubmit, anon)
	r.GET(middlewares.LoginPath, h.loginForm, anon).Named("auth.login")
	r.POST(middlewares.LoginPath, h.loginSubmit, anon)
	r.GET("/logout", h.logout, middlewares.LoginRequired()).Named("auth.logout")
}

func (h *Auth) registerForm(c web.Context) error {
	return c.Render(http.StatusOK, h.views.Register(form.NewState(h.register), c.URL("/register")))
}

func (h *Auth) registerSubmit(c web.Context) error {
	values, verrs, err := c.Bind(h.register)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return h.renderRegister(c, values, verrs)
	}

	u, err := h.accounts.Register(c, values.String("username"), values.String("email"), values.String("password"), false)
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		return h.renderRegister(c, values, validator.ValidationErrors{
			validator.Custom("username", false, c.T(forms.MsgUsernameTaken)).Error,
		})
	case errors.Is(err, auth.ErrEmailTaken):
		return h.renderRegister(c, values, validator.ValidationErrors{
			validator.Custom("email", false, c.T(forms.MsgEmailTaken)).Error,
		})
	case err != nil:
		return err
	}

	if err := c.AuthenticateSession(u.ID, false); err != nil {
		return err
	}
	c.LogInfo("user registered", "user_id", u.ID, "username", u.Username)
	enqueue(c, tasks.TaskSendWelcomeEmail, tasks.WelcomeEmail{
		Username: u.Username,
		Email:    u.Email,
		LoginURL: absoluteURL(c.Request(), c.URL(middlewares.LoginPath)),
	})
	return redirectWith(c, MsgRegistered, middlewares.HomePath)
}

func (h *Auth) renderRegister(c web.Context, values form.Values, verrs validator.ValidationErrors) error {
	state := &form.State{Schema: h.register, Values: values, Errors: verrs}
	return c.Render(http.StatusUnprocessableEntity, h.views.Register(state, c.URL("/register")))
}

func (h *Auth) loginForm(c web.Context) error {
	return c.Render(http.StatusOK, h.views.Login(form.NewState(h.login), c.URL(middlewares.LoginPath)))
}

// loginSubmit signs the user in. A remembered session lasts for the
// remember TTL of the session manager instead of the default one.
func (h *Auth) loginSubmit(c web.Context) error {
	values, verrs, err := c.Bind(h.login)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		state := &form.State{Schema: h.login, Values: values, Errors: verrs}
		return c.Render(http.StatusUnprocessableEntity, h.views.Login(state, c.URL(middlewares.LoginPath)))
	}

	u, err := h.accounts.Authenticate(c, values.String("email"), values.String("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.LogWarn("failed login", "email", values.String("email"))
		if err := c.Flash(web.FlashDanger, c.T(MsgInvalidLogin)); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, c.URL(middlewares.LoginPath))
	}
	if err != nil {
		return err
	}

	if err := c.AuthenticateSession(u.ID, values.Bool("remember_me")); err != nil {
		return err
	}
	c.LogInfo("user logged in", "user_id", u.ID)
	return c.Redirect(http.StatusSeeOther, c.URL(middlewares.HomePath))
}

func (h *Auth) logout(c web.Context) error {
	if err := c.DestroySession(); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, c.URL(middlewares.HomePath))
}

func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}
