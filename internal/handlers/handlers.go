// Package handlers implements the public pages, authentication and the
// album and tour pages owned by their creators.
package handlers

import (
	"errors"
	"net/http"

	"github.com/globomantics/cms/internal/admin"
	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/middlewares"
)

// Flash messages, also used as translation keys.
const (
	MsgNotAuthorized = "You are not authorized to do this."
	MsgRegistered    = "You are registered."
	MsgInvalidLogin  = "Invalid username or password"
)

// currentUser returns the signed-in user loaded by middlewares.CurrentUser.
func currentUser(c web.Context) *models.User {
	u, _ := middlewares.User[*models.User](c)
	return u
}

// owns reports whether the signed-in user created a record.
func owns(c web.Context, ownerID int64) bool {
	return currentUser(c).Owns(ownerID)
}

// notAuthorized sends the user home with a danger flash.
func notAuthorized(c web.Context) error {
	if err := c.Flash(web.FlashDanger, c.T(MsgNotAuthorized)); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, c.URL(middlewares.HomePath))
}

// redirectWith flashes a success message and redirects.
func redirectWith(c web.Context, msg, path string) error {
	if err := c.Flash(web.FlashSuccess, c.T(msg)); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, c.URL(path))
}

func notFound(err error) error {
	return web.ErrNotFound("", web.WithErrorCode("errors.not_found"), web.WithError(err))
}

// enqueue hands a job to the queue. Failures are logged, never returned:
// the request already succeeded.
func enqueue(c web.Context, task string, payload any) {
	err := c.Enqueue(task, payload)
	switch {
	case err == nil:
	case errors.Is(err, web.ErrJobsNotConfigured):
		c.LogDebug("job skipped, no queue configured", "task", task)
	default:
		c.LogError("failed to enqueue job", "task", task, "error", err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, admin.ErrNotFound)
}
