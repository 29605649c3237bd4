// Package forms declares the HTML forms of the application.
package forms

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/globomantics/cms/pkg/form"
	"github.com/globomantics/cms/pkg/validator"
)

// Messages shared with the handlers and the translation catalogs.
const (
	MsgRequired       = "Data is required!"
	MsgUsernameTaken  = "This username is already taken."
	MsgEmailTaken     = "This email is already registered."
	MsgEmailUnknown   = "This email is not registered."
	MsgInvalidEmail   = "Invalid email address."
	MsgPasswordsEqual = "Field must be equal to password."
	MsgDateOrder      = "Start date needs to be before the end date."
	MsgImageType      = "File does not have an approved extension: jpeg, jpg, png"
	MsgImageSize      = "File is too large."
	MsgLookupFailed   = "Could not be checked right now, please try again."
)

// DefaultMaxImageSize is the largest accepted cover image.
const DefaultMaxImageSize = 16 << 20

// ImageExtensions lists accepted cover image extensions.
var ImageExtensions = []string{"jpeg", "jpg", "png"}

// UserLookup answers the uniqueness questions asked by the account forms.
type UserLookup interface {
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

func required(field string) validator.Rule {
	return validator.RequiredString(field, "").WithMessage(MsgRequired)
}

func text(field string, lo, hi int) func(string) []validator.Rule {
	return func(v string) []validator.Rule {
		return []validator.Rule{
			validator.RequiredString(field, v).WithMessage(MsgRequired),
			validator.LenBetweenString(field, v, lo, hi).
				WithMessage(fmt.Sprintf("Field must be between %d and %d characters long.", lo, hi)),
		}
	}
}

func present(field string) func(string) []validator.Rule {
	return func(v string) []validator.Rule {
		return []validator.Rule{validator.RequiredString(field, v).WithMessage(MsgRequired)}
	}
}

// capped requires a value no longer than the column holding it.
func capped(field string, hi int) func(string) []validator.Rule {
	return func(v string) []validator.Rule {
		return append(present(field)(v),
			validator.MaxLenString(field, v, hi).
				WithMessage(fmt.Sprintf("Field must not be longer than %d characters.", hi)))
	}
}

func date(field string) func(time.Time) []validator.Rule {
	return func(v time.Time) []validator.Rule {
		return []validator.Rule{validator.RequiredTime(field, v).WithMessage(MsgRequired)}
	}
}

// Register is the sign up form. Lookup failures are reported on the field
// they concern so the user can retry.
func Register(users UserLookup) *form.Schema {
	return form.New("register",
		form.String("username", "Username", text("username", 5, 20)),
		form.Email("email", "Email", func(v string) []validator.Rule {
			return append(text("email", 10, 30)(v),
				validator.Email("email", v).WithMessage(MsgInvalidEmail))
		}),
		form.Password("password", "Password", text("password", 10, 40)),
		form.Password("confirm", "Confirm password", present("confirm")),
		form.CSRFToken(),
		form.Submit("Register"),
	).WithCheck(func(_ context.Context, v form.Values) []validator.Rule {
		return []validator.Rule{
			validator.EqualString("confirm", v.String("confirm"), v.String("password"), "password").
				WithMessage(MsgPasswordsEqual),
		}
	}).WithCheck(func(ctx context.Context, v form.Values) []validator.Rule {
		return []validator.Rule{
			lookup(ctx, "username", v.String("username"), users.UsernameTaken, MsgUsernameTaken),
			lookup(ctx, "email", v.String("email"), users.EmailTaken, MsgEmailTaken),
		}
	})
}

// Login is the sign in form.
func Login(users UserLookup) *form.Schema {
	return form.New("login",
		form.Email("email", "Email", present("email")),
		form.Password("password", "Password", present("password")),
		form.Bool("remember_me", "Remember me"),
		form.CSRFToken(),
		form.Submit("Login"),
	).WithCheck(func(ctx context.Context, v form.Values) []validator.Rule {
		email := v.String("email")
		if email == "" {
			return nil
		}
		known, err := users.EmailTaken(ctx, email)
		if err != nil {
			return []validator.Rule{validator.Custom("email", false, MsgLookupFailed)}
		}
		return []validator.Rule{validator.Custom("email", known, MsgEmailUnknown)}
	})
}

func lookup(ctx context.Context, field, v string, taken func(context.Context, string) (bool, error), msg string) validator.Rule {
	if v == "" {
		return validator.Custom(field, true, msg)
	}
	found, err := taken(ctx, v)
	if err != nil {
		return validator.Custom(field, false, MsgLookupFailed)
	}
	return validator.Custom(field, !found, msg)
}

// CreateAlbum is the album creation form. maxSize bounds the cover image.
func CreateAlbum(maxSize int64) *form.Schema {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return form.New("create_album",
		form.String("title", "Title", text("title", 5, 80)),
		form.String("artist", "Artist", text("artist", 2, 30)),
		form.Text("description", "Description", text("description", 10, 200)),
		form.String("genre", "Genre", text("genre", 2, 20)),
		form.Date("release_date", "Release date", date("release_date")),
		form.File("image", "Cover image", image("image", maxSize)),
		form.CSRFToken(),
		form.Submit("Add album"),
	)
}

// UpdateAlbum only requires values that fit their columns; it backs both the owner edit page and
// the admin edit view.
var UpdateAlbum = form.New("update_album",
	form.String("title", "Title", capped("title", 80)),
	form.String("artist", "Artist", capped("artist", 30)),
	form.Text("description", "Description", present("description")),
	form.String("genre", "Genre", capped("genre", 20)),
	form.CSRFToken(),
	form.Submit("Update album information"),
)

// CreateTour is the tour creation form.
var CreateTour = form.New("create_tour",
	form.String("title", "Title", text("title", 5, 80)),
	form.String("artist", "Artist", text("artist", 2, 30)),
	form.Text("description", "Description", text("description", 10, 200)),
	form.String("genre", "Genre", text("genre", 2, 20)),
	form.Date("start_date", "Start date", date("start_date")),
	form.Date("end_date", "End date", date("end_date")),
	form.CSRFToken(),
	form.Submit("Add tour"),
).WithCheck(dateOrder)

// UpdateTour is the lenient tour edit form. Like UpdateAlbum it has no
// lower length bounds.
var UpdateTour = form.New("update_tour",
	form.String("title", "Title", capped("title", 80)),
	form.String("artist", "Artist", capped("artist", 30)),
	form.Text("description", "Description", present("description")),
	form.String("genre", "Genre", capped("genre", 20)),
	form.Date("start_date", "Start date", date("start_date")),
	form.Date("end_date", "End date", date("end_date")),
	form.CSRFToken(),
	form.Submit("Update tour information"),
).WithCheck(dateOrder)

func dateOrder(_ context.Context, v form.Values) []validator.Rule {
	start, end := v.Time("start_date"), v.Time("end_date")
	if start.IsZero() || end.IsZero() {
		return nil
	}
	return []validator.Rule{
		validator.NotAfter("start_date", start, end, "end_date").WithMessage(MsgDateOrder),
	}
}

func image(field string, maxSize int64) func(*multipart.FileHeader) []validator.Rule {
	return func(fh *multipart.FileHeader) []validator.Rule {
		if fh == nil {
			return []validator.Rule{required(field)}
		}
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(fh.Filename), "."))
		return []validator.Rule{
			validator.Custom(field, slices.Contains(ImageExtensions, ext), MsgImageType),
			validator.Custom(field, fh.Size <= maxSize, MsgImageSize),
		}
	}
}
