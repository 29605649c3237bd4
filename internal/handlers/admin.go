package handlers

import (
	"time"

	"github.com/globomantics/cms/internal/admin"
	"github.com/globomantics/cms/internal/forms"
	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/internal/web"
)

// Admin types. Only fields with a setter can be edited; the password
// hash is never exposed.
var (
	AlbumType = admin.NewType("Album",
		admin.Int("id", admin.KindInteger, func(a *models.Album) int64 { return a.ID }, nil),
		admin.Str("title", admin.KindString, func(a *models.Album) string { return a.Title }, func(a *models.Album, v string) { a.Title = v }),
		admin.Str("artist", admin.KindString, func(a *models.Album) string { return a.Artist }, func(a *models.Album, v string) { a.Artist = v }),
		admin.Str("description", admin.KindText, func(a *models.Album) string { return a.Description }, func(a *models.Album, v string) { a.Description = v }),
		admin.Str("genre", admin.KindString, func(a *models.Album) string { return a.Genre }, func(a *models.Album, v string) { a.Genre = v }),
		admin.Str("image", admin.KindString, func(a *models.Album) string { return a.Image }, nil),
		admin.Date("release_date", func(a *models.Album) time.Time { return a.ReleaseDate }, func(a *models.Album, v time.Time) { a.ReleaseDate = v }),
		admin.Int("user_id", admin.KindReference, func(a *models.Album) int64 { return a.UserID }, nil),
		admin.Str("slug", admin.KindString, func(a *models.Album) string { return a.Slug }, nil),
	)

	TourType = admin.NewType("Tour",
		admin.Int("id", admin.KindInteger, func(t *models.Tour) int64 { return t.ID }, nil),
		admin.Str("title", admin.KindString, func(t *models.Tour) string { return t.Title }, func(t *models.Tour, v string) { t.Title = v }),
		admin.Str("artist", admin.KindString, func(t *models.Tour) string { return t.Artist }, func(t *models.Tour, v string) { t.Artist = v }),
		admin.Str("description", admin.KindText, func(t *models.Tour) string { return t.Description }, func(t *models.Tour, v string) { t.Description = v }),
		admin.Str("genre", admin.KindString, func(t *models.Tour) string { return t.Genre }, func(t *models.Tour, v string) { t.Genre = v }),
		admin.Date("start_date", func(t *models.Tour) time.Time { return t.StartDate }, func(t *models.Tour, v time.Time) { t.StartDate = v }),
		admin.Date("end_date", func(t *models.Tour) time.Time { return t.EndDate }, func(t *models.Tour, v time.Time) { t.EndDate = v }),
		admin.Int("user_id", admin.KindReference, func(t *models.Tour) int64 { return t.UserID }, nil),
		admin.Str("slug", admin.KindString, func(t *models.Tour) string { return t.Slug }, nil),
	)

	UserType = admin.NewType("User",
		admin.Int("id", admin.KindInteger, func(u *models.User) int64 { return u.ID }, nil),
		admin.Str("username", admin.KindString, func(u *models.User) string { return u.Username }, nil),
		admin.Str("email", admin.KindString, func(u *models.User) string { return u.Email }, nil),
		admin.Bool("is_admin", func(u *models.User) bool { return u.IsAdmin }, nil),
		admin.Date("created_at", func(u *models.User) time.Time { return u.CreatedAt }, nil),
	)
)

// AdminResources names the admin tables in registration order.
func AdminResources() []string {
	return []string{AlbumType.Name(), TourType.Name(), UserType.Name()}
}

// AdminStores are the repositories behind the admin tables.
type AdminStores struct {
	Albums admin.Repository[models.Album]
	Tours  admin.Repository[models.Tour]
	Users  admin.Repository[models.User]
}

// NewAdmin registers albums and tours as editable resources and users as
// delete-only.
func NewAdmin(renderer admin.Renderer, guard *admin.Guard, stores AdminStores, opts ...admin.RegistrarOption) *admin.Registrar {
	reg := admin.NewRegistrar(renderer, guard, opts...)
	admin.Register(reg, AlbumType, stores.Albums, forms.UpdateAlbum)
	admin.Register(reg, TourType, stores.Tours, forms.UpdateTour)
	admin.Register(reg, UserType, stores.Users, nil)
	return reg
}

// Principal identifies the signed-in user to the admin guard.
func Principal(c web.Context) (admin.Principal, bool) {
	u := currentUser(c)
	if u == nil {
		return admin.Principal{}, false
	}
	return admin.Principal{Name: u.Username, ID: u.ID, Admin: u.IsAdmin}, true
}
