package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/globomantics/cms/internal/forms"
	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/internal/views"
	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/middlewares"
	"github.com/globomantics/cms/pkg/form"
	"github.com/globomantics/cms/pkg/slug"
	"github.com/globomantics/cms/pkg/storage"
	"github.com/globomantics/cms/pkg/validator"
)

const (
	slugSuffixBytes = 3 // four url-safe characters
	uploadPrefix    = "albums"
)

// AlbumStore persists albums.
type AlbumStore interface {
	Create(ctx context.Context, a *models.Album) error
	FindAll(ctx context.Context) ([]*models.Album, error)
	FindBySlug(ctx context.Context, slug string) (*models.Album, error)
	Save(ctx context.Context, a *models.Album) error
	Delete(ctx context.Context, a *models.Album) error
}

// Albums serves the album pages. Every route requires a signed-in user;
// editing and deleting require ownership.
type Albums struct {
	albums AlbumStore
	views  *views.Views
	create *form.Schema
}

func NewAlbums(albums AlbumStore, v *views.Views, maxImageSize int64) *Albums {
	return &Albums{albums: albums, views: v, create: forms.CreateAlbum(maxImageSize)}
}

func (h *Albums) Routes(r web.Router) {
	r.Route("/album", func(r web.Router) {
		r.Use(middlewares.LoginRequired())
		r.GET("/", h.list).Named("album.list")
		r.GET("/create", h.createForm).Named("album.create")
		r.POST("/create", h.createSubmit)
		r.GET("/edit/{slug}", h.editForm).Named("album.edit")
		r.POST("/edit/{slug}", h.editSubmit)
		r.POST("/delete/{slug}", h.delete).Named("album.delete")
		r.GET("/show/{slug}", h.show).Named("album.show")
		r.GET("/uploads/*", h.upload).Named("album.uploads")
	})
}

func (h *Albums) list(c web.Context) error {
	albums, err := h.albums.FindAll(c)
	if err != nil {
		return err
	}
	return c.RenderPartial(http.StatusOK, h.views.AlbumList(albums), h.views.AlbumListContent(albums))
}

func (h *Albums) createForm(c web.Context) error {
	return h.renderCreate(c, http.StatusOK, form.NewState(h.create))
}

func (h *Albums) renderCreate(c web.Context, code int, state *form.State) error {
	data := views.FormData{Form: state, Action: c.URL("/album/create"), Cancel: c.URL("/album/")}
	return c.RenderPartial(code, h.views.Form("Add album", data), h.views.FormContent("Add album", data))
}

func (h *Albums) createSubmit(c web.Context) error {
	values, verrs, err := c.Bind(h.create)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return h.renderCreate(c, http.StatusUnprocessableEntity, &form.State{Schema: h.create, Values: values, Errors: verrs})
	}

	key, err := storeImage(c, values.File("image"))
	if errors.Is(err, errImageType) {
		verrs = validator.ValidationErrors{validator.Custom("image", false, c.T(forms.MsgImageType)).Error}
		return h.renderCreate(c, http.StatusUnprocessableEntity, &form.State{Schema: h.create, Values: values, Errors: verrs})
	}
	if err != nil {
		return err
	}

	album := &models.Album{
		Title:       values.String("title"),
		Artist:      values.String("artist"),
		Description: values.String("description"),
		Genre:       values.String("genre"),
		ReleaseDate: values.Time("release_date"),
		Image:       key,
		Slug:        slug.Make(values.String("title"), slug.WithSuffix(slugSuffixBytes)),
		UserID:      currentUser(c).ID,
	}
	if err := h.albums.Create(c, album); err != nil {
		removeImage(c, key)
		return fmt.Errorf("create album: %w", err)
	}
	c.LogInfo("album created", "album_id", album.ID, "slug", album.Slug)
	return redirectWith(c, "The new album has been added.", "/album/show/"+album.Slug)
}

// owned loads the album named by the slug parameter if the current user
// owns it. Otherwise it answers the request and returns nil.
func (h *Albums) owned(c web.Context) (*models.Album, error) {
	album, err := h.albums.FindBySlug(c, c.Param("slug"))
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if album == nil || !owns(c, album.UserID) {
		return nil, notAuthorized(c)
	}
	return album, nil
}

func (h *Albums) renderEdit(c web.Context, code int, album *models.Album, state *form.State) error {
	data := views.FormData{
		Form:    state,
		Heading: "Edit album",
		Action:  c.URL("/album/edit/" + album.Slug),
		Cancel:  c.URL("/album/show/" + album.Slug),
	}
	return c.RenderPartial(code, h.views.Form(album.Title, data), h.views.FormContent(album.Title, data))
}

func (h *Albums) editForm(c web.Context) error {
	album, err := h.owned(c)
	if album == nil {
		return err
	}
	state := form.NewState(forms.UpdateAlbum)
	state.Set("title", album.Title)
	state.Set("artist", album.Artist)
	state.Set("description", album.Description)
	state.Set("genre", album.Genre)
	return h.renderEdit(c, http.StatusOK, album, state)
}

func (h *Albums) editSubmit(c web.Context) error {
	album, err := h.owned(c)
	if album == nil {
		return err
	}
	values, verrs, err := c.Bind(forms.UpdateAlbum)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return h.renderEdit(c, http.StatusUnprocessableEntity, album, &form.State{Schema: forms.UpdateAlbum, Values: values, Errors: verrs})
	}

	album.Title = values.String("title")
	album.Artist = values.String("artist")
	album.Description = values.String("description")
	album.Genre = values.String("genre")
	if err := h.albums.Save(c, album); err != nil {
		return fmt.Errorf("save album %d: %w", album.ID, err)
	}
	return redirectWith(c, "The album has been updated.", "/album/show/"+album.Slug)
}

func (h *Albums) delete(c web.Context) error {
	album, err := h.owned(c)
	if album == nil {
		return err
	}
	if err := h.albums.Delete(c, album); err != nil {
		return fmt.Errorf("delete album %d: %w", album.ID, err)
	}
	removeImage(c, album.Image)
	c.LogInfo("album deleted", "album_id", album.ID)
	return redirectWith(c, "The album has been deleted.", middlewares.HomePath)
}

func (h *Albums) show(c web.Context) error {
	album, err := h.albums.FindBySlug(c, c.Param("slug"))
	if isNotFound(err) {
		return notFound(err)
	}
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, h.views.AlbumShow(album))
}

// upload streams a stored cover image.
func (h *Albums) upload(c web.Context) error {
	key := c.Param("*")
	if !storage.ValidKey(key) {
		return notFound(nil)
	}
	st, err := c.Storage()
	if err != nil {
		return err
	}
	obj, err := st.Open(c, key)
	if errors.Is(err, storage.ErrNotFound) {
		return notFound(err)
	}
	if err != nil {
		return err
	}
	defer obj.Body.Close()

	c.SetHeader("Content-Type", obj.ContentType)
	c.SetHeader("Cache-Control", "private, max-age=86400")
	if obj.Size > 0 {
		c.SetHeader("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	c.ResponseWriter().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response(), obj.Body)
	return err
}

var errImageType = errors.New("unsupported image type")

// storeImage sniffs the upload and saves it under a fresh key. Only JPEG
// and PNG content is accepted whatever the file name says.
func storeImage(c web.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	ct, err := storage.DetectContentType(f)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if ct != "image/jpeg" && ct != "image/png" {
		return "", errImageType
	}

	st, err := c.Storage()
	if err != nil {
		return "", err
	}
	key := storage.NewKey(uploadPrefix, ct)
	if err := st.Put(c, key, f, fh.Size, ct); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return key, nil
}

func removeImage(c web.Context, key string) {
	if key == "" {
		return
	}
	st, err := c.Storage()
	if err != nil {
		return
	}
	if err := st.Delete(c, key); err != nil {
		c.LogWarn("failed to remove image", "key", key, "error", err)
	}
}
