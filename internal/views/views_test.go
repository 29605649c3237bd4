package views_test

import (
	"bytes"
	"context"
	"html"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/internal/admin"
	"github.com/globomantics/cms/internal/forms"
	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/internal/views"
	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/middlewares"
	"github.com/globomantics/cms/pkg/cookie"
	"github.com/globomantics/cms/pkg/form"
	"github.com/globomantics/cms/pkg/i18n"
	"github.com/globomantics/cms/pkg/validator"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var csrfInput = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

// formToken returns the unescaped CSRF token embedded in a rendered form.
func formToken(t *testing.T, body string) string {
	t.Helper()
	m := csrfInput.FindStringSubmatch(body)
	require.Len(t, m, 2, "no csrf input in page")
	return html.UnescapeString(m[1])
}

type routes func(r web.Router)

func (f routes) Routes(r web.Router) { f(r) }

func newViews(t *testing.T) *views.Views {
	t.Helper()
	v, err := views.New(views.WithLanguages("en", "de"), views.WithAdminResources("album"))
	require.NoError(t, err)
	return v
}

func render(t *testing.T, c web.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

// newApp mounts fn under /{lang} with the real catalogs.
func newApp(t *testing.T, fn func(r web.Router)) *web.App {
	t.Helper()
	bundle, err := i18n.New(views.Locales(), "en", "de")
	require.NoError(t, err)
	return web.New(
		web.WithCookieManager(cookie.New(cookie.WithSecret(testSecret))),
		web.WithMiddleware(middlewares.CSRF(testSecret)),
		web.WithHandlers(routes(func(r web.Router) {
			r.Route("/{lang}", func(r web.Router) {
				r.Use(middlewares.Language(bundle))
				fn(r)
			})
		})),
	)
}

func TestCatalogsLoad(t *testing.T) {
	t.Parallel()

	bundle, err := i18n.New(views.Locales(), "en", "de")
	require.NoError(t, err)
	assert.Equal(t, "Alben", bundle.Translator("de").T("Albums"))
	assert.Equal(t, "Albums", bundle.Translator("en").T("Albums"))
	assert.Equal(t, "Daten sind erforderlich!", bundle.Translator("de").T(forms.MsgRequired))
}

func TestAdminTable(t *testing.T) {
	t.Parallel()

	v := newViews(t)
	out := render(t, v.Table(admin.TableData{
		Resource: "user",
		BasePath: "/en/admin/user/",
		Columns: []admin.FieldDescriptor{
			{Name: "id", Kind: admin.KindInteger},
			{Name: "username", Kind: admin.KindString},
			{Name: "is_admin", Kind: admin.KindBoolean},
		},
		Rows: []admin.Row{
			{ID: 3, Cells: []any{int64(3), "stevie", true}},
		},
	}))

	assert.Contains(t, out, "<th>username</th>")
	assert.Contains(t, out, "<td>stevie</td>")
	assert.Contains(t, out, "<td>yes</td>")
	assert.Contains(t, out, `hx-delete="/en/admin/user/3"`)
	assert.NotContains(t, out, `href="/en/admin/user/3"`, "no edit link without schema")
}

func TestAdminEdit(t *testing.T) {
	t.Parallel()

	v := newViews(t)
	state := form.NewState(forms.UpdateAlbum)
	state.Set("title", "Rumours")
	state.Errors = validator.ValidationErrors{{Field: "artist", Message: forms.MsgRequired}}

	out := render(t, v.Edit(admin.EditData{
		Resource: "album",
		ID:       7,
		Form:     state,
		Action:   "/en/admin/album/7",
		BasePath: "/en/admin/album/",
	}))

	assert.Contains(t, out, `action="/en/admin/album/7"`)
	assert.Contains(t, out, `value="Rumours"`)
	assert.Contains(t, out, forms.MsgRequired)
	assert.Contains(t, out, "Update album information")
	assert.Contains(t, out, `href="/en/admin/album/"`)
}

func TestMarkdownIsSanitized(t *testing.T) {
	t.Parallel()

	v := newViews(t)
	out := render(t, v.AlbumShow(&models.Album{
		Title:       "Tusk",
		Slug:        "tusk-ab12",
		Description: "**double** album <script>alert(1)</script>",
		ReleaseDate: time.Date(1979, 10, 12, 0, 0, 0, 0, time.UTC),
	}))

	assert.Contains(t, out, "<strong>double</strong>")
	assert.NotContains(t, out, "<script>alert")
	assert.NotContains(t, out, "/album/delete/", "anonymous visitors get no owner actions")
}

func TestPagesUseRequestContext(t *testing.T) {
	t.Parallel()

	v := newViews(t)
	app := newApp(t, func(r web.Router) {
		r.POST("/flash", func(c web.Context) error {
			if err := c.Flash(web.FlashSuccess, c.T("The album has been updated.")); err != nil {
				return err
			}
			return c.Redirect(http.StatusSeeOther, c.URL("/"))
		})
		r.GET("/", func(c web.Context) error {
			return c.Render(http.StatusOK, v.Home(nil))
		})
		r.GET("/login", func(c web.Context) error {
			return c.Render(http.StatusOK, v.Login(form.NewState(forms.Login(nil)), c.URL("/login")))
		})
	})

	t.Run("translated layout", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/de/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `<html lang="de">`)
		assert.Contains(t, body, "Willkommen bei Globomantics")
		assert.Contains(t, body, `href="/de/album/"`)
		assert.Contains(t, body, `href="/en/"`, "language switcher keeps the path")
	})

	t.Run("form carries the csrf token", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/en/login", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var hasCookie bool
		for _, ck := range rec.Result().Cookies() {
			hasCookie = hasCookie || ck.Name == middlewares.CSRFCookieName
		}
		assert.True(t, hasCookie)
		assert.NotEmpty(t, formToken(t, rec.Body.String()))
		assert.Contains(t, rec.Body.String(), `name="remember_me"`)
	})

	t.Run("flash shows once", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/en/login", nil))
		cookies := rec.Result().Cookies()
		token := formToken(t, rec.Body.String())

		req := httptest.NewRequest(http.MethodPost, "/en/flash", nil)
		req.Header.Set(middlewares.CSRFHeader, token)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		rec = httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/en/", nil)
		for _, ck := range append(cookies, rec.Result().Cookies()...) {
			req.AddCookie(ck)
		}
		rec = httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		assert.Contains(t, rec.Body.String(), "The album has been updated.")

		var flashCleared bool
		for _, ck := range rec.Result().Cookies() {
			if ck.Name == cookie.FlashCookieName && ck.MaxAge < 0 {
				flashCleared = true
			}
		}
		assert.True(t, flashCleared)
	})
}

func TestErrorPage(t *testing.T) {
	t.Parallel()

	v := newViews(t)
	out := render(t, v.Error(web.ErrNotFound("", web.WithErrorCode("errors.not_found"), web.WithRequestID("req-1"))))
	assert.Contains(t, out, "404 Not Found")
	assert.Contains(t, out, "errors.not_found", "without a translator the key is shown")
	assert.Contains(t, out, "req-1")
}
