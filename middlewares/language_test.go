package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/middlewares"
	"github.com/globomantics/cms/pkg/i18n"
)

func testBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	fsys := fstest.MapFS{
		"en.yaml": {Data: []byte("greeting: Hello\n")},
		"de.yaml": {Data: []byte("greeting: Hallo\n")},
	}
	b, err := i18n.New(fsys, "en", "de")
	require.NoError(t, err)
	return b
}

func TestLanguage(t *testing.T) {
	t.Parallel()

	bundle := testBundle(t)
	app := newApp(func(r web.Router) {
		r.GET("/", middlewares.RedirectToLanguage(bundle))
		r.Route("/{lang}", func(r web.Router) {
			r.Use(middlewares.Language(bundle))
			r.GET("/hello", func(c web.Context) error {
				return c.String(http.StatusOK, c.T("greeting")+" "+c.URL("/albums/"))
			})
		})
	})

	t.Run("translates for the path language", func(t *testing.T) {
		t.Parallel()

		rec := do(app, httptest.NewRequest(http.MethodGet, "/de/hello", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Hallo /de/albums/", rec.Body.String())
	})

	t.Run("unsupported language is not found", func(t *testing.T) {
		t.Parallel()

		rec := do(app, httptest.NewRequest(http.MethodGet, "/fr/hello", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("root redirects to best match", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "de-CH,de;q=0.9,en;q=0.5")
		rec := do(app, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/de/", rec.Header().Get("Location"))
	})

	t.Run("root falls back to default", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "ja")
		rec := do(app, req)
		assert.Equal(t, "/en/", rec.Header().Get("Location"))
	})
}

func TestDefaultLanguage(t *testing.T) {
	t.Parallel()

	bundle := testBundle(t)
	app := newApp(func(r web.Router) {
		r.GET("/plain", func(c web.Context) error {
			return c.String(http.StatusOK, c.Lang())
		})
	}, web.WithMiddleware(middlewares.DefaultLanguage(bundle)))

	req := httptest.NewRequest(http.MethodGet, "/plain", nil)
	req.Header.Set("Accept-Language", "de")
	assert.Equal(t, "de", do(app, req).Body.String())
	assert.Equal(t, "en", do(app, httptest.NewRequest(http.MethodGet, "/plain", nil)).Body.String())
}
