package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/internal/config"
	"github.com/globomantics/cms/internal/repository"
	"github.com/globomantics/cms/internal/server"
	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/pkg/health"
	"github.com/globomantics/cms/pkg/session"
	"github.com/globomantics/cms/pkg/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:      "0123456789abcdef0123456789abcdef",
		Languages:      []string{"en", "de"},
		CacheTTL:       time.Minute,
		RequestTimeout: 5 * time.Second,
		MaxUploadSize:  1 << 20,
		Session: config.SessionConfig{
			TTL:         time.Hour,
			RememberTTL: 24 * time.Hour,
			Fingerprint: "warn",
		},
	}
}

// newApp builds the app without a database; only routes that never reach
// a repository are exercised.
func newApp(t *testing.T) *web.App {
	t.Helper()
	app, err := server.NewApp(server.Deps{
		Config:   testConfig(),
		Store:    repository.New(nil),
		Sessions: session.NewMemoryStore(),
		Storage:  storage.NewMemory(),
		Health:   health.New(),
	})
	require.NoError(t, err)
	return app
}

func serve(app *web.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestRootRedirectsToLanguage(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	tests := []struct {
		accept string
		want   string
	}{
		{"", "/en/"},
		{"de-DE,de;q=0.9,en;q=0.5", "/de/"},
		{"fr-FR", "/en/"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.accept != "" {
			req.Header.Set("Accept-Language", tt.accept)
		}
		rec := serve(app, req)
		assert.Equal(t, http.StatusFound, rec.Code, tt.accept)
		assert.Equal(t, tt.want, rec.Header().Get("Location"), tt.accept)
	}
}

func TestPublicRoutes(t *testing.T) {
	t.Parallel()

	app := newApp(t)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/de/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `lang="de"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/static/css/main.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(app, httptest.NewRequest(http.MethodGet, web.LivenessPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/fr/login", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/en/no/such/page", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "<html")

	rec = serve(app, httptest.NewRequest(http.MethodPost, "/en/login", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code, "posts need the csrf token")
}

func TestEndpoints(t *testing.T) {
	t.Parallel()

	endpoints, err := server.Endpoints(testConfig())
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, e := range endpoints {
		names[e.Name] = true
	}
	for _, want := range []string{
		"main.home", "auth.login", "auth.register", "auth.logout",
		"album.list", "album.show", "tour.create",
		"admin.album_table", "admin.album", "admin.tour_table", "admin.user_table", "admin.user",
	} {
		assert.True(t, names[want], want)
	}
}
