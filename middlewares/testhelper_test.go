package middlewares_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/pkg/cookie"
	"github.com/globomantics/cms/pkg/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type routes func(r web.Router)

func (f routes) Routes(r web.Router) { f(r) }

// newApp builds an app with sessions and signed cookies around fn.
func newApp(fn func(r web.Router), opts ...web.Option) *web.App {
	base := []web.Option{
		web.WithCookieManager(cookie.New(cookie.WithSecret(testSecret))),
		web.WithSession(web.NewSessionManager(session.NewMemoryStore())),
		web.WithHandlers(routes(fn)),
	}
	return web.New(append(base, opts...)...)
}

func do(app http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

// withCookies copies live response cookies onto req.
func withCookies(rec *httptest.ResponseRecorder, req *http.Request) *http.Request {
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			req.AddCookie(c)
		}
	}
	return req
}
