package middlewares

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/pkg/cache"
	"github.com/globomantics/cms/pkg/cookie"
	"github.com/globomantics/cms/pkg/htmx"
)

// DefaultPageCacheTTL is used when PageCache gets a non-positive ttl.
const DefaultPageCacheTTL = time.Minute

// PageCacheHeader reports HIT or MISS on cacheable requests.
const PageCacheHeader = "X-Page-Cache"

// CachedPage is a rendered response kept by PageCache.
type CachedPage struct {
	ContentType string `json:"content_type"`
	Location    string `json:"location,omitempty"`
	Body        []byte `json:"body"`
	Status      int    `json:"status"`
}

// PageCache serves GET responses for anonymous visitors from the cache.
// Only 200 responses are stored. Concurrent misses for the same URL render
// the page once and share the result. Requests carrying flashes, HTMX
// requests and signed-in users always reach the handler.
func PageCache(loader *cache.Loader[CachedPage], ttl time.Duration) web.Middleware {
	if ttl <= 0 {
		ttl = DefaultPageCacheTTL
	}

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			r := c.Request()
			if r.Method != http.MethodGet || htmx.IsHTMX(r) || hasCookie(r, cookie.FlashCookieName) || c.IsAuthenticated() {
				return next(c)
			}

			rendered := false
			page, err := loader.Get(c, "page:"+r.URL.RequestURI(), func(context.Context) (CachedPage, time.Duration, bool, error) {
				rendered = true
				c.SetHeader(PageCacheHeader, "MISS")

				var buf bytes.Buffer
				rw := c.ResponseWriter()
				rw.Tee(&buf)
				err := next(c)
				rw.Tee(nil)
				if err != nil {
					return CachedPage{}, 0, false, err
				}

				p := CachedPage{
					Status:      rw.Status(),
					ContentType: rw.Header().Get("Content-Type"),
					Location:    rw.Header().Get("Location"),
					Body:        buf.Bytes(),
				}
				return p, ttl, p.Status == http.StatusOK, nil
			})
			if err != nil || rendered {
				return err
			}

			c.SetHeader(PageCacheHeader, "HIT")
			if page.ContentType != "" {
				c.SetHeader("Content-Type", page.ContentType)
			}
			if page.Location != "" {
				c.SetHeader("Location", page.Location)
			}
			c.ResponseWriter().WriteHeader(page.Status)
			_, err = c.Response().Write(page.Body)
			return err
		}
	}
}

func hasCookie(r *http.Request, name string) bool {
	_, err := r.Cookie(name)
	return err == nil
}
