package middlewares

import (
	"context"
	"crypto/sha256"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/pkg/form"
)

// CSRF defaults. The form field matches form.CSRFToken.
const (
	CSRFCookieName = "_csrf"
	CSRFField      = "csrf_token"
	CSRFHeader     = "X-CSRF-Token"
)

// CSRFOption configures the CSRF middleware.
type CSRFOption func(*csrfConfig)

type csrfConfig struct {
	domain string
	secure bool
}

// WithCSRFSecure marks the token cookie Secure and enables the strict
// Referer check gorilla/csrf applies to TLS requests.
func WithCSRFSecure(secure bool) CSRFOption {
	return func(c *csrfConfig) {
		c.secure = secure
	}
}

// WithCSRFDomain sets the token cookie domain.
func WithCSRFDomain(domain string) CSRFOption {
	return func(c *csrfConfig) {
		c.domain = domain
	}
}

type csrfResultKey struct{}

type csrfResult struct {
	err error
}

// CSRF protects unsafe methods with gorilla/csrf. The token travels in the
// csrf_token form field or the X-CSRF-Token header; rejected requests fail
// with a 403 HTTPError so the app error handler renders them. The
// cookie key is derived from secret.
func CSRF(secret string, opts ...CSRFOption) web.Middleware {
	cfg := &csrfConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	key := sha256.Sum256([]byte("csrf:" + secret))
	csrfOpts := []csrf.Option{
		csrf.CookieName(CSRFCookieName),
		csrf.FieldName(CSRFField),
		csrf.RequestHeader(CSRFHeader),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Secure(cfg.secure),
		csrf.ErrorHandler(http.HandlerFunc(rejectCSRF)),
	}
	if cfg.domain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(cfg.domain))
	}
	protect := csrf.Protect(key[:], csrfOpts...)

	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			if err := parseUnsafeForm(c); err != nil {
				return err
			}

			res := &csrfResult{}
			r := c.Request()
			r = r.WithContext(context.WithValue(r.Context(), csrfResultKey{}, res))
			if !cfg.secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}

			protect(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				c.SetContext(r.Context())
				res.err = next(c)
			})).ServeHTTP(c.Response(), r)
			return res.err
		}
	}
}

// CSRFToken returns a masked token for the request ctx belongs to. Every
// call yields a different string; all of them validate.
func CSRFToken(ctx context.Context) string {
	c, ok := web.FromContext(ctx)
	if !ok {
		return ""
	}
	return csrf.Token(c.Request())
}

func rejectCSRF(_ http.ResponseWriter, r *http.Request) {
	res, ok := r.Context().Value(csrfResultKey{}).(*csrfResult)
	if !ok {
		return
	}
	reason := csrf.FailureReason(r)
	if c, ok := web.FromContext(r.Context()); ok {
		c.LogWarn("csrf check failed", "method", r.Method, "path", r.URL.Path, "reason", reason)
	}
	res.err = web.ErrForbidden("", web.WithErrorCode("errors.csrf"), web.WithError(reason))
}

// parseUnsafeForm reads the body of unsafe requests without a token header
// up front, so an oversized body is reported as 413 instead of a missing
// token.
func parseUnsafeForm(c web.Context) error {
	r := c.Request()
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return nil
	}
	if r.Header.Get(CSRFHeader) != "" {
		return nil
	}

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(form.DefaultMaxMemory)
	} else {
		err = r.ParseForm()
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return web.ErrRequestTooLarge("", web.WithError(err))
	}
	return nil
}
