package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/pkg/i18n"
	"github.com/globomantics/cms/pkg/logger"
)

// LangParam is the URL parameter carrying the language code.
const LangParam = "lang"

// Language returns middleware for routes mounted under /{lang}. It
// rejects unsupported codes with 404 and stores the translator of the
// requested language in the context.
func Language(bundle *i18n.Bundle) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			lang := c.Param(LangParam)
			if !bundle.Supported(lang) {
				return web.ErrNotFound("", web.WithErrorCode("errors.not_found"))
			}
			c.Set(web.TranslatorKey{}, bundle.Translator(lang))
			return next(c)
		}
	}
}

// DefaultLanguage stores the translator of the best Accept-Language match
// when no language was resolved yet. It serves routes outside /{lang},
// such as the 404 page.
func DefaultLanguage(bundle *i18n.Bundle) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			if c.Translator() == nil {
				c.Set(web.TranslatorKey{}, bundle.Translator(bundle.Match(c.Header("Accept-Language"))))
			}
			return next(c)
		}
	}
}

// RedirectToLanguage handles "/" by redirecting (302) to the home page of
// the best Accept-Language match.
func RedirectToLanguage(bundle *i18n.Bundle) web.HandlerFunc {
	return func(c web.Context) error {
		lang := bundle.Match(c.Header("Accept-Language"))
		return c.Redirect(http.StatusFound, web.LangURL(lang, "/"))
	}
}

// LanguageExtractor adds "lang" to log records made with a request context.
func LanguageExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if tr, ok := ctx.Value(web.TranslatorKey{}).(*i18n.Translator); ok {
			return slog.String("lang", tr.Lang()), true
		}
		return slog.Attr{}, false
	}
}
