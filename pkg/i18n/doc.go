// Package i18n holds the message catalogs and locale formats of the
// supported languages.
//
// Catalogs are flat YAML files named after their language ({lang}.yaml)
// mapping a message key to its translation. Keys are either dotted
// identifiers ("validation.required") or the English message itself, which
// lets untranslated messages fall through unchanged. Translations may
// reference values as {{name}}.
//
//	bundle, err := i18n.New(locales.FS, "en", "de")
//	lang := bundle.Match(r.Header.Get("Accept-Language"))
//	tr := bundle.Translator(lang)
//	tr.T("You are registered.")
//	tr.FormatDate(album.ReleaseDate)
package i18n
