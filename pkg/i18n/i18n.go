package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// maxAcceptLanguage caps how much of an Accept-Language header is parsed.
const maxAcceptLanguage = 4096

// Bundle is the immutable set of catalogs for the supported languages.
// The first language is the default.
type Bundle struct {
	catalogs map[string]map[string]string
	formats  map[string]Format
	matcher  language.Matcher
	langs    []string
}

// New loads {lang}.yaml for each language from fsys. A missing file yields
// an empty catalog so keys fall back to the default language.
func New(fsys fs.FS, langs ...string) (*Bundle, error) {
	if len(langs) == 0 {
		return nil, ErrNoLanguages
	}

	b := &Bundle{
		catalogs: make(map[string]map[string]string, len(langs)),
		formats:  make(map[string]Format, len(langs)),
	}
	tags := make([]language.Tag, 0, len(langs))
	for _, raw := range langs {
		lang := strings.ToLower(strings.TrimSpace(raw))
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLanguage, raw)
		}
		if slices.Contains(b.langs, lang) {
			continue
		}

		catalog, err := load(fsys, lang)
		if err != nil {
			return nil, err
		}
		b.langs = append(b.langs, lang)
		b.catalogs[lang] = catalog
		b.formats[lang] = FormatFor(tag)
		tags = append(tags, tag)
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

func load(fsys fs.FS, lang string) (map[string]string, error) {
	catalog := map[string]string{}
	if fsys == nil {
		return catalog, nil
	}
	data, err := fs.ReadFile(fsys, lang+".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return catalog, nil
	}
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s.yaml: %w", lang, err)
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %s.yaml: %s", ErrInvalidFile, lang, err)
	}
	return catalog, nil
}

// Languages returns the supported languages, default first.
func (b *Bundle) Languages() []string { return slices.Clone(b.langs) }

// Default returns the default language.
func (b *Bundle) Default() string { return b.langs[0] }

// Supported reports whether lang is one of the bundle's languages.
func (b *Bundle) Supported(lang string) bool {
	return slices.Contains(b.langs, lang)
}

// Match picks the best supported language for an Accept-Language header,
// falling back to the default.
func (b *Bundle) Match(acceptLanguage string) string {
	if len(acceptLanguage) > maxAcceptLanguage {
		acceptLanguage = acceptLanguage[:maxAcceptLanguage]
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.Default()
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.Default()
	}
	return b.langs[idx]
}

// Translator returns a translator for lang, or for the default language
// when lang is unsupported.
func (b *Bundle) Translator(lang string) *Translator {
	if !b.Supported(lang) {
		lang = b.Default()
	}
	return &Translator{
		lang:     lang,
		messages: b.catalogs[lang],
		fallback: b.catalogs[b.Default()],
		format:   b.formats[lang],
	}
}
