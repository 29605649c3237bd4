package i18n_test

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/pkg/i18n"
)

var catalogs = fstest.MapFS{
	"en.yaml": {Data: []byte(`
validation.min_length: "must be at least {{min}} characters long"
greeting: "Hello, {{name}}!"
`)},
	"de.yaml": {Data: []byte(`
validation.min_length: "muss mindestens {{min}} Zeichen lang sein"
"You are registered.": "Sie sind registriert."
`)},
}

func newBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	b, err := i18n.New(catalogs, "en", "de")
	require.NoError(t, err)
	return b
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := i18n.New(catalogs)
	assert.ErrorIs(t, err, i18n.ErrNoLanguages)

	_, err = i18n.New(catalogs, "en", "not a tag!")
	assert.ErrorIs(t, err, i18n.ErrInvalidLanguage)

	_, err = i18n.New(fstest.MapFS{"en.yaml": {Data: []byte("a: [1")}}, "en")
	assert.ErrorIs(t, err, i18n.ErrInvalidFile)

	b, err := i18n.New(catalogs, "en", "de", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "de", "fr"}, b.Languages())
	assert.Equal(t, "en", b.Default())
	assert.True(t, b.Supported("fr"))
	assert.False(t, b.Supported("es"))
}

func TestMatch(t *testing.T) {
	t.Parallel()
	b := newBundle(t)

	tests := map[string]string{
		"":                        "en",
		"de-DE,de;q=0.9,en;q=0.8": "de",
		"en-US,en;q=0.9":          "en",
		"fr-FR,de;q=0.5":          "de",
		"ja":                      "en",
		"garbage;;;q=x":           "en",
		"de-AT":                   "de",
	}
	for header, want := range tests {
		assert.Equal(t, want, b.Match(header), header)
	}
}

func TestTranslator(t *testing.T) {
	t.Parallel()
	b := newBundle(t)

	de := b.Translator("de")
	assert.Equal(t, "de", de.Lang())
	assert.Equal(t, "Sie sind registriert.", de.T("You are registered."))
	assert.Equal(t, "muss mindestens 5 Zeichen lang sein",
		de.Message("validation.min_length", map[string]any{"min": 5, "field": "title"}))
	assert.Equal(t, "Hello, Ana!", de.T("greeting", map[string]any{"name": "Ana"}))
	assert.Equal(t, "Unknown key", de.T("Unknown key"))

	en := b.Translator("xx")
	assert.Equal(t, "en", en.Lang())
	assert.Equal(t, "You are registered.", en.T("You are registered."))
}

func TestFormatDate(t *testing.T) {
	t.Parallel()
	b := newBundle(t)
	d := time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Mar 7, 2024", b.Translator("en").FormatDate(d))
	assert.Equal(t, "07.03.2024", b.Translator("de").FormatDate(d))
	assert.Empty(t, b.Translator("en").FormatDate(time.Time{}))
}

func TestInterpolate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a 1 {{b}}", i18n.Interpolate("a {{a}} {{b}}", map[string]any{"a": 1}))
	assert.Equal(t, "plain", i18n.Interpolate("plain", nil))
}
