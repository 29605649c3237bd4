package i18n

import (
	"fmt"
	"strings"
	"time"
)

// Translator renders messages and dates for one language.
type Translator struct {
	messages map[string]string
	fallback map[string]string
	format   Format
	lang     string
}

// Lang returns the translator's language.
func (t *Translator) Lang() string { return t.lang }

// T translates key, falling back to the default language and then to the
// key itself. Each values map fills {{name}} placeholders.
func (t *Translator) T(key string, values ...map[string]any) string {
	msg, ok := t.messages[key]
	if !ok {
		if msg, ok = t.fallback[key]; !ok {
			msg = key
		}
	}
	for _, vals := range values {
		msg = Interpolate(msg, vals)
	}
	return msg
}

// Message matches the validator translation callback.
func (t *Translator) Message(key string, values map[string]any) string {
	return t.T(key, values)
}

// FormatDate renders a date in the language's medium date style.
// The zero time renders as an empty string.
func (t *Translator) FormatDate(d time.Time) string {
	return t.format.Date(d)
}

// Interpolate replaces {{name}} placeholders with values.
// Unknown placeholders are kept.
func Interpolate(msg string, values map[string]any) string {
	if len(values) == 0 || !strings.Contains(msg, "{{") {
		return msg
	}
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{{"+k+"}}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
