package i18n

import (
	"time"

	"golang.org/x/text/language"
)

// Format holds locale-specific layouts.
type Format struct {
	DateLayout string
}

// Date formats d with DateLayout.
func (f Format) Date(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(f.DateLayout)
}

var formats = map[language.Base]Format{
	mustBase("en"): {DateLayout: "Jan 2, 2006"},
	mustBase("de"): {DateLayout: "02.01.2006"},
	mustBase("fr"): {DateLayout: "2 Jan 2006"},
	mustBase("es"): {DateLayout: "2 Jan 2006"},
	mustBase("pl"): {DateLayout: "2 Jan 2006"},
	mustBase("nl"): {DateLayout: "2 Jan 2006"},
	mustBase("it"): {DateLayout: "2 Jan 2006"},
}

// FormatFor returns the format for tag's base language, defaulting to ISO
// dates for languages without one.
func FormatFor(tag language.Tag) Format {
	base, _ := tag.Base()
	if f, ok := formats[base]; ok {
		return f
	}
	return Format{DateLayout: "2006-01-02"}
}

func mustBase(s string) language.Base {
	return language.MustParseBase(s)
}
