package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/globomantics/cms/pkg/id"
)

// Option configures Make.
type Option func(*options)

type options struct {
	separator   string
	maxLength   int
	suffixBytes int
}

// Separator sets the string placed between words. Default "-".
func Separator(sep string) Option {
	return func(o *options) {
		if sep != "" {
			o.separator = sep
		}
	}
}

// MaxLength truncates the slug (before any suffix) to at most n bytes,
// cutting at the last separator when possible.
func MaxLength(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLength = n
		}
	}
}

// WithSuffix appends a url-safe random token built from n random bytes,
// making slugs of identical titles distinct.
func WithSuffix(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.suffixBytes = n
		}
	}
}

// replacements are letters that do not decompose into a base letter.
var replacements = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "Æ", "AE", "ø", "o", "Ø", "O",
	"œ", "oe", "Œ", "OE", "ł", "l", "Ł", "L", "đ", "d", "Đ", "D",
)

// Make converts s into a lowercase slug.
func Make(s string, opts ...Option) string {
	o := options{separator: "-"}
	for _, opt := range opts {
		opt(&o)
	}

	s = fold(replacements.Replace(s))

	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingSep && b.Len() > 0 {
				b.WriteString(o.separator)
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	out := b.String()

	if o.maxLength > 0 && len(out) > o.maxLength {
		out = out[:o.maxLength]
		if i := strings.LastIndex(out, o.separator); i > 0 {
			out = out[:i]
		}
		out = strings.TrimSuffix(out, o.separator)
	}

	if o.suffixBytes > 0 {
		token := id.Token(o.suffixBytes)
		if out == "" {
			return token
		}
		out += o.separator + token
	}
	return out
}

// fold strips combining marks after canonical decomposition.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
