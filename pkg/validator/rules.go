package validator

import (
	"cmp"
	"fmt"
	"net/mail"
	"time"
	"unicode/utf8"
)

// Rule is a single check. Check is true when the value is valid.
type Rule struct {
	Error ValidationError
	Check bool
}

// WithMessage replaces the rule's message. The message doubles as its own
// translation key so catalogs can localize it verbatim.
func (r Rule) WithMessage(msg string) Rule {
	r.Error.Message = msg
	r.Error.TranslationKey = msg
	return r
}

// Apply evaluates rules and returns ValidationErrors for the failed ones.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, r := range rules {
		if !r.Check {
			errs = append(errs, r.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// FirstFailure returns the first failing rule, or false if all pass.
// Forms use it to report one message per field.
func FirstFailure(rules ...Rule) (Rule, bool) {
	for _, r := range rules {
		if !r.Check {
			return r, true
		}
	}
	return Rule{}, false
}

func newRule(ok bool, field, key, msg string, values map[string]any) Rule {
	if values == nil {
		values = map[string]any{}
	}
	values["field"] = field
	return Rule{
		Check: ok,
		Error: ValidationError{
			Field:             field,
			Message:           msg,
			TranslationKey:    key,
			TranslationValues: values,
		},
	}
}

// Custom builds a rule from an arbitrary check.
func Custom(field string, ok bool, msg string) Rule {
	return newRule(ok, field, msg, msg, nil)
}

// RequiredString fails on an empty string.
func RequiredString(field, v string) Rule {
	return newRule(v != "", field, "validation.required", "is required", nil)
}

// RequiredTime fails on the zero time.
func RequiredTime(field string, v time.Time) Rule {
	return newRule(!v.IsZero(), field, "validation.required", "is required", nil)
}

// MinLenString requires at least n runes.
func MinLenString(field, v string, n int) Rule {
	return newRule(utf8.RuneCountInString(v) >= n, field, "validation.min_length",
		fmt.Sprintf("must be at least %d characters long", n), map[string]any{"min": n})
}

// MaxLenString allows at most n runes.
func MaxLenString(field, v string, n int) Rule {
	return newRule(utf8.RuneCountInString(v) <= n, field, "validation.max_length",
		fmt.Sprintf("must not be longer than %d characters", n), map[string]any{"max": n})
}

// LenBetweenString requires between lo and hi runes inclusive.
func LenBetweenString(field, v string, lo, hi int) Rule {
	l := utf8.RuneCountInString(v)
	return newRule(l >= lo && l <= hi, field, "validation.length_between",
		fmt.Sprintf("must be between %d and %d characters long", lo, hi),
		map[string]any{"min": lo, "max": hi})
}

// MinNum requires v >= lo.
func MinNum[T cmp.Ordered](field string, v, lo T) Rule {
	return newRule(v >= lo, field, "validation.min",
		fmt.Sprintf("must be at least %v", lo), map[string]any{"min": lo})
}

// MaxNum requires v <= hi.
func MaxNum[T cmp.Ordered](field string, v, hi T) Rule {
	return newRule(v <= hi, field, "validation.max",
		fmt.Sprintf("must be at most %v", hi), map[string]any{"max": hi})
}

// Email requires a bare RFC 5322 address (no display name).
func Email(field, v string) Rule {
	addr, err := mail.ParseAddress(v)
	ok := err == nil && addr.Address == v
	return newRule(ok, field, "validation.email", "must be a valid email address", nil)
}

// EqualString requires v to equal other.
func EqualString(field, v, other, otherField string) Rule {
	return newRule(v == other, field, "validation.equal",
		fmt.Sprintf("must be equal to %s", otherField), map[string]any{"other": otherField})
}

// NotAfter requires v not to be later than limit.
func NotAfter(field string, v, limit time.Time, limitField string) Rule {
	return newRule(!v.After(limit), field, "validation.not_after",
		fmt.Sprintf("must not be after %s", limitField), map[string]any{"other": limitField})
}

// OneOf requires v to be one of allowed.
func OneOf[T comparable](field string, v T, allowed ...T) Rule {
	ok := false
	for _, a := range allowed {
		if a == v {
			ok = true
			break
		}
	}
	return newRule(ok, field, "validation.one_of", "has an unsupported value",
		map[string]any{"allowed": allowed})
}
