// Package form binds submitted HTML forms into typed values.
//
// A Schema is an ordered list of fields. Binding trims and parses every
// raw value according to the field kind, runs the field rules (reporting
// the first failure per field) and then the schema-level checks:
//
//	schema := form.New("update_album",
//		form.String("title", "Title", func(v string) []validator.Rule {
//			return []validator.Rule{validator.RequiredString("title", v)}
//		}),
//		form.Submit("Update album information"),
//	)
//	values, errs, err := schema.Bind(r)
package form

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/globomantics/cms/pkg/validator"
)

// DateLayout is the wire format of date inputs.
const DateLayout = "2006-01-02"

// DefaultMaxMemory bounds the in-memory part of multipart parsing.
const DefaultMaxMemory = 32 << 20

// ErrBind is returned when the request body cannot be parsed.
var ErrBind = errors.New("form: failed to parse request")

// Kind selects how a raw value is parsed and which input renders it.
type Kind int

const (
	KindString Kind = iota
	KindText
	KindEmail
	KindPassword
	KindInteger
	KindDate
	KindBool
	KindFile
	KindSubmit
	KindHidden
)

// InputType returns the HTML input type for the kind.
func (k Kind) InputType() string {
	switch k {
	case KindEmail:
		return "email"
	case KindPassword:
		return "password"
	case KindInteger:
		return "number"
	case KindDate:
		return "date"
	case KindBool:
		return "checkbox"
	case KindFile:
		return "file"
	case KindSubmit:
		return "submit"
	case KindHidden:
		return "hidden"
	default:
		return "text"
	}
}

// Field is one named form input.
type Field struct {
	rules func(any) []validator.Rule
	Name  string
	Label string
	Kind  Kind
}

// Pseudo reports whether the field carries no user data (submit buttons,
// hidden tokens).
func (f Field) Pseudo() bool {
	return f.Kind == KindSubmit || f.Kind == KindHidden
}

func typed[T any](name, label string, kind Kind, rules func(T) []validator.Rule) Field {
	f := Field{Name: name, Label: label, Kind: kind}
	if rules != nil {
		f.rules = func(v any) []validator.Rule {
			t, _ := v.(T)
			return rules(t)
		}
	}
	return f
}

// String is a single-line text input.
func String(name, label string, rules func(string) []validator.Rule) Field {
	return typed(name, label, KindString, rules)
}

// Text is a multi-line text input.
func Text(name, label string, rules func(string) []validator.Rule) Field {
	return typed(name, label, KindText, rules)
}

// Email is an email input. Values are lowercased.
func Email(name, label string, rules func(string) []validator.Rule) Field {
	return typed(name, label, KindEmail, rules)
}

// Password is a password input. Values are never trimmed or re-rendered.
func Password(name, label string, rules func(string) []validator.Rule) Field {
	return typed(name, label, KindPassword, rules)
}

// Integer parses into int64.
func Integer(name, label string, rules func(int64) []validator.Rule) Field {
	return typed(name, label, KindInteger, rules)
}

// Date parses DateLayout into time.Time (UTC).
func Date(name, label string, rules func(time.Time) []validator.Rule) Field {
	return typed(name, label, KindDate, rules)
}

// Bool is a checkbox.
func Bool(name, label string) Field {
	return Field{Name: name, Label: label, Kind: KindBool}
}

// File is an upload input. The bound value is *multipart.FileHeader or nil.
func File(name, label string, rules func(*multipart.FileHeader) []validator.Rule) Field {
	return typed(name, label, KindFile, rules)
}

// Submit is the submit button pseudo-field.
func Submit(label string) Field {
	return Field{Name: "submit", Label: label, Kind: KindSubmit}
}

// CSRFToken is the hidden token pseudo-field.
func CSRFToken() Field {
	return Field{Name: "csrf_token", Kind: KindHidden}
}

// Check is a schema-level validation that can see every value and the
// request context (uniqueness lookups, cross-field comparisons).
type Check func(ctx context.Context, values Values) []validator.Rule

// Schema is an immutable ordered set of fields.
type Schema struct {
	name   string
	fields []Field
	checks []Check
}

// New creates a schema. Duplicate field names panic.
func New(name string, fields ...Field) *Schema {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			panic(fmt.Sprintf("form: duplicate field %q in schema %q", f.Name, name))
		}
		seen[f.Name] = struct{}{}
	}
	return &Schema{name: name, fields: fields}
}

// WithCheck returns a copy of the schema with an additional check.
func (s *Schema) WithCheck(c Check) *Schema {
	cp := *s
	cp.checks = append(append([]Check(nil), s.checks...), c)
	return &cp
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Field looks a field up by name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Bind parses the request body and validates it.
// A non-nil error means the body itself was unreadable.
func (s *Schema) Bind(r *http.Request) (Values, validator.ValidationErrors, error) {
	var files map[string][]*multipart.FileHeader
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
			return nil, nil, errors.Join(ErrBind, err)
		}
		files = r.MultipartForm.File
	} else if err := r.ParseForm(); err != nil {
		return nil, nil, errors.Join(ErrBind, err)
	}

	values, errs := s.bind(r.Context(), r.PostForm, files)
	return values, errs, nil
}

// BindValues validates already parsed values (no file fields).
func (s *Schema) BindValues(ctx context.Context, raw url.Values) (Values, validator.ValidationErrors) {
	return s.bind(ctx, raw, nil)
}

func (s *Schema) bind(ctx context.Context, raw url.Values, files map[string][]*multipart.FileHeader) (Values, validator.ValidationErrors) {
	values := make(Values, len(s.fields))
	var errs validator.ValidationErrors

	for _, f := range s.fields {
		if f.Pseudo() {
			continue
		}

		var v any
		if f.Kind == KindFile {
			var fh *multipart.FileHeader
			if hs := files[f.Name]; len(hs) > 0 && hs[0].Filename != "" {
				fh = hs[0]
			}
			v = fh
		} else {
			parsed, msg := parse(f.Kind, raw.Get(f.Name))
			if msg != "" {
				values[f.Name] = parsed
				errs = append(errs, validator.Custom(f.Name, false, msg).Error)
				continue
			}
			v = parsed
		}
		values[f.Name] = v

		if f.rules == nil {
			continue
		}
		if failed, ok := validator.FirstFailure(f.rules(v)...); ok {
			errs = append(errs, failed.Error)
		}
	}

	for _, check := range s.checks {
		for _, rule := range check(ctx, values) {
			if !rule.Check && !errs.Has(rule.Error.Field) {
				errs = append(errs, rule.Error)
			}
		}
	}

	return values, errs
}

// parse converts a raw value. A non-empty message reports a value that
// could not be parsed for the kind.
func parse(kind Kind, raw string) (any, string) {
	switch kind {
	case KindPassword:
		return raw, ""
	case KindEmail:
		return strings.ToLower(strings.TrimSpace(raw)), ""
	case KindInteger:
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return int64(0), ""
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return int64(0), "Not a valid integer value."
		}
		return n, ""
	case KindDate:
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return time.Time{}, ""
		}
		t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
		if err != nil {
			return time.Time{}, "Not a valid date value."
		}
		return t, ""
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "on", "true", "1", "y", "yes":
			return true, ""
		}
		return false, ""
	default:
		return strings.TrimSpace(raw), ""
	}
}
