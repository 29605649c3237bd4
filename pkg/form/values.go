package form

import (
	"mime/multipart"
	"strconv"
	"time"

	"github.com/globomantics/cms/pkg/validator"
)

// Values holds bound, typed field values keyed by field name.
type Values map[string]any

// Get returns the value of name as T, or the zero value.
func Get[T any](v Values, name string) T {
	t, _ := v[name].(T)
	return t
}

func (v Values) String(name string) string { return Get[string](v, name) }

func (v Values) Int(name string) int64 { return Get[int64](v, name) }

func (v Values) Time(name string) time.Time { return Get[time.Time](v, name) }

func (v Values) Bool(name string) bool { return Get[bool](v, name) }

func (v Values) File(name string) *multipart.FileHeader {
	return Get[*multipart.FileHeader](v, name)
}

// State is what a template needs to draw a form: the schema, current
// values and errors.
type State struct {
	Schema *Schema
	Values Values
	Errors validator.ValidationErrors
}

// NewState returns an empty state for schema.
func NewState(schema *Schema) *State {
	return &State{Schema: schema, Values: Values{}}
}

// Set stores a typed value, used to prefill a form from an entity.
func (s *State) Set(name string, value any) {
	if s.Values == nil {
		s.Values = Values{}
	}
	s.Values[name] = value
}

// Input returns the value of name formatted for an input element.
// Passwords are never echoed.
func (s *State) Input(name string) string {
	f, ok := s.Schema.Field(name)
	if !ok || f.Kind == KindPassword || f.Kind == KindFile {
		return ""
	}
	return Format(s.Values[name])
}

// Checked reports whether a checkbox is on.
func (s *State) Checked(name string) bool {
	return s.Values.Bool(name)
}

// ErrorsFor returns the messages for one field.
func (s *State) ErrorsFor(name string) []string {
	return s.Errors.Get(name)
}

// Format renders a bound value the way inputs submit it.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(DateLayout)
	default:
		if s, ok := v.(interface{ String() string }); ok {
			return s.String()
		}
		return ""
	}
}
