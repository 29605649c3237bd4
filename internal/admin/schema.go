package admin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/globomantics/cms/pkg/form"
)

// FieldKind is the semantic type of a field.
type FieldKind int

const (
	KindString FieldKind = iota
	KindText
	KindInteger
	KindDate
	KindReference
	KindBoolean
)

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindDate:
		return "date"
	case KindReference:
		return "reference"
	case KindBoolean:
		return "boolean"
	default:
		return "string"
	}
}

// FieldDescriptor names a field and its kind.
type FieldDescriptor struct {
	Name string
	Kind FieldKind
}

// Field is one named accessor pair on *T. A nil setter makes the field
// read-only.
type Field[T any] struct {
	get  func(*T) any
	set  func(*T, any) error
	desc FieldDescriptor
	want string
}

// Descriptor returns the field's name and kind.
func (f Field[T]) Descriptor() FieldDescriptor { return f.desc }

// Writable reports whether the field has a setter.
func (f Field[T]) Writable() bool { return f.set != nil }

// NewField builds a field whose values are of type V. Set accepts exactly
// V, no conversion is attempted.
func NewField[T, V any](name string, kind FieldKind, get func(*T) V, set func(*T, V)) Field[T] {
	f := Field[T]{
		desc: FieldDescriptor{Name: name, Kind: kind},
		get:  func(t *T) any { return get(t) },
		want: fmt.Sprintf("%T", *new(V)),
	}
	if set != nil {
		f.set = func(t *T, v any) error {
			typed, ok := v.(V)
			if !ok {
				return &FieldTypeError{Field: name, Want: f.want, Got: fmt.Sprintf("%T", v)}
			}
			set(t, typed)
			return nil
		}
	}
	return f
}

// Str is a string valued field (KindString or KindText).
func Str[T any](name string, kind FieldKind, get func(*T) string, set func(*T, string)) Field[T] {
	return NewField(name, kind, get, set)
}

// Int is an int64 valued field (KindInteger or KindReference).
func Int[T any](name string, kind FieldKind, get func(*T) int64, set func(*T, int64)) Field[T] {
	return NewField(name, kind, get, set)
}

// Date is a time.Time valued field.
func Date[T any](name string, get func(*T) time.Time, set func(*T, time.Time)) Field[T] {
	return NewField(name, KindDate, get, set)
}

// Bool is a bool valued field.
func Bool[T any](name string, get func(*T) bool, set func(*T, bool)) Field[T] {
	return NewField(name, KindBoolean, get, set)
}

// Type describes an entity type: its resource name and ordered fields.
// A Type is immutable once built and safe for concurrent use.
type Type[T any] struct {
	index  map[string]int
	name   string
	fields []Field[T]
}

// NewType builds a Type. The resource name is the lowercased type name.
// It panics on duplicate field names and when no integer "id" field
// is declared.
func NewType[T any](name string, fields ...Field[T]) *Type[T] {
	t := &Type[T]{
		name:   strings.ToLower(name),
		fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := t.index[f.desc.Name]; dup {
			panic(fmt.Sprintf("admin: duplicate field %q in type %s", f.desc.Name, name))
		}
		t.index[f.desc.Name] = i
	}
	id, ok := t.index[IDField]
	if !ok || fields[id].desc.Kind != KindInteger {
		panic(fmt.Sprintf("admin: type %s needs an integer %q field", name, IDField))
	}
	return t
}

// IDField is the primary key field every type declares.
const IDField = "id"

// Name returns the resource name.
func (t *Type[T]) Name() string { return t.name }

// Columns returns the field names in declaration order.
func (t *Type[T]) Columns() []string {
	cols := make([]string, len(t.fields))
	for i, f := range t.fields {
		cols[i] = f.desc.Name
	}
	return cols
}

// Descriptors returns the field descriptors in declaration order.
func (t *Type[T]) Descriptors() []FieldDescriptor {
	out := make([]FieldDescriptor, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.desc
	}
	return out
}

// Field returns the descriptor of name.
func (t *Type[T]) Field(name string) (FieldDescriptor, bool) {
	i, ok := t.index[name]
	if !ok {
		return FieldDescriptor{}, false
	}
	return t.fields[i].desc, true
}

// Get reads field name of inst.
func (t *Type[T]) Get(inst *T, name string) (any, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, &FieldNotFoundError{Type: t.name, Field: name}
	}
	return t.fields[i].get(inst), nil
}

// Set writes value to field name of inst. The value must already have the
// field's Go type.
func (t *Type[T]) Set(inst *T, name string, value any) error {
	i, ok := t.index[name]
	if !ok {
		return &FieldNotFoundError{Type: t.name, Field: name}
	}
	f := t.fields[i]
	if f.set == nil {
		return fmt.Errorf("%w: %s.%s", ErrFieldReadOnly, t.name, name)
	}
	if err := f.set(inst, value); err != nil {
		var fte *FieldTypeError
		if errors.As(err, &fte) {
			fte.Type = t.name
		}
		return err
	}
	return nil
}

// ID returns the primary key of inst.
func (t *Type[T]) ID(inst *T) int64 {
	v, _ := t.fields[t.index[IDField]].get(inst).(int64)
	return v
}

// Reserved names never treated as editable, whatever the schema.
var reserved = map[string]struct{}{
	IDField:      {},
	"submit":     {},
	"csrf_token": {},
	"meta":       {},
}

// ReservedPrefix marks implementation fields of a schema.
const ReservedPrefix = "_"

// IsEditable applies the exclusion rule to a single name.
func IsEditable(name string) bool {
	if _, ok := reserved[name]; ok {
		return false
	}
	return name != "" && !strings.HasPrefix(name, ReservedPrefix)
}

// EditableFields returns the schema's field names in order, without
// identity, pseudo and reserved-prefix names. A nil schema has none.
func EditableFields(schema *form.Schema) []string {
	if schema == nil {
		return nil
	}
	var out []string
	for _, name := range schema.Names() {
		if IsEditable(name) {
			out = append(out, name)
		}
	}
	return out
}
