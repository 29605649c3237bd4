package admin

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by repository lookups of absent records.
	ErrNotFound = errors.New("admin: record not found")

	ErrFieldNotFound = errors.New("admin: unknown field")
	ErrFieldType     = errors.New("admin: wrong value type for field")
	ErrFieldReadOnly = errors.New("admin: field is read-only")
)

// FieldNotFoundError reports access to a name the type does not have.
type FieldNotFoundError struct {
	Type  string
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("admin: type %s has no field %q", e.Type, e.Field)
}

func (e *FieldNotFoundError) Unwrap() error { return ErrFieldNotFound }

// FieldTypeError reports a Set with a value of the wrong Go type.
type FieldTypeError struct {
	Type  string
	Field string
	Want  string
	Got   string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("admin: field %s.%s wants %s, got %s", e.Type, e.Field, e.Want, e.Got)
}

func (e *FieldTypeError) Unwrap() error { return ErrFieldType }
