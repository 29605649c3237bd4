package admin

import (
	"context"

	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/pkg/form"
)

// Repository is the persistence contract of a resource. Save and Delete
// commit on their own; FindByID returns an error matching ErrNotFound for
// absent records.
type Repository[T any] interface {
	FindAll(ctx context.Context) ([]*T, error)
	FindByID(ctx context.Context, id int64) (*T, error)
	Save(ctx context.Context, item *T) error
	Delete(ctx context.Context, item *T) error
}

// Renderer draws the admin pages.
type Renderer interface {
	Table(data TableData) web.Component
	Edit(data EditData) web.Component
}

// TableData is everything the table page shows.
type TableData struct {
	Resource    string
	BasePath    string // language prefixed, ends with "/"
	Columns     []FieldDescriptor
	Rows        []Row
	EditAllowed bool
}

// Row is one record of the table.
type Row struct {
	Cells []any
	ID    int64
}

// EditData is everything the edit page shows.
type EditData struct {
	Instance any
	Form     *form.State
	Resource string
	Action   string
	BasePath string
	Fields   []string
	ID       int64
}
