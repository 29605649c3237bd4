package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/pkg/form"
)

// TableView lists every record of a type.
type TableView[T any] struct {
	typ         *Type[T]
	repo        Repository[T]
	renderer    Renderer
	basePath    string
	editAllowed bool
}

// Handle renders the table. It has no side effects.
func (v *TableView[T]) Handle(c web.Context) error {
	items, err := v.repo.FindAll(c)
	if err != nil {
		return fmt.Errorf("admin: list %s: %w", v.typ.Name(), err)
	}

	columns := v.typ.Columns()
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		cells := make([]any, len(columns))
		for i, col := range columns {
			if cells[i], err = v.typ.Get(item, col); err != nil {
				return err
			}
		}
		rows = append(rows, Row{ID: v.typ.ID(item), Cells: cells})
	}

	return c.Render(http.StatusOK, v.renderer.Table(TableData{
		Resource:    v.typ.Name(),
		BasePath:    c.URL(v.basePath),
		Columns:     v.typ.Descriptors(),
		Rows:        rows,
		EditAllowed: v.editAllowed,
	}))
}

// EditEndpoint shows, saves and deletes one record. Without a schema only
// Delete is routed.
type EditEndpoint[T any] struct {
	typ      *Type[T]
	repo     Repository[T]
	renderer Renderer
	schema   *form.Schema
	basePath string
	fields   []string
}

// Get renders the edit form prefilled from the record.
func (e *EditEndpoint[T]) Get(c web.Context) error {
	item, err := e.load(c)
	if err != nil {
		return err
	}

	state := form.NewState(e.schema)
	for _, name := range e.fields {
		v, err := e.typ.Get(item, name)
		if err != nil {
			return err
		}
		state.Set(name, v)
	}
	return c.Render(http.StatusOK, e.renderer.Edit(e.editData(c, item, state)))
}

// Post validates the submission. Valid values are written to the editable
// fields and saved, then the client goes back to the table. Invalid ones
// re-render the form with 422 and leave the record untouched.
func (e *EditEndpoint[T]) Post(c web.Context) error {
	item, err := e.load(c)
	if err != nil {
		return err
	}

	values, verrs, err := c.Bind(e.schema)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		state := &form.State{Schema: e.schema, Values: values, Errors: verrs}
		return c.Render(http.StatusUnprocessableEntity, e.renderer.Edit(e.editData(c, item, state)))
	}

	for _, name := range e.fields {
		if err := e.typ.Set(item, name, values[name]); err != nil {
			return err
		}
	}
	if err := e.repo.Save(c, item); err != nil {
		return fmt.Errorf("admin: save %s %d: %w", e.typ.Name(), e.typ.ID(item), err)
	}

	c.LogInfo("admin record updated", "resource", e.typ.Name(), "id", e.typ.ID(item))
	return c.Redirect(http.StatusSeeOther, c.URL(e.basePath))
}

// Delete removes the record and answers 200 with an empty body. Deleting
// an absent record succeeds as well.
func (e *EditEndpoint[T]) Delete(c web.Context) error {
	item, err := e.load(c)
	if errors.Is(err, ErrNotFound) {
		return c.NoContent(http.StatusOK)
	}
	if err != nil {
		return err
	}

	id := e.typ.ID(item)
	if err := e.repo.Delete(c, item); err != nil {
		return fmt.Errorf("admin: delete %s %d: %w", e.typ.Name(), id, err)
	}

	p, _ := PrincipalFrom(c)
	emitDeleted(c, DeletedEvent{Resource: e.typ.Name(), ID: id, Admin: p.Name})
	return c.NoContent(http.StatusOK)
}

func (e *EditEndpoint[T]) load(c web.Context) (*T, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, web.ErrNotFound("", web.WithErrorCode("errors.not_found"))
	}
	var item *T
	if id > 0 {
		item, err = e.repo.FindByID(c, id)
	} else {
		// No record has a non-positive id.
		err = fmt.Errorf("admin: %s %d: %w", e.typ.Name(), id, ErrNotFound)
	}
	if errors.Is(err, ErrNotFound) {
		if c.Request().Method == http.MethodDelete {
			return nil, err
		}
		return nil, web.ErrNotFound("", web.WithErrorCode("errors.not_found"), web.WithError(err))
	}
	if err != nil {
		return nil, fmt.Errorf("admin: load %s %d: %w", e.typ.Name(), id, err)
	}
	return item, nil
}

func (e *EditEndpoint[T]) editData(c web.Context, item *T, state *form.State) EditData {
	id := e.typ.ID(item)
	return EditData{
		Resource: e.typ.Name(),
		ID:       id,
		Fields:   e.fields,
		Form:     state,
		Instance: item,
		BasePath: c.URL(e.basePath),
		Action:   c.URL(e.basePath + strconv.FormatInt(id, 10)),
	}
}
