package admin

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/pkg/form"
)

// DefaultPrefix is where the admin lives below the language segment.
const DefaultPrefix = "/admin"

// Resource is the registration of one type. It never changes after
// Register returns.
type Resource struct {
	mount       func(r web.Router)
	Name        string
	Columns     []string
	Editable    []string
	Endpoints   []web.Endpoint
	EditAllowed bool
}

// Registrar collects resources at startup and mounts them once.
type Registrar struct {
	renderer  Renderer
	guard     *Guard
	names     map[string]struct{}
	prefix    string
	resources []*Resource
}

// RegistrarOption configures a Registrar.
type RegistrarOption func(*Registrar)

// WithPrefix mounts the admin below prefix instead of DefaultPrefix.
func WithPrefix(prefix string) RegistrarOption {
	return func(r *Registrar) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// NewRegistrar creates an empty Registrar.
func NewRegistrar(renderer Renderer, guard *Guard, opts ...RegistrarOption) *Registrar {
	r := &Registrar{
		renderer: renderer,
		guard:    guard,
		names:    make(map[string]struct{}),
		prefix:   DefaultPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds typ as a resource. A nil schema registers the table and
// delete only. It panics when the name is taken or when the schema names
// a field typ cannot write with the bound value type.
func Register[T any](reg *Registrar, typ *Type[T], repo Repository[T], schema *form.Schema) *Resource {
	name := typ.Name()
	if _, dup := reg.names[name]; dup {
		panic(fmt.Sprintf("admin: resource %q registered twice", name))
	}

	editable := EditableFields(schema)
	for _, field := range editable {
		checkEditable(typ, schema, field)
	}

	base := reg.prefix + "/" + name + "/"
	table := &TableView[T]{
		typ:         typ,
		repo:        repo,
		renderer:    reg.renderer,
		basePath:    base,
		editAllowed: schema != nil,
	}
	edit := &EditEndpoint[T]{
		typ:      typ,
		repo:     repo,
		renderer: reg.renderer,
		schema:   schema,
		basePath: base,
		fields:   editable,
	}

	res := &Resource{
		Name:        name,
		Columns:     typ.Columns(),
		Editable:    editable,
		EditAllowed: schema != nil,
	}
	tableName := "admin." + name + "_table"
	editName := "admin." + name
	itemPattern := "/" + name + "/{id:[0-9]+}"
	res.Endpoints = append(res.Endpoints, web.Endpoint{Method: http.MethodGet, Pattern: base, Name: tableName})
	if res.EditAllowed {
		res.Endpoints = append(res.Endpoints,
			web.Endpoint{Method: http.MethodGet, Pattern: reg.prefix + itemPattern, Name: editName},
			web.Endpoint{Method: http.MethodPost, Pattern: reg.prefix + itemPattern, Name: editName},
		)
	}
	res.Endpoints = append(res.Endpoints, web.Endpoint{Method: http.MethodDelete, Pattern: reg.prefix + itemPattern, Name: editName})

	guard := reg.guard
	res.mount = func(r web.Router) {
		r.GET("/"+name+"/", table.Handle, guard.Require(name, actionFor(http.MethodGet))).Named(tableName)
		if res.EditAllowed {
			r.GET(itemPattern, edit.Get, guard.Require(name, actionFor(http.MethodGet))).Named(editName)
			r.POST(itemPattern, edit.Post, guard.Require(name, actionFor(http.MethodPost))).Named(editName)
		}
		r.DELETE(itemPattern, edit.Delete, guard.Require(name, actionFor(http.MethodDelete))).Named(editName)
	}

	reg.names[name] = struct{}{}
	reg.resources = append(reg.resources, res)
	return res
}

func checkEditable[T any](typ *Type[T], schema *form.Schema, name string) {
	desc, ok := typ.Field(name)
	if !ok {
		panic(fmt.Sprintf("admin: schema %q names unknown field %s.%s", schema.Name(), typ.Name(), name))
	}
	f := typ.fields[typ.index[name]]
	if !f.Writable() {
		panic(fmt.Sprintf("admin: schema %q names read-only field %s.%s", schema.Name(), typ.Name(), name))
	}
	ff, _ := schema.Field(name)
	if !compatible(ff.Kind, desc.Kind) {
		panic(fmt.Sprintf("admin: form field %s of schema %q cannot bind to %s field", name, schema.Name(), desc.Kind))
	}
}

// compatible reports whether values bound for a form kind have the Go type
// the field kind stores.
func compatible(fk form.Kind, k FieldKind) bool {
	switch fk {
	case form.KindString, form.KindText, form.KindEmail, form.KindPassword:
		return k == KindString || k == KindText
	case form.KindInteger:
		return k == KindInteger || k == KindReference
	case form.KindDate:
		return k == KindDate
	case form.KindBool:
		return k == KindBoolean
	default:
		return false
	}
}

// Prefix returns the mount prefix, e.g. "/admin".
func (r *Registrar) Prefix() string { return r.prefix }

// Resources returns the registrations in order.
func (r *Registrar) Resources() []*Resource {
	return slices.Clone(r.resources)
}

// Endpoints returns the routes of every resource relative to the
// language segment.
func (r *Registrar) Endpoints() []web.Endpoint {
	var out []web.Endpoint
	for _, res := range r.resources {
		out = append(out, res.Endpoints...)
	}
	return out
}

// Routes mounts every resource below the prefix. Call it once, after the
// last Register.
func (r *Registrar) Routes(router web.Router) {
	router.Route(r.prefix, func(ar web.Router) {
		for _, res := range r.resources {
			res.mount(ar)
		}
	})
}
