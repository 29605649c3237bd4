// Package views renders the HTML pages of the application.
//
// Pages are html/template files embedded in the binary. Each page defines
// a "content" block that is wrapped by the "base" layout for full page
// loads and rendered alone for HTMX partial requests. Components read the
// request (language, flashes, CSRF token, current user) from the render
// context, so handlers only pass page data.
package views

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/middlewares"
	"github.com/globomantics/cms/pkg/cookie"
	"github.com/globomantics/cms/pkg/form"
	"github.com/globomantics/cms/pkg/i18n"
	"github.com/globomantics/cms/pkg/sanitizer"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

//go:embed locales
var localeFS embed.FS

// Static returns the stylesheet and other assets served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Locales returns the {lang}.yaml message catalogs for i18n.New.
func Locales() fs.FS {
	sub, err := fs.Sub(localeFS, "locales")
	if err != nil {
		panic(err)
	}
	return sub
}

const (
	layoutBlock  = "base"
	contentBlock = "content"
)

// Views holds the parsed page templates.
type Views struct {
	pages     map[string]*template.Template
	md        goldmark.Markdown
	languages []string
	admin     []string
}

// Option configures Views.
type Option func(*Views)

// WithLanguages lists the languages offered by the language switcher.
func WithLanguages(langs ...string) Option {
	return func(v *Views) { v.languages = langs }
}

// WithAdminResources lists the admin tables linked from the navigation.
func WithAdminResources(names ...string) Option {
	return func(v *Views) { v.admin = names }
}

// New parses every page together with the layout and shared partials.
func New(opts ...Option) (*Views, error) {
	v := &Views{
		pages: make(map[string]*template.Template),
		md: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
	for _, opt := range opts {
		opt(v)
	}

	shared := []string{"templates/layout.html", "templates/partials.html"}
	entries, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry[strings.LastIndexByte(entry, '/')+1:], ".html")
		tmpl, err := template.New(name).
			Funcs(template.FuncMap{"markdown": v.markdown}).
			ParseFS(templateFS, append(shared, entry)...)
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", entry, err)
		}
		v.pages[name] = tmpl
	}
	return v, nil
}

// markdown renders a description to sanitized HTML.
func (v *Views) markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := v.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(sanitizer.SanitizeMarkdownHTML(buf.String()))
}

// Page is the value every template executes against.
type Page struct {
	Data      any
	tr        *i18n.Translator
	User      *models.User
	Title     string
	Lang      string
	Path      string
	CSRFToken string
	Flashes   []cookie.Flash
	Languages []string
	Admin     []string
}

// T translates a message for the current language.
func (p *Page) T(key string) string {
	if p.tr == nil {
		return key
	}
	return p.tr.T(key)
}

// URL prefixes an application path with the current language.
func (p *Page) URL(path string) string {
	return web.LangURL(p.Lang, path)
}

// SwitchURL is the current page in another language.
func (p *Page) SwitchURL(lang string) string {
	return web.LangURL(lang, p.Path)
}

// Date formats a date with the conventions of the current language.
func (p *Page) Date(t time.Time) string {
	if p.tr == nil {
		return form.Format(t)
	}
	return p.tr.FormatDate(t)
}

// Owns reports whether the current user owns a record.
func (p *Page) Owns(ownerID int64) bool {
	return p.User != nil && p.User.Owns(ownerID)
}

// IsAdmin reports whether the current user may open the admin tables.
func (p *Page) IsAdmin() bool {
	return p.User != nil && p.User.IsAdmin
}

// Cell formats one admin table value.
func (p *Page) Cell(v any) string {
	switch t := v.(type) {
	case time.Time:
		return p.Date(t)
	case bool:
		if t {
			return p.T("yes")
		}
		return p.T("no")
	case string:
		return t
	}
	if s := form.Format(v); s != "" {
		return s
	}
	return fmt.Sprint(v)
}

// FieldView is one form input ready to draw.
type FieldView struct {
	Name    string
	Label   string
	Type    string
	Value   string
	Errors  []string
	Checked bool
	Text    bool
}

// FormView is a form ready to draw.
type FormView struct {
	Action      string
	Submit      string
	Cancel      string
	CancelLabel string
	Fields      []FieldView
	Multipart   bool
}

// Form prepares state for the "form" template. Hidden token fields carry
// the request's CSRF token. An empty cancel omits the cancel link.
func (p *Page) Form(state *form.State, action, cancel string) FormView {
	fv := FormView{Action: action, Cancel: cancel, CancelLabel: p.T("Cancel"), Submit: p.T("Submit")}
	for _, f := range state.Schema.Fields() {
		switch f.Kind {
		case form.KindSubmit:
			fv.Submit = p.T(f.Label)
			continue
		case form.KindFile:
			fv.Multipart = true
		}
		field := FieldView{
			Name:    f.Name,
			Label:   p.T(f.Label),
			Type:    f.Kind.InputType(),
			Value:   state.Input(f.Name),
			Errors:  state.ErrorsFor(f.Name),
			Checked: f.Kind == form.KindBool && state.Checked(f.Name),
			Text:    f.Kind == form.KindText,
		}
		if f.Kind == form.KindHidden && f.Name == middlewares.CSRFField {
			field.Value = p.CSRFToken
		}
		fv.Fields = append(fv.Fields, field)
	}
	return fv
}

// page builds the template value from the render context. Flashes are
// only consumed by full pages since partials have nowhere to show them.
func (v *Views) page(ctx context.Context, title string, data any, flashes bool) *Page {
	p := &Page{Title: title, Data: data, Languages: v.languages, Admin: v.admin}
	if u, ok := middlewares.User[*models.User](ctx); ok {
		p.User = u
	}
	p.CSRFToken = middlewares.CSRFToken(ctx)

	c, ok := web.FromContext(ctx)
	if !ok {
		return p
	}
	p.tr = c.Translator()
	p.Lang = c.Lang()
	if flashes {
		p.Flashes = c.Flashes()
	}
	p.Path = c.Request().URL.Path
	if p.Lang != "" {
		p.Path = strings.TrimPrefix(p.Path, "/"+p.Lang)
	}
	return p
}

// component renders a page, either wrapped in the layout or as the bare
// content block.
func (v *Views) component(name, title string, data any, block string) web.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		tmpl, ok := v.pages[name]
		if !ok {
			return fmt.Errorf("views: unknown page %q", name)
		}
		return tmpl.ExecuteTemplate(w, block, v.page(ctx, title, data, block == layoutBlock))
	})
}

func (v *Views) full(name, title string, data any) web.Component {
	return v.component(name, title, data, layoutBlock)
}

func (v *Views) partial(name, title string, data any) web.Component {
	return v.component(name, title, data, contentBlock)
}
