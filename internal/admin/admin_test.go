package admin_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globomantics/cms/internal/admin"
	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/pkg/authz"
	"github.com/globomantics/cms/pkg/cookie"
	"github.com/globomantics/cms/pkg/form"
	"github.com/globomantics/cms/pkg/session"
	"github.com/globomantics/cms/pkg/validator"
)

type album struct {
	Title       string
	Artist      string
	Description string
	Genre       string
	Slug        string
	ID          int64
	UserID      int64
}

type user struct {
	Username string
	ID       int64
	IsAdmin  bool
}

var albumType = admin.NewType("Album",
	admin.Int("id", admin.KindInteger, func(a *album) int64 { return a.ID }, nil),
	admin.Str("title", admin.KindString, func(a *album) string { return a.Title }, func(a *album, v string) { a.Title = v }),
	admin.Str("artist", admin.KindString, func(a *album) string { return a.Artist }, func(a *album, v string) { a.Artist = v }),
	admin.Str("description", admin.KindText, func(a *album) string { return a.Description }, func(a *album, v string) { a.Description = v }),
	admin.Str("genre", admin.KindString, func(a *album) string { return a.Genre }, func(a *album, v string) { a.Genre = v }),
	admin.Int("user_id", admin.KindReference, func(a *album) int64 { return a.UserID }, nil),
	admin.Str("slug", admin.KindString, func(a *album) string { return a.Slug }, nil),
)

var userType = admin.NewType("User",
	admin.Int("id", admin.KindInteger, func(u *user) int64 { return u.ID }, nil),
	admin.Str("username", admin.KindString, func(u *user) string { return u.Username }, nil),
	admin.Bool("is_admin", func(u *user) bool { return u.IsAdmin }, nil),
)

func required(field string) func(string) []validator.Rule {
	return func(v string) []validator.Rule {
		return []validator.Rule{validator.RequiredString(field, v).WithMessage("Data is required!")}
	}
}

func short(field string, n int) func(string) []validator.Rule {
	return func(v string) []validator.Rule {
		return append(required(field)(v), validator.MaxLenString(field, v, n).WithMessage("Too long!"))
	}
}

var updateAlbum = form.New("update_album",
	form.String("title", "Title", short("title", 80)),
	form.String("artist", "Artist", short("artist", 30)),
	form.Text("description", "Description", required("description")),
	form.String("genre", "Genre", required("genre")),
	form.CSRFToken(),
	form.Submit("Update album information"),
)

// memRepo is an in-memory admin.Repository.
type memRepo[T any] struct {
	items     map[int64]T
	id        func(*T) int64
	saveErr   error
	deleteErr error
	mu        sync.Mutex
}

func newMemRepo[T any](id func(*T) int64, items ...T) *memRepo[T] {
	r := &memRepo[T]{items: make(map[int64]T), id: id}
	for _, it := range items {
		r.items[id(&it)] = it
	}
	return r
}

func (r *memRepo[T]) FindAll(context.Context) ([]*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*T
	for _, k := range slices.Sorted(maps.Keys(r.items)) {
		it := r.items[k]
		out = append(out, &it)
	}
	return out, nil
}

func (r *memRepo[T]) FindByID(_ context.Context, id int64) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("find %d: %w", id, admin.ErrNotFound)
	}
	return &it, nil
}

func (r *memRepo[T]) Save(_ context.Context, item *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.items[r.id(item)] = *item
	return nil
}

func (r *memRepo[T]) Delete(_ context.Context, item *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.items, r.id(item))
	return nil
}

// fail makes later Save and Delete calls return the given errors.
func (r *memRepo[T]) fail(saveErr, deleteErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr, r.deleteErr = saveErr, deleteErr
}

func (r *memRepo[T]) get(id int64) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	return it, ok
}

type componentFunc func(w io.Writer) error

func (f componentFunc) Render(_ context.Context, w io.Writer) error { return f(w) }

// textRenderer draws pages as plain lines that are easy to assert on.
type textRenderer struct{}

func (textRenderer) Table(d admin.TableData) web.Component {
	return componentFunc(func(w io.Writer) error {
		names := make([]string, len(d.Columns))
		for i, c := range d.Columns {
			names[i] = c.Name
		}
		fmt.Fprintf(w, "table %s edit=%t base=%s cols=%s\n", d.Resource, d.EditAllowed, d.BasePath, strings.Join(names, ","))
		for _, row := range d.Rows {
			fmt.Fprintf(w, "row %d %v\n", row.ID, row.Cells)
		}
		return nil
	})
}

func (textRenderer) Edit(d admin.EditData) web.Component {
	return componentFunc(func(w io.Writer) error {
		fmt.Fprintf(w, "edit %s %d action=%s\n", d.Resource, d.ID, d.Action)
		for _, f := range d.Fields {
			fmt.Fprintf(w, "%s=%s", f, d.Form.Input(f))
			for _, msg := range d.Form.ErrorsFor(f) {
				fmt.Fprintf(w, " !%s", msg)
			}
			fmt.Fprintln(w)
		}
		return nil
	})
}

type recorder struct {
	events []admin.DeletedEvent
	mu     sync.Mutex
}

func (r *recorder) Enqueue(_ context.Context, name string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name != admin.TaskDeleted {
		return fmt.Errorf("unexpected task %s", name)
	}
	r.events = append(r.events, payload.(admin.DeletedEvent))
	return nil
}

type routes func(r web.Router)

func (f routes) Routes(r web.Router) { f(r) }

type fixture struct {
	app    *web.App
	albums *memRepo[album]
	users  *memRepo[user]
	reg    *admin.Registrar
	jobs   *recorder
}

func newFixture(t *testing.T, opts ...web.Option) *fixture {
	t.Helper()

	f := &fixture{
		albums: newMemRepo(func(a *album) int64 { return a.ID },
			album{ID: 7, Title: "Rumours", Artist: "Fleetwood Mac", Description: "Classic record", Genre: "Rock", Slug: "rumours-x1y2", UserID: 2},
			album{ID: 8, Title: "Tusk", Artist: "Fleetwood Mac", Description: "Double album", Genre: "Rock", Slug: "tusk-a9b8", UserID: 2},
		),
		users: newMemRepo(func(u *user) int64 { return u.ID },
			user{ID: 1, Username: "ada", IsAdmin: true},
			user{ID: 2, Username: "bob"},
			user{ID: 3, Username: "eve"},
		),
		jobs: &recorder{},
	}

	principal := func(c web.Context) (admin.Principal, bool) {
		u, ok := f.users.get(c.UserID())
		if !ok {
			return admin.Principal{}, false
		}
		return admin.Principal{ID: u.ID, Name: u.Username, Admin: u.IsAdmin}, true
	}
	authorizer, err := authz.New("")
	require.NoError(t, err)

	f.reg = admin.NewRegistrar(textRenderer{}, admin.NewGuard(authorizer, principal))
	admin.Register(f.reg, albumType, admin.Repository[album](f.albums), updateAlbum)
	admin.Register(f.reg, userType, admin.Repository[user](f.users), nil)

	base := []web.Option{
		web.WithCookieManager(cookie.New(cookie.WithSecret("0123456789abcdef0123456789abcdef"))),
		web.WithSession(web.NewSessionManager(session.NewMemoryStore())),
		web.WithJobs(f.jobs),
		web.WithHandlers(routes(func(r web.Router) {
			r.POST("/login/{id}", func(c web.Context) error {
				id, err := c.ParamInt("id")
				if err != nil {
					return err
				}
				if err := c.AuthenticateSession(id, false); err != nil {
					return err
				}
				return c.NoContent(http.StatusNoContent)
			})
			r.GET("/login", func(c web.Context) error {
				var msgs []string
				for _, fl := range c.Flashes() {
					msgs = append(msgs, fl.Category+":"+fl.Message)
				}
				return c.String(http.StatusOK, strings.Join(msgs, "\n"))
			})
			f.reg.Routes(r)
		})),
	}
	f.app = web.New(append(base, opts...)...)
	return f
}

// login returns the session cookies of user id.
func (f *fixture) login(t *testing.T, id int64) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/login/%d", id), nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	return rec.Result().Cookies()
}

func (f *fixture) do(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.app.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRegistrar(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res := f.reg.Resources()
	require.Len(t, res, 2)
	assert.Equal(t, "album", res[0].Name)
	assert.True(t, res[0].EditAllowed)
	assert.Equal(t, []string{"title", "artist", "description", "genre"}, res[0].Editable)
	assert.Equal(t, "user", res[1].Name)
	assert.False(t, res[1].EditAllowed)
	assert.Empty(t, res[1].Editable)

	type route struct{ method, pattern, name string }
	var got []route
	for _, e := range f.reg.Endpoints() {
		got = append(got, route{e.Method, e.Pattern, e.Name})
	}
	assert.Equal(t, []route{
		{http.MethodGet, "/admin/album/", "admin.album_table"},
		{http.MethodGet, "/admin/album/{id:[0-9]+}", "admin.album"},
		{http.MethodPost, "/admin/album/{id:[0-9]+}", "admin.album"},
		{http.MethodDelete, "/admin/album/{id:[0-9]+}", "admin.album"},
		{http.MethodGet, "/admin/user/", "admin.user_table"},
		{http.MethodDelete, "/admin/user/{id:[0-9]+}", "admin.user"},
	}, got)

	// The app sees the same names once mounted.
	var mounted []string
	for _, e := range f.app.Endpoints() {
		if strings.HasPrefix(e.Name, "admin.") {
			mounted = append(mounted, e.Method+" "+e.Name)
		}
	}
	assert.Len(t, mounted, 6)
	path, err := f.app.Path("admin.album", "7")
	require.NoError(t, err)
	assert.Equal(t, "/admin/album/7", path)
}

func TestRegisterPanics(t *testing.T) {
	t.Parallel()

	reg := admin.NewRegistrar(textRenderer{}, nil)
	repo := admin.Repository[album](newMemRepo(func(a *album) int64 { return a.ID }))
	admin.Register(reg, albumType, repo, nil)

	assert.Panics(t, func() { admin.Register(reg, albumType, repo, nil) }, "duplicate name")

	other := admin.NewRegistrar(textRenderer{}, nil)
	assert.Panics(t, func() {
		admin.Register(other, albumType, repo, form.New("bad", form.String("label", "Label", nil)))
	}, "unknown field")
	assert.Panics(t, func() {
		admin.Register(other, albumType, repo, form.New("bad", form.String("slug", "Slug", nil)))
	}, "read-only field")
	assert.Panics(t, func() {
		admin.Register(other, albumType, repo, form.New("bad", form.Integer("title", "Title", nil)))
	}, "kind mismatch")
}

func TestTableView(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	admin1 := f.login(t, 1)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/admin/album/", nil), admin1)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "table album edit=true base=/admin/album/ cols=id,title,artist,description,genre,user_id,slug")
	assert.Contains(t, body, "row 7 [7 Rumours Fleetwood Mac Classic record Rock 2 rumours-x1y2]")
	assert.Contains(t, body, "row 8 ")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/admin/user/", nil), admin1)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "table user edit=false")
	assert.Contains(t, rec.Body.String(), "row 3 [3 eve false]")
}

func TestEditGetPrefills(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/admin/album/7", nil), f.login(t, 1))
	require.Equal(t, http.StatusOK, rec.Code)

	want := "edit album 7 action=/admin/album/7\n" +
		"title=Rumours\nartist=Fleetwood Mac\ndescription=Classic record\ngenre=Rock\n"
	assert.Equal(t, want, rec.Body.String())

	rec = f.do(httptest.NewRequest(http.MethodGet, "/admin/album/99", nil), f.login(t, 1))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditPostSaves(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(postForm("/admin/album/7", url.Values{
		"title":       {"New"},
		"artist":      {"X"},
		"description": {"Ten chars++"},
		"genre":       {"Rock"},
		"slug":        {"hijacked"},
		"id":          {"99"},
	}), f.login(t, 1))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/album/", rec.Header().Get("Location"))

	got, ok := f.albums.get(7)
	require.True(t, ok)
	assert.Equal(t, album{
		ID: 7, Title: "New", Artist: "X", Description: "Ten chars++", Genre: "Rock",
		Slug: "rumours-x1y2", UserID: 2,
	}, got)
	_, ok = f.albums.get(99)
	assert.False(t, ok)
}

func TestEditPostInvalidRerenders(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(postForm("/admin/album/7", url.Values{
		"title":  {"Changed"},
		"artist": {""},
		"genre":  {"Rock"},
	}), f.login(t, 1))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "title=Changed\n")
	assert.Contains(t, body, "artist= !Data is required!\n")
	assert.Contains(t, body, "description= !Data is required!\n")

	got, _ := f.albums.get(7)
	assert.Equal(t, "Rumours", got.Title)
}

func TestEditPostTooLongRerenders(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(postForm("/admin/album/7", url.Values{
		"title":       {"New"},
		"artist":      {strings.Repeat("a", 31)},
		"description": {"Classic record"},
		"genre":       {"Rock"},
	}), f.login(t, 1))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "artist="+strings.Repeat("a", 31)+" !Too long!\n")
	got, _ := f.albums.get(7)
	assert.Equal(t, "Fleetwood Mac", got.Artist)
}

func TestRepositoryFailures(t *testing.T) {
	t.Parallel()

	t.Run("save error is a server error", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.albums.fail(errors.New("disk full"), nil)
		rec := f.do(postForm("/admin/album/7", url.Values{
			"title":       {"New"},
			"artist":      {"X"},
			"description": {"Ten chars++"},
			"genre":       {"Rock"},
		}), f.login(t, 1))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Header().Get("Location"))
		got, _ := f.albums.get(7)
		assert.Equal(t, "Rumours", got.Title)
	})

	t.Run("delete error is a server error without event", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.albums.fail(nil, errors.New("disk full"))
		rec := f.do(httptest.NewRequest(http.MethodDelete, "/admin/album/7", nil), f.login(t, 1))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		_, ok := f.albums.get(7)
		assert.True(t, ok)
		assert.Empty(t, f.jobs.events)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	admin1 := f.login(t, 1)

	rec := f.do(httptest.NewRequest(http.MethodDelete, "/admin/album/8", nil), admin1)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	_, ok := f.albums.get(8)
	assert.False(t, ok)

	// Absent records delete successfully without an event.
	rec = f.do(httptest.NewRequest(http.MethodDelete, "/admin/album/8", nil), admin1)
	assert.Equal(t, http.StatusOK, rec.Code)

	// So do ids no record can carry.
	rec = f.do(httptest.NewRequest(http.MethodDelete, "/admin/album/0", nil), admin1)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(httptest.NewRequest(http.MethodGet, "/admin/album/0", nil), admin1)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []admin.DeletedEvent{{Resource: "album", ID: 8, Admin: "ada"}}, f.jobs.events)
}

func TestResourceWithoutSchema(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	admin1 := f.login(t, 1)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/admin/user/3", nil), admin1)
	assert.Contains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, rec.Code)
	rec = f.do(postForm("/admin/user/3", url.Values{"username": {"mallory"}}), admin1)
	assert.Contains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodDelete, "/admin/user/3", nil), admin1)
	assert.Equal(t, http.StatusOK, rec.Code)
	_, ok := f.users.get(3)
	assert.False(t, ok)
}

func TestGuard(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	member := f.login(t, 2)

	requests := map[string]func() *http.Request{
		"table":  func() *http.Request { return httptest.NewRequest(http.MethodGet, "/admin/album/", nil) },
		"get":    func() *http.Request { return httptest.NewRequest(http.MethodGet, "/admin/album/7", nil) },
		"post":   func() *http.Request { return postForm("/admin/album/7", url.Values{"title": {"Owned"}}) },
		"delete": func() *http.Request { return httptest.NewRequest(http.MethodDelete, "/admin/album/7", nil) },
	}
	for name, build := range requests {
		for _, who := range []struct {
			label   string
			cookies []*http.Cookie
		}{{"anonymous", nil}, {"member", member}} {
			rec := f.do(build(), who.cookies)
			assert.Equal(t, http.StatusSeeOther, rec.Code, name+" "+who.label)
			assert.Equal(t, "/login", rec.Header().Get("Location"), name+" "+who.label)
		}
	}

	got, ok := f.albums.get(7)
	require.True(t, ok)
	assert.Equal(t, "Rumours", got.Title)
	assert.Empty(t, f.jobs.events)

	t.Run("flash survives the redirect", func(t *testing.T) {
		t.Parallel()

		rec := f.do(httptest.NewRequest(http.MethodDelete, "/admin/album/7", nil), member)
		next := f.do(httptest.NewRequest(http.MethodGet, "/login", nil), append(member, rec.Result().Cookies()...))
		assert.Equal(t, "danger:"+admin.MsgAdminRequired, next.Body.String())
	})

	t.Run("htmx gets HX-Redirect", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodDelete, "/admin/album/7", nil)
		req.Header.Set("HX-Request", "true")
		rec := f.do(req, member)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("HX-Redirect"))
		_, ok := f.albums.get(7)
		assert.True(t, ok)
	})
}

func TestDeleteWithoutQueueLogs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	f := newFixture(t, web.WithLogger(log), web.WithJobs(nil))

	rec := f.do(httptest.NewRequest(http.MethodDelete, "/admin/album/7", nil), f.login(t, 1))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "Album with id 7 was deleted by ada")
}

// Rows come back in repository order.
func TestTableRowOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/admin/album/", nil), f.login(t, 1))
	body := rec.Body.String()
	assert.Less(t, strings.Index(body, "row 7"), strings.Index(body, "row 8"))
}
