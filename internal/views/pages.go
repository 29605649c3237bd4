package views

import (
	"net/http"

	"github.com/globomantics/cms/internal/admin"
	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/pkg/form"
)

// FormData describes a page that shows one form.
type FormData struct {
	Form    *form.State
	Heading string
	Action  string
	Cancel  string
}

// HomeData is the landing page.
type HomeData struct {
	Latest []*models.Album
}

// Home renders the landing page with the latest albums.
func (v *Views) Home(latest []*models.Album) web.Component {
	return v.full("home", "Home", HomeData{Latest: latest})
}

// Register renders the sign up form.
func (v *Views) Register(state *form.State, action string) web.Component {
	return v.full("form_page", "Register", FormData{Form: state, Heading: "Register", Action: action})
}

// Login renders the sign in form.
func (v *Views) Login(state *form.State, action string) web.Component {
	return v.full("form_page", "Login", FormData{Form: state, Heading: "Login", Action: action})
}

// Form renders any single-form page, e.g. album and tour create/edit.
func (v *Views) Form(title string, data FormData) web.Component {
	if data.Heading == "" {
		data.Heading = title
	}
	return v.full("form_page", title, data)
}

// FormContent is the form alone, for HTMX swaps after failed validation.
func (v *Views) FormContent(title string, data FormData) web.Component {
	if data.Heading == "" {
		data.Heading = title
	}
	return v.partial("form_page", title, data)
}

// AlbumList renders every album.
func (v *Views) AlbumList(albums []*models.Album) web.Component {
	return v.full("album_list", "Albums", albums)
}

// AlbumListContent is the album list without the layout.
func (v *Views) AlbumListContent(albums []*models.Album) web.Component {
	return v.partial("album_list", "Albums", albums)
}

// AlbumShow renders one album.
func (v *Views) AlbumShow(album *models.Album) web.Component {
	return v.full("album_show", album.Title, album)
}

// TourList renders every tour.
func (v *Views) TourList(tours []*models.Tour) web.Component {
	return v.full("tour_list", "Tours", tours)
}

// TourListContent is the tour list without the layout.
func (v *Views) TourListContent(tours []*models.Tour) web.Component {
	return v.partial("tour_list", "Tours", tours)
}

// TourShow renders one tour.
func (v *Views) TourShow(tour *models.Tour) web.Component {
	return v.full("tour_show", tour.Title, tour)
}

// Table implements admin.Renderer.
func (v *Views) Table(data admin.TableData) web.Component {
	return v.full("admin_table", "Admin", data)
}

// Edit implements admin.Renderer.
func (v *Views) Edit(data admin.EditData) web.Component {
	return v.full("admin_edit", "Admin", data)
}

var _ admin.Renderer = (*Views)(nil)

// ErrorData is what the error page shows.
type ErrorData struct {
	Title     string
	Message   string
	Detail    string
	RequestID string
	Code      int
}

// Error renders an error page for he.
func (v *Views) Error(he *web.HTTPError) web.Component {
	data := ErrorData{
		Code:      he.Code,
		Title:     he.StatusText(),
		Message:   he.Message,
		Detail:    he.Detail,
		RequestID: he.RequestID,
	}
	if data.Code == 0 {
		data.Code = http.StatusInternalServerError
	}
	if he.ErrorCode != "" {
		data.Message = he.ErrorCode
	}
	return v.full("error", data.Title, data)
}
