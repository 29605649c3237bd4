package handlers

import (
	"context"
	"net/http"

	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/internal/views"
	"github.com/globomantics/cms/internal/web"
)

// latestOnHome is how many albums the home page lists.
const latestOnHome = 5

// LatestAlbums lists recent albums for the home page.
type LatestAlbums interface {
	Latest(ctx context.Context, n int) ([]*models.Album, error)
}

// Home serves the landing page. Extra middleware (the page cache) wraps
// only this route.
type Home struct {
	albums LatestAlbums
	views  *views.Views
	mw     []web.Middleware
}

func NewHome(albums LatestAlbums, v *views.Views, mw ...web.Middleware) *Home {
	return &Home{albums: albums, views: v, mw: mw}
}

func (h *Home) Routes(r web.Router) {
	r.GET("/", h.home, h.mw...).Named("main.home")
}

func (h *Home) home(c web.Context) error {
	latest, err := h.albums.Latest(c, latestOnHome)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, h.views.Home(latest))
}
