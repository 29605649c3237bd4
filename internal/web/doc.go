// Package web is the request layer of the application: a chi router behind
// a Context interface, handler and middleware types, HTTP errors, server
// side sessions, flashes and graceful server shutdown.
//
// Handlers return errors instead of writing failure responses themselves:
//
//	func (h *Albums) show(c web.Context) error {
//	    album, err := h.repo.FindBySlug(c, c.Param("slug"))
//	    if errors.Is(err, repository.ErrNotFound) {
//	        return web.ErrNotFound("album not found", web.WithError(err))
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    return c.Render(http.StatusOK, views.AlbumShow(album))
//	}
//
// Routes are declared by types implementing Handler and may be named so
// that listings and URL building can refer to them:
//
//	r.GET("/album/", h.list).Named("album.list")
package web
