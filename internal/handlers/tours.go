package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/globomantics/cms/internal/forms"
	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/internal/views"
	"github.com/globomantics/cms/internal/web"
	"github.com/globomantics/cms/middlewares"
	"github.com/globomantics/cms/pkg/form"
	"github.com/globomantics/cms/pkg/slug"
)

// TourStore persists tours.
type TourStore interface {
	Create(ctx context.Context, t *models.Tour) error
	FindAll(ctx context.Context) ([]*models.Tour, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tour, error)
	Save(ctx context.Context, t *models.Tour) error
	Delete(ctx context.Context, t *models.Tour) error
}

// Tours serves the tour pages with the same access rules as Albums.
type Tours struct {
	tours TourStore
	views *views.Views
}

func NewTours(tours TourStore, v *views.Views) *Tours {
	return &Tours{tours: tours, views: v}
}

func (h *Tours) Routes(r web.Router) {
	r.Route("/tour", func(r web.Router) {
		r.Use(middlewares.LoginRequired())
		r.GET("/", h.list).Named("tour.list")
		r.GET("/create", h.createForm).Named("tour.create")
		r.POST("/create", h.createSubmit)
		r.GET("/edit/{slug}", h.editForm).Named("tour.edit")
		r.POST("/edit/{slug}", h.editSubmit)
		r.POST("/delete/{slug}", h.delete).Named("tour.delete")
		r.GET("/show/{slug}", h.show).Named("tour.show")
	})
}

func (h *Tours) list(c web.Context) error {
	tours, err := h.tours.FindAll(c)
	if err != nil {
		return err
	}
	return c.RenderPartial(http.StatusOK, h.views.TourList(tours), h.views.TourListContent(tours))
}

func (h *Tours) renderCreate(c web.Context, code int, state *form.State) error {
	data := views.FormData{Form: state, Action: c.URL("/tour/create"), Cancel: c.URL("/tour/")}
	return c.RenderPartial(code, h.views.Form("Add tour", data), h.views.FormContent("Add tour", data))
}

func (h *Tours) createForm(c web.Context) error {
	return h.renderCreate(c, http.StatusOK, form.NewState(forms.CreateTour))
}

func (h *Tours) createSubmit(c web.Context) error {
	values, verrs, err := c.Bind(forms.CreateTour)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return h.renderCreate(c, http.StatusUnprocessableEntity, &form.State{Schema: forms.CreateTour, Values: values, Errors: verrs})
	}

	tour := &models.Tour{
		Title:       values.String("title"),
		Artist:      values.String("artist"),
		Description: values.String("description"),
		Genre:       values.String("genre"),
		StartDate:   values.Time("start_date"),
		EndDate:     values.Time("end_date"),
		Slug:        slug.Make(values.String("title"), slug.WithSuffix(slugSuffixBytes)),
		UserID:      currentUser(c).ID,
	}
	if err := h.tours.Create(c, tour); err != nil {
		return fmt.Errorf("create tour: %w", err)
	}
	c.LogInfo("tour created", "tour_id", tour.ID, "slug", tour.Slug)
	return redirectWith(c, "The new tour has been added.", "/tour/show/"+tour.Slug)
}

func (h *Tours) owned(c web.Context) (*models.Tour, error) {
	tour, err := h.tours.FindBySlug(c, c.Param("slug"))
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if tour == nil || !owns(c, tour.UserID) {
		return nil, notAuthorized(c)
	}
	return tour, nil
}

func (h *Tours) renderEdit(c web.Context, code int, tour *models.Tour, state *form.State) error {
	data := views.FormData{
		Form:    state,
		Heading: "Edit tour",
		Action:  c.URL("/tour/edit/" + tour.Slug),
		Cancel:  c.URL("/tour/show/" + tour.Slug),
	}
	return c.RenderPartial(code, h.views.Form(tour.Title, data), h.views.FormContent(tour.Title, data))
}

func (h *Tours) editForm(c web.Context) error {
	tour, err := h.owned(c)
	if tour == nil {
		return err
	}
	state := form.NewState(forms.UpdateTour)
	state.Set("title", tour.Title)
	state.Set("artist", tour.Artist)
	state.Set("description", tour.Description)
	state.Set("genre", tour.Genre)
	state.Set("start_date", tour.StartDate)
	state.Set("end_date", tour.EndDate)
	return h.renderEdit(c, http.StatusOK, tour, state)
}

func (h *Tours) editSubmit(c web.Context) error {
	tour, err := h.owned(c)
	if tour == nil {
		return err
	}
	values, verrs, err := c.Bind(forms.UpdateTour)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return h.renderEdit(c, http.StatusUnprocessableEntity, tour, &form.State{Schema: forms.UpdateTour, Values: values, Errors: verrs})
	}

	tour.Title = values.String("title")
	tour.Artist = values.String("artist")
	tour.Description = values.String("description")
	tour.Genre = values.String("genre")
	tour.StartDate = values.Time("start_date")
	tour.EndDate = values.Time("end_date")
	if err := h.tours.Save(c, tour); err != nil {
		return fmt.Errorf("save tour %d: %w", tour.ID, err)
	}
	return redirectWith(c, "The tour has been updated.", "/tour/show/"+tour.Slug)
}

func (h *Tours) delete(c web.Context) error {
	tour, err := h.owned(c)
	if tour == nil {
		return err
	}
	if err := h.tours.Delete(c, tour); err != nil {
		return fmt.Errorf("delete tour %d: %w", tour.ID, err)
	}
	c.LogInfo("tour deleted", "tour_id", tour.ID)
	return redirectWith(c, "The tour has been deleted.", middlewares.HomePath)
}

func (h *Tours) show(c web.Context) error {
	tour, err := h.tours.FindBySlug(c, c.Param("slug"))
	if isNotFound(err) {
		return notFound(err)
	}
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, h.views.TourShow(tour))
}
