package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wanderlist/wanderlist/internal/places"
	"github.com/wanderlist/wanderlist/internal/planner"
	"github.com/wanderlist/wanderlist/internal/preferences"
	"github.com/wanderlist/wanderlist/pkg/logger"
	"github.com/wanderlist/wanderlist/pkg/middleware"
)

// SearchForm is the urlencoded body of POST /search
type SearchForm struct {
	Name        string   `form:"name"`
	Destination string   `form:"destination"`
	Interests   []string `form:"interests"`
	Food        []string `form:"food"`
}

type SearchHandler struct {
	prefs   *preferences.Service
	planner *planner.Service
}

func NewSearchHandler(prefs *preferences.Service, p *planner.Service) *SearchHandler {
	return &SearchHandler{prefs: prefs, planner: p}
}

// Register adds the form and results routes; callers must attach session middleware first.
func (h *SearchHandler) Register(r gin.IRoutes) {
	r.GET("/", middleware.RequireLogin(), h.Home)
	r.POST("/search", middleware.RequireLogin(), h.Search)
}

// Home renders the search form prefilled from the stored preference.
func (h *SearchHandler) Home(c *gin.Context) {
	p, uid, _ := middleware.PrincipalFrom(c)
	page := newHomePage(c)
	page.DisplayName = p.Name

	pref, err := h.prefs.Get(c.Request.Context(), uid)
	if err != nil {
		// the form still works without the prefill
		logger.Errorf("load preference for user %d: %v", uid, err)
	}
	if pref != nil {
		page.Destination = pref.Destination
		page.Interests = pref.Interests
		page.Food = pref.Food
	}
	c.HTML(http.StatusOK, "home.html", page)
}

// Search stores the submission and renders the sampled results.
func (h *SearchHandler) Search(c *gin.Context) {
	_, uid, _ := middleware.PrincipalFrom(c)
	var form SearchForm
	if err := c.ShouldBind(&form); err != nil {
		h.rerender(c, form, "We could not read that form. Please try again.")
		return
	}

	res, err := h.planner.Plan(c.Request.Context(), uid, planner.Submission{
		Name:        form.Name,
		Destination: form.Destination,
		Interests:   form.Interests,
		Food:        form.Food,
	})
	switch {
	case err == nil:
	case errors.Is(err, preferences.ErrNoDestination):
		h.rerender(c, form, "Please choose a destination.")
		return
	case errors.Is(err, planner.ErrValidation):
		h.rerender(c, form, "Please select at least one interest.")
		return
	case errors.Is(err, places.ErrUnknownDestination):
		h.rerender(c, form, "We don't know that destination yet. Please pick one from the list.")
		return
	default:
		logger.Errorf("search for user %d failed: %v", uid, err)
		renderError(c, http.StatusInternalServerError, "We could not save your preferences.")
		return
	}

	c.HTML(http.StatusOK, "results.html", resultsPage{
		Title:       "Results for " + res.Destination.Name,
		User:        currentUser(c),
		DisplayName: res.DisplayName,
		Destination: res.Destination.Name,
		Notices:     res.Notices,
		Attractions: res.Attractions,
		Food:        res.Food,
	})
}

func (h *SearchHandler) rerender(c *gin.Context, form SearchForm, msg string) {
	page := newHomePage(c)
	page.Message = msg
	page.DisplayName = form.Name
	page.Destination = form.Destination
	page.Interests = form.Interests
	page.Food = form.Food
	c.HTML(http.StatusBadRequest, "home.html", page)
}
