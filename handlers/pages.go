package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/wanderlist/wanderlist/internal/models"
	"github.com/wanderlist/wanderlist/internal/places"
	"github.com/wanderlist/wanderlist/pkg/middleware"
)

// view data for web/templates

type homePage struct {
	Title           string
	User            *models.Principal
	Message         string
	DisplayName     string
	Destination     string
	Interests       []string
	Food            []string
	Destinations    []places.Destination
	InterestOptions []places.Option
	FoodOptions     []places.Option
}

type resultsPage struct {
	Title       string
	User        *models.Principal
	DisplayName string
	Destination string
	Notices     []string
	Attractions []places.Place
	Food        []places.Place
}

type errorPage struct {
	Title   string
	User    *models.Principal
	Message string
}

func currentUser(c *gin.Context) *models.Principal {
	p, _, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil
	}
	return &p
}

func newHomePage(c *gin.Context) homePage {
	return homePage{
		Title:           "Plan a trip",
		User:            currentUser(c),
		Destinations:    places.Destinations,
		InterestOptions: places.InterestOptions,
		FoodOptions:     places.FoodOptions,
	}
}

func renderError(c *gin.Context, status int, msg string) {
	c.HTML(status, "error.html", errorPage{Title: "Error", User: currentUser(c), Message: msg})
}
