package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wanderlist/wanderlist/internal/preferences"
	"github.com/wanderlist/wanderlist/pkg/logger"
	"github.com/wanderlist/wanderlist/pkg/middleware"
)

// APIHandler serves the JSON view of the current user.
type APIHandler struct {
	prefs *preferences.Service
}

func NewAPIHandler(prefs *preferences.Service) *APIHandler {
	return &APIHandler{prefs: prefs}
}

// Register mounts /me and /preference behind auth on rg.
func (h *APIHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	rg.GET("/me", auth, h.Me)
	rg.GET("/preference", auth, h.Preference)
}

func (h *APIHandler) Me(c *gin.Context) {
	p, uid, _ := middleware.PrincipalFrom(c)
	c.JSON(http.StatusOK, gin.H{"id": uid, "name": p.Name, "email": p.Email})
}

// Preference returns the stored preference, 404 when none was saved yet.
func (h *APIHandler) Preference(c *gin.Context) {
	_, uid, _ := middleware.PrincipalFrom(c)
	pref, err := h.prefs.Get(c.Request.Context(), uid)
	if err != nil {
		logger.Errorf("load preference for user %d: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load preference"})
		return
	}
	if pref == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no preference saved"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"preference": pref,
		// legacy delimited form
		"interests": preferences.JoinTags(pref.Interests),
		"food":      preferences.JoinTags(pref.Food),
	})
}
