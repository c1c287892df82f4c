package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halcyon-desktop/halcyon/internal/domain/registry"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

type registerAppRequest struct {
	Descriptor types.Descriptor `json:"descriptor" binding:"required"`
}

// ListApps returns registered application descriptors, optionally
// filtered by category
func (h *Handlers) ListApps(c *gin.Context) {
	var category *string
	if q := c.Query("category"); q != "" {
		category = &q
	}
	c.JSON(http.StatusOK, gin.H{
		"apps":  h.apps.List(category),
		"stats": h.apps.Stats(),
	})
}

// GetApp returns one application descriptor
func (h *Handlers) GetApp(c *gin.Context) {
	desc, ok := h.apps.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"app": desc})
}

// SearchApps free-text searches descriptors by name, description, and
// keywords
func (h *Handlers) SearchApps(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter: q"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"apps": h.apps.Search(query)})
}

// RegisterApp registers an application descriptor.
//
// Registered applications carry no renderable component; HTTP clients
// describe apps whose content lives in the frontend shell. Manifest
// validation runs first so a malformed descriptor never lands in the
// catalog.
func (h *Handlers) RegisterApp(c *gin.Context) {
	var req registerAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if violations := registry.ValidateManifest(&req.Descriptor); len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid manifest", "violations": violations})
		return
	}
	if err := h.apps.Register(req.Descriptor, types.Component{}); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"app": req.Descriptor})
}

// UnregisterApp removes an application descriptor
func (h *Handlers) UnregisterApp(c *gin.Context) {
	removed := h.apps.Unregister(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
