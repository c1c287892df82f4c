package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halcyon-desktop/halcyon/internal/domain/window"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

type createWindowRequest struct {
	ID          string                 `json:"id" binding:"required"`
	AppID       string                 `json:"app_id" binding:"required"`
	Bounds      *types.Bounds          `json:"bounds,omitempty"`
	Constraints *types.Constraints     `json:"constraints,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ListWindows returns all windows in stacking order
func (h *Handlers) ListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"windows": h.windows.GetAll(),
		"stats":   h.windows.Stats(),
	})
}

// GetWindow returns one window
func (h *Handlers) GetWindow(c *gin.Context) {
	win, ok := h.windows.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "window not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": win})
}

// GetFocusedWindow returns the currently focused window, if any
func (h *Handlers) GetFocusedWindow(c *gin.Context) {
	win, ok := h.windows.GetFocused()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"window": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": win})
}

// CreateWindow creates a window with a caller-chosen identity
func (h *Handlers) CreateWindow(c *gin.Context) {
	var req createWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	win, err := h.windows.Create(req.ID, req.AppID, window.CreateOptions{
		Bounds:      req.Bounds,
		Constraints: req.Constraints,
		Metadata:    req.Metadata,
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"window": win})
}

// CloseWindow destroys a window, honoring its close constraint
func (h *Handlers) CloseWindow(c *gin.Context) {
	id := c.Param("id")
	win, ok := h.windows.Get(id)
	if !ok {
		// Stale references are tolerated, report as already gone.
		c.JSON(http.StatusOK, gin.H{"closed": false})
		return
	}
	if !win.Constraints.Closable {
		c.JSON(http.StatusForbidden, gin.H{"error": "window is not closable"})
		return
	}

	h.windows.Destroy(id)
	c.JSON(http.StatusOK, gin.H{"closed": true})
}

// FocusWindow focuses and raises a window
func (h *Handlers) FocusWindow(c *gin.Context) {
	h.windows.Focus(c.Param("id"))
	h.windowState(c)
}

// MinimizeWindow hides a window from the desktop
func (h *Handlers) MinimizeWindow(c *gin.Context) {
	h.windows.Minimize(c.Param("id"))
	h.windowState(c)
}

// MaximizeWindow flags a window as maximized
func (h *Handlers) MaximizeWindow(c *gin.Context) {
	h.windows.Maximize(c.Param("id"))
	h.windowState(c)
}

// RestoreWindow reverses a minimize or maximize
func (h *Handlers) RestoreWindow(c *gin.Context) {
	h.windows.Restore(c.Param("id"))
	h.windowState(c)
}

// MoveWindow repositions a window
func (h *Handlers) MoveWindow(c *gin.Context) {
	var pos types.Position
	if err := c.ShouldBindJSON(&pos); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.windows.Move(c.Param("id"), pos)
	h.windowState(c)
}

// ResizeWindow resizes a window, clamped to its constraints
func (h *Handlers) ResizeWindow(c *gin.Context) {
	var size types.Size
	if err := c.ShouldBindJSON(&size); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.windows.Resize(c.Param("id"), size)
	h.windowState(c)
}

// windowState responds with the window's post-operation state.
// Constraint-rejected operations are no-ops, so the caller sees the
// unchanged record rather than an error.
func (h *Handlers) windowState(c *gin.Context) {
	win, ok := h.windows.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"window": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": win})
}

// GetViewport returns the shared desktop viewport
func (h *Handlers) GetViewport(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"viewport": h.windows.Viewport()})
}

// SetViewport updates the shared desktop viewport
func (h *Handlers) SetViewport(c *gin.Context) {
	var vp types.Viewport
	if err := c.ShouldBindJSON(&vp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.windows.SetViewport(vp)
	c.JSON(http.StatusOK, gin.H{"viewport": h.windows.Viewport()})
}
