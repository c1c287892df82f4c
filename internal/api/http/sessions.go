package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halcyon-desktop/halcyon/internal/domain/session"
)

type saveSessionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// ListSessions returns saved session metadata, newest first
func (h *Handlers) ListSessions(c *gin.Context) {
	metas, err := h.sessions.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.sessions.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": metas, "stats": stats})
}

// SaveSession snapshots the current desktop under a new session
func (h *Handlers) SaveSession(c *gin.Context) {
	var req saveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.sessions.Save(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": sess.ToMetadata()})
}

// RestoreSession loads a saved snapshot into the desktop
func (h *Handlers) RestoreSession(c *gin.Context) {
	sess, err := h.sessions.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		// Corrupt snapshots are recoverable: live state is preserved.
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess.ToMetadata(), "windows": h.windows.GetAll()})
}

// DeleteSession removes a saved session
func (h *Handlers) DeleteSession(c *gin.Context) {
	existed, err := h.sessions.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": existed})
}
