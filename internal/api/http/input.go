package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

// DispatchEvent injects a normalized input event into the router and
// reports whether it was consumed. The event source uses the result to
// decide whether to suppress the platform's default handling.
func (h *Handlers) DispatchEvent(c *gin.Context) {
	var ev types.InputEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ev.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing event type"})
		return
	}

	consumed := h.router.Dispatch(ev)
	c.JSON(http.StatusOK, gin.H{"consumed": consumed})
}

// RecentEvents returns the router's recent-event window
func (h *Handlers) RecentEvents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": h.router.Recent()})
}

// EventHistory returns the bounded input history
func (h *Handlers) EventHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"events": h.router.History()})
}

// InputStats returns router counters and history telemetry
func (h *Handlers) InputStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":     h.router.Stats(),
		"telemetry": h.router.Telemetry(),
	})
}
