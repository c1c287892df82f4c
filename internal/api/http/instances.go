package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halcyon-desktop/halcyon/internal/domain/bridge"
	"github.com/halcyon-desktop/halcyon/internal/domain/lifecycle"
	"github.com/halcyon-desktop/halcyon/internal/domain/window"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

type launchRequest struct {
	AppID   string              `json:"app_id" binding:"required"`
	Context types.LaunchContext `json:"context"`
}

type terminateRequest struct {
	Reason string `json:"reason"`
}

type appWindowRequest struct {
	Bounds      *types.Bounds          `json:"bounds,omitempty"`
	Constraints *types.Constraints     `json:"constraints,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type messageRequest struct {
	From    string                 `json:"from"`
	To      string                 `json:"to" binding:"required"`
	Type    string                 `json:"type" binding:"required"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ListInstances returns running instances, optionally filtered by state
func (h *Handlers) ListInstances(c *gin.Context) {
	var state *types.InstanceState
	if q := c.Query("state"); q != "" {
		s := types.InstanceState(q)
		state = &s
	}
	c.JSON(http.StatusOK, gin.H{
		"instances": h.engine.List(state),
		"stats":     h.engine.Stats(),
	})
}

// GetInstance returns one instance
func (h *Handlers) GetInstance(c *gin.Context) {
	inst, ok := h.engine.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "instance not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instance": inst})
}

// LaunchApp launches an application instance
func (h *Handlers) LaunchApp(c *gin.Context) {
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inst, err := h.engine.Launch(c.Request.Context(), req.AppID, req.Context)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, lifecycle.ErrAppNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"instance": inst})
}

// TerminateInstance stops and removes an instance
func (h *Handlers) TerminateInstance(c *gin.Context) {
	var req terminateRequest
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "api request"
	}

	h.engine.Terminate(c.Request.Context(), c.Param("id"), req.Reason)
	c.JSON(http.StatusOK, gin.H{"terminated": true})
}

// SuspendInstance moves a running instance to the background
func (h *Handlers) SuspendInstance(c *gin.Context) {
	h.engine.Suspend(c.Request.Context(), c.Param("id"))
	h.instanceState(c)
}

// ResumeInstance wakes a suspended instance
func (h *Handlers) ResumeInstance(c *gin.Context) {
	h.engine.Resume(c.Request.Context(), c.Param("id"))
	h.instanceState(c)
}

func (h *Handlers) instanceState(c *gin.Context) {
	inst, ok := h.engine.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "instance not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instance": inst})
}

// CreateAppWindow opens a window owned by an instance
func (h *Handlers) CreateAppWindow(c *gin.Context) {
	// An empty body is fine, geometry then comes from the descriptor.
	var req appWindowRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	win, err := h.bridge.CreateWindowForApp(c.Param("id"), window.CreateOptions{
		Bounds:      req.Bounds,
		Constraints: req.Constraints,
		Metadata:    req.Metadata,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, bridge.ErrInstanceNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"window": win})
}

// RenderInstance invokes the instance's render behavior
func (h *Handlers) RenderInstance(c *gin.Context) {
	out, ok := h.engine.Render(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "instance has no render behavior"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ui": out})
}

// SendMessage delivers a message between instances. Broadcast uses
// the "*" target.
func (h *Handlers) SendMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.engine.SendMessage(types.Message{
		From:    req.From,
		To:      req.To,
		Type:    req.Type,
		Payload: req.Payload,
	})
	c.JSON(http.StatusAccepted, gin.H{"sent": true})
}
