package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halcyon-desktop/halcyon/internal/domain/bridge"
	"github.com/halcyon-desktop/halcyon/internal/domain/input"
	"github.com/halcyon-desktop/halcyon/internal/domain/lifecycle"
	"github.com/halcyon-desktop/halcyon/internal/domain/registry"
	"github.com/halcyon-desktop/halcyon/internal/domain/session"
	"github.com/halcyon-desktop/halcyon/internal/domain/window"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/logging"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	windows  *window.Manager
	apps     *registry.Manager
	engine   *lifecycle.Manager
	bridge   *bridge.Bridge
	router   *input.Router
	sessions *session.Manager
	logger   *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(
	windows *window.Manager,
	apps *registry.Manager,
	engine *lifecycle.Manager,
	br *bridge.Bridge,
	router *input.Router,
	sessions *session.Manager,
	logger *logging.Logger,
) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		windows:  windows,
		apps:     apps,
		engine:   engine,
		bridge:   br,
		router:   router,
		sessions: sessions,
		logger:   logger,
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Halcyon Desktop Core",
		"version": "0.3.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"windows":   h.windows.Stats(),
		"registry":  h.apps.Stats(),
		"lifecycle": h.engine.Stats(),
		"input":     h.router.Stats(),
	})
}
