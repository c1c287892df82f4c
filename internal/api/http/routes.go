package http

import (
	"github.com/gin-gonic/gin"
)

// Register wires every REST route onto the engine
func (h *Handlers) Register(r *gin.Engine) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	windows := r.Group("/windows")
	{
		windows.GET("", h.ListWindows)
		windows.POST("", h.CreateWindow)
		windows.GET("/focused", h.GetFocusedWindow)
		windows.GET("/:id", h.GetWindow)
		windows.DELETE("/:id", h.CloseWindow)
		windows.POST("/:id/focus", h.FocusWindow)
		windows.POST("/:id/minimize", h.MinimizeWindow)
		windows.POST("/:id/maximize", h.MaximizeWindow)
		windows.POST("/:id/restore", h.RestoreWindow)
		windows.POST("/:id/move", h.MoveWindow)
		windows.POST("/:id/resize", h.ResizeWindow)
	}

	r.GET("/viewport", h.GetViewport)
	r.PUT("/viewport", h.SetViewport)

	apps := r.Group("/apps")
	{
		apps.GET("", h.ListApps)
		apps.POST("", h.RegisterApp)
		apps.GET("/search", h.SearchApps)
		apps.GET("/:id", h.GetApp)
		apps.DELETE("/:id", h.UnregisterApp)
	}

	instances := r.Group("/instances")
	{
		instances.GET("", h.ListInstances)
		instances.POST("", h.LaunchApp)
		instances.GET("/:id", h.GetInstance)
		instances.DELETE("/:id", h.TerminateInstance)
		instances.POST("/:id/suspend", h.SuspendInstance)
		instances.POST("/:id/resume", h.ResumeInstance)
		instances.POST("/:id/windows", h.CreateAppWindow)
		instances.GET("/:id/render", h.RenderInstance)
	}

	r.POST("/messages", h.SendMessage)

	sessions := r.Group("/sessions")
	{
		sessions.GET("", h.ListSessions)
		sessions.POST("", h.SaveSession)
		sessions.POST("/:id/restore", h.RestoreSession)
		sessions.DELETE("/:id", h.DeleteSession)
	}

	input := r.Group("/input")
	{
		input.POST("/events", h.DispatchEvent)
		input.GET("/recent", h.RecentEvents)
		input.GET("/history", h.EventHistory)
		input.GET("/stats", h.InputStats)
	}
}
