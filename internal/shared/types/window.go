package types

import "time"

// Position is a window position in viewport coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a window size in viewport units
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Bounds combines position and size
type Bounds struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// Viewport is the process-wide desktop area. Last writer wins.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Constraints restrict what operations a window permits
type Constraints struct {
	Movable     bool  `json:"movable"`
	Resizable   bool  `json:"resizable"`
	Minimizable bool  `json:"minimizable"`
	Maximizable bool  `json:"maximizable"`
	Closable    bool  `json:"closable"`
	MinSize     *Size `json:"min_size,omitempty"`
	MaxSize     *Size `json:"max_size,omitempty"`
}

// DefaultConstraints returns a fully permissive constraint set
func DefaultConstraints() Constraints {
	return Constraints{
		Movable:     true,
		Resizable:   true,
		Minimizable: true,
		Maximizable: true,
		Closable:    true,
	}
}

// MetadataInstanceID is the window metadata key carrying the owning
// application instance. The bridge reads it on window creation.
const MetadataInstanceID = "instance_id"

// Window is a geometry+visibility+focus record for one on-screen surface
type Window struct {
	ID          string                 `json:"id"`
	AppID       string                 `json:"app_id"`
	Bounds      Bounds                 `json:"bounds"`
	ZIndex      int                    `json:"z_index"` // Derived from stacking position
	Focused     bool                   `json:"focused"`
	Minimized   bool                   `json:"minimized"`
	Maximized   bool                   `json:"maximized"`
	Visible     bool                   `json:"visible"`
	Metadata    map[string]interface{} `json:"metadata"`
	Constraints Constraints            `json:"constraints"`
	CreatedAt   time.Time              `json:"created_at"`
}

// InstanceID extracts the owning instance identity from window metadata,
// if one was recorded at creation.
func (w *Window) InstanceID() (string, bool) {
	if w.Metadata == nil {
		return "", false
	}
	id, ok := w.Metadata[MetadataInstanceID].(string)
	return id, ok && id != ""
}

// Window event types emitted by the window registry
const (
	WindowEventCreate   = "create"
	WindowEventDestroy  = "destroy"
	WindowEventFocus    = "focus"
	WindowEventBlur     = "blur"
	WindowEventMinimize = "minimize"
	WindowEventMaximize = "maximize"
	WindowEventRestore  = "restore"
	WindowEventMove     = "move"
	WindowEventResize   = "resize"
)

// WindowEvent describes one window registry mutation
type WindowEvent struct {
	Type      string    `json:"type"`
	Window    Window    `json:"window"`
	Timestamp time.Time `json:"timestamp"`
}

// WindowStats contains window registry statistics
type WindowStats struct {
	TotalWindows     int     `json:"total_windows"`
	VisibleWindows   int     `json:"visible_windows"`
	MinimizedWindows int     `json:"minimized_windows"`
	FocusedWindowID  *string `json:"focused_window_id,omitempty"`
}
