package window

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/halcyon-desktop/halcyon/internal/infrastructure/logging"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/monitoring"
	"github.com/halcyon-desktop/halcyon/internal/shared/events"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

// ErrWindowExists is returned when creating a window with a taken identity
var ErrWindowExists = errors.New("window id already exists")

// DefaultBounds is the fallback geometry for windows created without bounds
var DefaultBounds = types.Bounds{
	Position: types.Position{X: 100, Y: 100},
	Size:     types.Size{Width: 640, Height: 480},
}

// CreateOptions carries optional window creation parameters
type CreateOptions struct {
	Bounds      *types.Bounds
	Constraints *types.Constraints
	Metadata    map[string]interface{}
}

// Manager owns window geometry, visibility, focus, and stacking order.
//
// All mutating operations emit events after the registry lock is
// released, so listeners may safely call back into the manager.
// Follow-up focus steps (auto-focus after create, refocus after
// destroy) run as a second phase once the triggering mutation has
// fully committed and its event has fired.
type Manager struct {
	mu       sync.Mutex
	windows  map[string]*types.Window
	order    []string // back-to-front; position+1 is the z-index
	focused  string   // "" when no window holds focus
	zCounter int
	viewport types.Viewport

	emitter *events.Emitter[types.WindowEvent]
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewManager creates an empty window registry
func NewManager(logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		windows: make(map[string]*types.Window),
		emitter: events.New[types.WindowEvent](logger.Logger),
		logger:  logger,
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Subscribe registers a window event listener
func (m *Manager) Subscribe(fn func(types.WindowEvent)) func() {
	return m.emitter.Subscribe(fn)
}

// Create registers a new window, assigns it the top z-index, emits the
// create event, and then auto-focuses it. The focus step runs after
// creation has fully committed so listeners observe the create before
// any focus side effects.
func (m *Manager) Create(id, appID string, opts CreateOptions) (*types.Window, error) {
	m.mu.Lock()
	if _, exists := m.windows[id]; exists {
		m.mu.Unlock()
		return nil, ErrWindowExists
	}

	bounds := DefaultBounds
	if opts.Bounds != nil {
		bounds = *opts.Bounds
	}
	constraints := types.DefaultConstraints()
	if opts.Constraints != nil {
		constraints = *opts.Constraints
	}
	metadata := opts.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	m.zCounter++
	win := &types.Window{
		ID:          id,
		AppID:       appID,
		Bounds:      bounds,
		ZIndex:      len(m.order) + 1,
		Visible:     true,
		Metadata:    metadata,
		Constraints: constraints,
		CreatedAt:   time.Now(),
	}
	m.windows[id] = win
	m.order = append(m.order, id)
	created := cloneWindow(win)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.WindowsCreated.Inc()
		m.metrics.WindowsLive.Inc()
		m.metrics.WindowOps.WithLabelValues("create").Inc()
	}
	m.logger.Debug("window created", zap.String("window_id", id), zap.String("app_id", appID))

	m.emit(types.WindowEventCreate, created)
	m.Focus(id)

	return created, nil
}

// Destroy removes a window. Unknown identities are a no-op. If the
// destroyed window held focus, focus transfers to the new topmost
// eligible window once the destroy event has fired.
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return
	}

	wasFocused := m.focused == id
	delete(m.windows, id)
	m.removeFromOrderLocked(id)
	next := ""
	if wasFocused {
		m.focused = ""
		next = m.topmostEligibleLocked()
	}
	destroyed := cloneWindow(win)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.WindowsLive.Dec()
		m.metrics.WindowOps.WithLabelValues("destroy").Inc()
	}
	m.logger.Debug("window destroyed", zap.String("window_id", id))

	m.emit(types.WindowEventDestroy, destroyed)
	if next != "" {
		m.Focus(next)
	}
}

// Focus gives a window focus and raises it to the top of the stacking
// order atomically. Unknown, minimized, or hidden windows are a no-op.
func (m *Manager) Focus(id string) {
	m.mu.Lock()
	evs := m.focusLocked(id)
	m.mu.Unlock()

	if len(evs) > 0 && m.metrics != nil {
		m.metrics.FocusTransfers.Inc()
	}
	m.emitAll(evs)
}

// Minimize hides a window. If it held focus, focus transfers
// immediately to the next eligible topmost window.
func (m *Manager) Minimize(id string) {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || win.Minimized || !win.Constraints.Minimizable {
		m.mu.Unlock()
		return
	}

	wasFocused := win.Focused
	win.Focused = false
	win.Minimized = true
	win.Visible = false
	if wasFocused {
		m.focused = ""
	}
	evs := []types.WindowEvent{newEvent(types.WindowEventMinimize, win)}
	if wasFocused {
		if next := m.topmostEligibleLocked(); next != "" {
			evs = append(evs, m.focusLocked(next)...)
		}
	}
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.WindowOps.WithLabelValues("minimize").Inc()
	}
	m.emitAll(evs)
}

// Maximize sets the maximized flag. Geometry override is a rendering
// concern and is not stored as a distinct bounds value.
func (m *Manager) Maximize(id string) {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || win.Maximized || !win.Constraints.Maximizable {
		m.mu.Unlock()
		return
	}
	win.Maximized = true
	ev := newEvent(types.WindowEventMaximize, win)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.WindowOps.WithLabelValues("maximize").Inc()
	}
	m.emitter.Emit(ev)
}

// Restore undoes minimize or maximize. Restoring a minimized window
// re-marks it visible and focuses it.
func (m *Manager) Restore(id string) {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return
	}

	var evs []types.WindowEvent
	switch {
	case win.Minimized:
		win.Minimized = false
		win.Visible = true
		evs = append(evs, newEvent(types.WindowEventRestore, win))
		evs = append(evs, m.focusLocked(id)...)
	case win.Maximized:
		win.Maximized = false
		evs = append(evs, newEvent(types.WindowEventRestore, win))
	}
	m.mu.Unlock()

	if len(evs) > 0 && m.metrics != nil {
		m.metrics.WindowOps.WithLabelValues("restore").Inc()
	}
	m.emitAll(evs)
}

// Move repositions a window. Rejected silently when the window's
// constraints forbid moving.
func (m *Manager) Move(id string, pos types.Position) {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || !win.Constraints.Movable {
		m.mu.Unlock()
		return
	}
	win.Bounds.Position = pos
	ev := newEvent(types.WindowEventMove, win)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.WindowOps.WithLabelValues("move").Inc()
	}
	m.emitter.Emit(ev)
}

// Resize changes a window's size, clamped to its declared min/max
// bounds. Rejected silently when the constraints forbid resizing.
func (m *Manager) Resize(id string, size types.Size) {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || !win.Constraints.Resizable {
		m.mu.Unlock()
		return
	}
	win.Bounds.Size = clampSize(size, win.Constraints.MinSize, win.Constraints.MaxSize)
	ev := newEvent(types.WindowEventResize, win)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.WindowOps.WithLabelValues("resize").Inc()
	}
	m.emitter.Emit(ev)
}

// Get retrieves a window by identity
func (m *Manager) Get(id string) (*types.Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	win, ok := m.windows[id]
	if !ok {
		return nil, false
	}
	return cloneWindow(win), true
}

// GetAll returns all windows in stacking order, back to front
func (m *Manager) GetAll() []*types.Window {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.Window, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, cloneWindow(m.windows[id]))
	}
	return out
}

// GetFocused returns the focused window, if any
func (m *Manager) GetFocused() (*types.Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.focused == "" {
		return nil, false
	}
	return cloneWindow(m.windows[m.focused]), true
}

// Viewport returns the shared desktop viewport
func (m *Manager) Viewport() types.Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// SetViewport updates the shared desktop viewport. Last writer wins.
func (m *Manager) SetViewport(v types.Viewport) {
	m.mu.Lock()
	m.viewport = v
	m.mu.Unlock()
}

// Stats returns registry statistics
func (m *Manager) Stats() types.WindowStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := types.WindowStats{TotalWindows: len(m.windows)}
	for _, win := range m.windows {
		if win.Minimized {
			stats.MinimizedWindows++
		} else if win.Visible {
			stats.VisibleWindows++
		}
	}
	if m.focused != "" {
		focused := m.focused
		stats.FocusedWindowID = &focused
	}
	return stats
}

// focusLocked performs the raise+focus mutation and returns the blur
// and focus events to emit once the lock is released. Caller holds mu.
func (m *Manager) focusLocked(id string) []types.WindowEvent {
	win, ok := m.windows[id]
	if !ok || win.Minimized || !win.Visible {
		return nil
	}
	if m.focused == id && len(m.order) > 0 && m.order[len(m.order)-1] == id {
		return nil
	}

	var evs []types.WindowEvent
	if m.focused != "" && m.focused != id {
		if prev, ok := m.windows[m.focused]; ok {
			prev.Focused = false
			evs = append(evs, newEvent(types.WindowEventBlur, prev))
		}
	}

	m.removeFromOrderLocked(id)
	m.order = append(m.order, id)
	m.reindexLocked()

	win.Focused = true
	m.focused = id
	evs = append(evs, newEvent(types.WindowEventFocus, win))
	return evs
}

// topmostEligibleLocked finds the focus candidate: the highest visible,
// non-minimized window in the stacking order. Caller holds mu.
func (m *Manager) topmostEligibleLocked() string {
	for i := len(m.order) - 1; i >= 0; i-- {
		win := m.windows[m.order[i]]
		if win.Visible && !win.Minimized {
			return win.ID
		}
	}
	return ""
}

func (m *Manager) removeFromOrderLocked(id string) {
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.reindexLocked()
}

// reindexLocked recomputes every z-index as stack position + 1
func (m *Manager) reindexLocked() {
	for i, id := range m.order {
		m.windows[id].ZIndex = i + 1
	}
}

func (m *Manager) emit(eventType string, win *types.Window) {
	m.emitter.Emit(types.WindowEvent{Type: eventType, Window: *win, Timestamp: time.Now()})
}

func (m *Manager) emitAll(evs []types.WindowEvent) {
	for _, ev := range evs {
		m.emitter.Emit(ev)
	}
}

func newEvent(eventType string, win *types.Window) types.WindowEvent {
	return types.WindowEvent{Type: eventType, Window: *cloneWindow(win), Timestamp: time.Now()}
}

// cloneWindow copies a window so callers cannot mutate registry state
func cloneWindow(w *types.Window) *types.Window {
	cp := *w
	cp.Metadata = make(map[string]interface{}, len(w.Metadata))
	for k, v := range w.Metadata {
		cp.Metadata[k] = v
	}
	if w.Constraints.MinSize != nil {
		min := *w.Constraints.MinSize
		cp.Constraints.MinSize = &min
	}
	if w.Constraints.MaxSize != nil {
		max := *w.Constraints.MaxSize
		cp.Constraints.MaxSize = &max
	}
	return &cp
}

func clampSize(size types.Size, minSize, maxSize *types.Size) types.Size {
	if minSize != nil {
		size.Width = max(size.Width, minSize.Width)
		size.Height = max(size.Height, minSize.Height)
	}
	if maxSize != nil {
		size.Width = min(size.Width, maxSize.Width)
		size.Height = min(size.Height, maxSize.Height)
	}
	return size
}
