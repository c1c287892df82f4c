package window

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

// ErrInvalidSnapshot is returned when a serialized state blob cannot be
// applied. The live registry is left untouched.
var ErrInvalidSnapshot = errors.New("invalid window snapshot")

// snapshot is the wire form of the full registry state
type snapshot struct {
	Windows  map[string]*types.Window `json:"windows"`
	Order    []string                 `json:"order"`
	Focused  string                   `json:"focused,omitempty"`
	ZCounter int                      `json:"z_counter"`
	Viewport types.Viewport           `json:"viewport"`
}

// Serialize produces an opaque snapshot of the full registry: windows,
// stacking order, focus, and the z-index counter. It round-trips
// exactly through LoadSerialized.
func (m *Manager) Serialize() ([]byte, error) {
	m.mu.Lock()
	snap := snapshot{
		Windows:  make(map[string]*types.Window, len(m.windows)),
		Order:    append([]string(nil), m.order...),
		Focused:  m.focused,
		ZCounter: m.zCounter,
		Viewport: m.viewport,
	}
	for id, win := range m.windows {
		snap.Windows[id] = cloneWindow(win)
	}
	m.mu.Unlock()

	data, err := sonic.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize window state: %w", err)
	}
	return data, nil
}

// LoadSerialized replaces the entire registry state transactionally.
// A malformed snapshot leaves the prior state untouched and returns a
// recoverable error.
func (m *Manager) LoadSerialized(data []byte) error {
	var snap snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := validateSnapshot(&snap); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	windows := make(map[string]*types.Window, len(snap.Windows))
	for id, win := range snap.Windows {
		cp := cloneWindow(win)
		if cp.Metadata == nil {
			cp.Metadata = map[string]interface{}{}
		}
		windows[id] = cp
	}
	// Normalize derived z-indices from the order sequence
	for i, id := range snap.Order {
		windows[id].ZIndex = i + 1
	}

	m.mu.Lock()
	m.windows = windows
	m.order = append([]string(nil), snap.Order...)
	m.focused = snap.Focused
	m.zCounter = snap.ZCounter
	m.viewport = snap.Viewport
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.WindowsLive.Set(float64(len(windows)))
	}
	return nil
}

// validateSnapshot checks the structural invariants before any state is
// swapped in: the order sequence must be a duplicate-free permutation of
// the window identity set, a recorded focus must point at a visible,
// non-minimized window, and per-window focus flags must match it.
func validateSnapshot(snap *snapshot) error {
	if snap.Windows == nil {
		return errors.New("missing window map")
	}
	if len(snap.Order) != len(snap.Windows) {
		return fmt.Errorf("order length %d does not match window count %d", len(snap.Order), len(snap.Windows))
	}
	seen := make(map[string]bool, len(snap.Order))
	for _, id := range snap.Order {
		if seen[id] {
			return fmt.Errorf("duplicate id %q in order", id)
		}
		seen[id] = true
		win, ok := snap.Windows[id]
		if !ok {
			return fmt.Errorf("order references unknown window %q", id)
		}
		if win.ID != id {
			return fmt.Errorf("window key %q does not match id %q", id, win.ID)
		}
	}
	if snap.Focused != "" {
		win, ok := snap.Windows[snap.Focused]
		if !ok {
			return fmt.Errorf("focused window %q not present", snap.Focused)
		}
		if win.Minimized || !win.Visible {
			return fmt.Errorf("focused window %q is not eligible for focus", snap.Focused)
		}
	}
	// Per-window flags must agree with the focused field: exactly the
	// recorded window carries Focused, nothing else does.
	for id, win := range snap.Windows {
		if win.Focused != (id == snap.Focused) {
			return fmt.Errorf("window %q focus flag contradicts focused field %q", id, snap.Focused)
		}
	}
	return nil
}
