// Package window implements the window registry and z-order engine.
//
// The registry owns window geometry, visibility, focus, and stacking
// order. The stacking order is a back-to-front sequence of window
// identities; a window's z-index is always its 1-based position in that
// sequence. At most one window holds focus, and a focused window is
// always visible and not minimized.
//
// Components:
//   - Manager: registry operations and the stacking order
//   - Serialize/LoadSerialized: opaque transactional snapshots
//
// Semantics:
//   - Focus and raise-to-top are atomic
//   - Operations on destroyed identities are no-ops, never errors
//   - Constraint violations (move/resize) are silently ignored
//   - Follow-up focus steps run after the triggering mutation commits
//
// Example Usage:
//
//	mgr := window.NewManager(logger)
//	win, err := mgr.Create("main", "notes", window.CreateOptions{})
//	mgr.Focus(win.ID)
package window
