package input

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/halcyon-desktop/halcyon/internal/shared/id"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

// ShortcutHandler runs when a key combination matches
type ShortcutHandler func(ev *types.InputEvent)

type shortcut struct {
	id      string
	combo   string // canonical sorted key set
	filter  types.ContextFilter
	handler ShortcutHandler
	enabled bool
	seq     int
}

// canonicalCombo normalizes an unordered key set into a comparable
// form: lowercased, deduplicated, sorted, joined with "+".
func canonicalCombo(keys []string) string {
	seen := make(map[string]struct{}, len(keys))
	norm := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		norm = append(norm, k)
	}
	sort.Strings(norm)
	return strings.Join(norm, "+")
}

// eventCombo derives the active key set of a key event: every active
// modifier flag plus the primary key.
func eventCombo(ev *types.InputEvent) string {
	keys := make([]string, 0, 5)
	if ev.Modifiers.Ctrl {
		keys = append(keys, "ctrl")
	}
	if ev.Modifiers.Alt {
		keys = append(keys, "alt")
	}
	if ev.Modifiers.Shift {
		keys = append(keys, "shift")
	}
	if ev.Modifiers.Meta {
		keys = append(keys, "meta")
	}
	keys = append(keys, ev.Key)
	return canonicalCombo(keys)
}

// RegisterShortcut binds an unordered key combination to a handler and
// returns the shortcut identity. Two shortcuts may share a key
// combination; context filters and priority decide which one fires.
func (r *Router) RegisterShortcut(keys []string, filter types.ContextFilter, handler ShortcutHandler) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	sc := &shortcut{
		id:      id.NewShortcutID().String(),
		combo:   canonicalCombo(keys),
		filter:  filter,
		handler: handler,
		enabled: true,
		seq:     r.seq,
	}
	r.seq++
	r.shortcuts = append(r.shortcuts, sc)
	return sc.id
}

// UnregisterShortcut removes a shortcut, reporting whether it existed
func (r *Router) UnregisterShortcut(shortcutID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sc := range r.shortcuts {
		if sc.id == shortcutID {
			r.shortcuts = append(r.shortcuts[:i], r.shortcuts[i+1:]...)
			return true
		}
	}
	return false
}

// SetShortcutEnabled toggles a shortcut without unregistering it
func (r *Router) SetShortcutEnabled(shortcutID string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sc := range r.shortcuts {
		if sc.id == shortcutID {
			sc.enabled = enabled
			return true
		}
	}
	return false
}

// runShortcut invokes a matched handler, converting a panic into a
// logged non-consuming outcome.
func (r *Router) runShortcut(sc *shortcut, ev *types.InputEvent) (consumed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			consumed = false
			r.noteHandlerError()
			r.logger.Error("shortcut handler panicked",
				zap.String("shortcut_id", sc.id), zap.Any("panic", rec))
		}
	}()
	sc.handler(ev)
	return true
}
