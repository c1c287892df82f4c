package input

import (
	"sort"

	"go.uber.org/zap"

	"github.com/halcyon-desktop/halcyon/internal/shared/id"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

// Predicate decides whether an interaction handler can process an event
type Predicate func(ev *types.InputEvent) bool

// InteractionHandler processes an event and reports whether it
// consumed it
type InteractionHandler func(ev *types.InputEvent) bool

type interaction struct {
	id        string
	priority  int
	filter    types.ContextFilter
	predicate Predicate
	handler   InteractionHandler
	enabled   bool
	seq       int
}

// RegisterHandler installs an interaction handler. Higher priority
// handlers are tried first; registration order breaks ties.
func (r *Router) RegisterHandler(priority int, filter types.ContextFilter, predicate Predicate, handler InteractionHandler) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := &interaction{
		id:        id.NewHandlerID().String(),
		priority:  priority,
		filter:    filter,
		predicate: predicate,
		handler:   handler,
		enabled:   true,
		seq:       r.seq,
	}
	r.seq++
	r.handlers = append(r.handlers, h)
	return h.id
}

// UnregisterHandler removes an interaction handler, reporting whether
// it existed
func (r *Router) UnregisterHandler(handlerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, h := range r.handlers {
		if h.id == handlerID {
			r.handlers = append(r.handlers[:i], r.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// SetHandlerEnabled toggles an interaction handler in place
func (r *Router) SetHandlerEnabled(handlerID string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range r.handlers {
		if h.id == handlerID {
			h.enabled = enabled
			return true
		}
	}
	return false
}

// candidateHandlers filters and orders the chain for one event:
// enabled, context filter matches, predicate accepts; sorted by
// priority descending with registration order as tiebreak.
func candidateHandlers(handlers []*interaction, ev *types.InputEvent, onError func(string, any)) []*interaction {
	out := make([]*interaction, 0, len(handlers))
	for _, h := range handlers {
		if !h.enabled || !h.filter.Matches(ev.Context) {
			continue
		}
		if !safePredicate(h, ev, onError) {
			continue
		}
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority > out[j].priority
		}
		return out[i].seq < out[j].seq
	})
	return out
}

func safePredicate(h *interaction, ev *types.InputEvent, onError func(string, any)) (accepts bool) {
	defer func() {
		if rec := recover(); rec != nil {
			accepts = false
			onError(h.id, rec)
		}
	}()
	return h.predicate(ev)
}

// runInteraction invokes one handler; a panic counts as not consuming
// so the chain continues.
func (r *Router) runInteraction(h *interaction, ev *types.InputEvent) (consumed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			consumed = false
			r.noteHandlerError()
			r.logger.Error("interaction handler panicked",
				zap.String("handler_id", h.id), zap.Any("panic", rec))
		}
	}()
	return h.handler(ev)
}
