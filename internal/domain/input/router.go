package input

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/halcyon-desktop/halcyon/internal/infrastructure/config"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/logging"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/monitoring"
	"github.com/halcyon-desktop/halcyon/internal/shared/events"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

// Router is the input event pipeline. Dispatch processes one
// normalized event at a time through a fixed stage order: record,
// notify, shortcut match, gesture recognition, interaction chain.
//
// Callers are expected to feed events from a single goroutine; the
// internal mutex only protects registration churn against an in-flight
// dispatch, it does not order concurrent dispatches.
type Router struct {
	mu        sync.Mutex
	recent    []types.InputEvent
	history   []types.InputEvent
	shortcuts []*shortcut
	gestures  []*gestureDef
	handlers  []*interaction
	builtins  []Recognizer
	seq       int

	cfg     config.InputConfig
	emitter *events.Emitter[types.RouterEvent]
	logger  *logging.Logger
	metrics *monitoring.Metrics

	processed     atomic.Int64
	consumed      atomic.Int64
	matches       atomic.Int64
	handlerErrors atomic.Int64

	gmu        sync.Mutex
	recognized map[string]int
}

// NewRouter creates an input router with the built-in gesture
// recognizers parameterized by cfg.
func NewRouter(cfg config.InputConfig, logger *logging.Logger) *Router {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Router{
		cfg:     cfg,
		emitter: events.New[types.RouterEvent](logger.Logger),
		logger:  logger,
		builtins: []Recognizer{
			newTapRecognizer(cfg),
			newDragRecognizer(cfg),
			newSwipeRecognizer(cfg),
			newLongPressRecognizer(cfg),
		},
		recognized: make(map[string]int),
	}
}

// WithMetrics adds metrics tracking to the router
func (r *Router) WithMetrics(metrics *monitoring.Metrics) *Router {
	r.metrics = metrics
	return r
}

// Subscribe registers a pipeline notification listener
func (r *Router) Subscribe(fn func(types.RouterEvent)) func() {
	return r.emitter.Subscribe(fn)
}

// Dispatch runs one normalized event through the pipeline and reports
// whether a shortcut or interaction handler consumed it. The caller
// uses the result to decide whether to suppress platform default
// handling.
func (r *Router) Dispatch(ev types.InputEvent) bool {
	r.mu.Lock()
	r.record(ev)
	recent := append([]types.InputEvent(nil), r.recent...)
	shortcuts := append([]*shortcut(nil), r.shortcuts...)
	gestures := append([]*gestureDef(nil), r.gestures...)
	handlers := append([]*interaction(nil), r.handlers...)
	r.mu.Unlock()

	r.processed.Add(1)
	if r.metrics != nil {
		r.metrics.InputEvents.WithLabelValues(string(ev.Type)).Inc()
	}
	r.emitter.Emit(types.RouterEvent{Type: types.RouterEventReceived, Event: &ev})

	consumed := false
	if ev.Type == types.KeyDown {
		if best := bestShortcut(shortcuts, &ev); best != nil {
			if r.runShortcut(best, &ev) {
				consumed = true
				r.matches.Add(1)
				if r.metrics != nil {
					r.metrics.ShortcutMatches.Inc()
				}
			}
		}
	}

	// Gesture recognition always runs, independent of shortcut outcome.
	r.recognize(recent, gestures)

	if !consumed {
		onError := func(handlerID string, rec any) {
			r.noteHandlerError()
			r.logger.Error("interaction predicate panicked",
				zap.String("handler_id", handlerID), zap.Any("panic", rec))
		}
		for _, h := range candidateHandlers(handlers, &ev, onError) {
			if r.runInteraction(h, &ev) {
				consumed = true
				break
			}
		}
	}

	if consumed {
		r.consumed.Add(1)
	}
	return consumed
}

// record appends the event to the recent window and the bounded
// history, evicting oldest entries. Caller holds r.mu.
func (r *Router) record(ev types.InputEvent) {
	r.recent = append(r.recent, ev)
	if limit := r.cfg.RecentEvents; limit > 0 && len(r.recent) > limit {
		r.recent = r.recent[len(r.recent)-limit:]
	}
	r.history = append(r.history, ev)
	if limit := r.cfg.HistoryLimit; limit > 0 && len(r.history) > limit {
		r.history = r.history[len(r.history)-limit:]
	}
}

func bestShortcut(shortcuts []*shortcut, ev *types.InputEvent) *shortcut {
	combo := eventCombo(ev)

	var best *shortcut
	for _, sc := range shortcuts {
		if !sc.enabled || sc.combo != combo || !sc.filter.Matches(ev.Context) {
			continue
		}
		if best == nil ||
			sc.filter.Priority > best.filter.Priority ||
			(sc.filter.Priority == best.filter.Priority && sc.seq < best.seq) {
			best = sc
		}
	}
	return best
}

// recognize runs every recognizer over the recent window. Built-ins
// always run; custom definitions run when enabled and their filter
// matches the triggering event's context.
func (r *Router) recognize(recent []types.InputEvent, gestures []*gestureDef) {
	ev := latest(recent)
	if ev == nil {
		return
	}

	for _, rec := range r.builtins {
		if g := rec.Recognize(recent); g != nil {
			r.emitGesture(*g, nil)
		}
	}
	for _, def := range gestures {
		if !def.enabled || !def.filter.Matches(ev.Context) {
			continue
		}
		if g := def.recognizer.Recognize(recent); g != nil {
			if g.Type == "" {
				g.Type = def.gtype
			}
			r.emitGesture(*g, def)
		}
	}
}

func (r *Router) emitGesture(g types.GestureEvent, def *gestureDef) {
	r.gmu.Lock()
	r.recognized[string(g.Type)]++
	r.gmu.Unlock()
	if r.metrics != nil {
		r.metrics.GesturesRecognized.WithLabelValues(string(g.Type)).Inc()
	}

	r.emitter.Emit(types.RouterEvent{Type: types.RouterEventGesture, Gesture: &g})

	if def != nil && def.handler != nil {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.noteHandlerError()
					r.logger.Error("gesture handler panicked",
						zap.String("gesture_id", def.id), zap.Any("panic", rec))
				}
			}()
			def.handler(g)
		}()
	}
}

// Recent returns a copy of the recent-event window
func (r *Router) Recent() []types.InputEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.InputEvent(nil), r.recent...)
}

// History returns a copy of the bounded event history
func (r *Router) History() []types.InputEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.InputEvent(nil), r.history...)
}

// Stats returns router counters
func (r *Router) Stats() types.RouterStats {
	r.gmu.Lock()
	byType := make(map[string]int, len(r.recognized))
	for k, v := range r.recognized {
		byType[k] = v
	}
	r.gmu.Unlock()

	return types.RouterStats{
		EventsProcessed:    r.processed.Load(),
		EventsConsumed:     r.consumed.Load(),
		ShortcutMatches:    r.matches.Load(),
		GesturesRecognized: byType,
		HandlerErrors:      r.handlerErrors.Load(),
	}
}

func (r *Router) noteHandlerError() {
	r.handlerErrors.Add(1)
	if r.metrics != nil {
		r.metrics.HandlerErrors.Inc()
	}
}
