package input

import (
	"math"

	"github.com/halcyon-desktop/halcyon/internal/infrastructure/config"
	"github.com/halcyon-desktop/halcyon/internal/shared/id"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

// GestureHandler runs inline when a registered gesture is recognized
type GestureHandler func(ev types.GestureEvent)

// Recognizer turns the recent-event window into at most one gesture
// transition per call. Recognizers keep private tracking state across
// calls; Reset clears it.
type Recognizer interface {
	Recognize(recent []types.InputEvent) *types.GestureEvent
	Reset()
}

type gestureDef struct {
	id         string
	gtype      types.GestureType
	recognizer Recognizer
	filter     types.ContextFilter
	handler    GestureHandler
	enabled    bool
}

// RegisterGesture installs a custom gesture recognizer and returns its
// identity. The handler is invoked inline on recognition, after the
// gesture notification is emitted.
func (r *Router) RegisterGesture(gtype types.GestureType, rec Recognizer, filter types.ContextFilter, handler GestureHandler) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	def := &gestureDef{
		id:         id.NewGestureID().String(),
		gtype:      gtype,
		recognizer: rec,
		filter:     filter,
		handler:    handler,
		enabled:    true,
	}
	r.gestures = append(r.gestures, def)
	return def.id
}

// UnregisterGesture removes a custom gesture, reporting whether it existed
func (r *Router) UnregisterGesture(gestureID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, def := range r.gestures {
		if def.id == gestureID {
			r.gestures = append(r.gestures[:i], r.gestures[i+1:]...)
			return true
		}
	}
	return false
}

// ResetGestures clears tracking state in every recognizer. Callers
// switching interaction context are expected to invoke this
// themselves; recognizers never reset implicitly.
func (r *Router) ResetGestures() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.builtins {
		rec.Reset()
	}
	for _, def := range r.gestures {
		def.recognizer.Reset()
	}
}

func distance(a, b types.Position) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func latest(recent []types.InputEvent) *types.InputEvent {
	if len(recent) == 0 {
		return nil
	}
	return &recent[len(recent)-1]
}

func isPress(t types.EventType) bool {
	return t == types.PointerPress || t == types.TouchStart
}

func isMove(t types.EventType) bool {
	return t == types.PointerMove || t == types.TouchMove
}

func isRelease(t types.EventType) bool {
	return t == types.PointerRelease || t == types.TouchEnd
}

// tapRecognizer completes on release within a short duration and
// small movement envelope. Attempts that overrun either bound are
// discarded without any event.
type tapRecognizer struct {
	cfg      config.InputConfig
	tracking bool
	start    types.Position
	started  int64
	maxDist  float64
	ctx      *types.EventContext
}

func newTapRecognizer(cfg config.InputConfig) *tapRecognizer {
	return &tapRecognizer{cfg: cfg}
}

func (t *tapRecognizer) Reset() {
	t.tracking = false
	t.maxDist = 0
}

func (t *tapRecognizer) Recognize(recent []types.InputEvent) *types.GestureEvent {
	ev := latest(recent)
	if ev == nil || ev.Position == nil {
		return nil
	}

	switch {
	case isPress(ev.Type):
		t.tracking = true
		t.start = *ev.Position
		t.started = ev.Timestamp
		t.maxDist = 0
		t.ctx = ev.Context

	case isMove(ev.Type) && t.tracking:
		if d := distance(t.start, *ev.Position); d > t.maxDist {
			t.maxDist = d
		}

	case isRelease(ev.Type) && t.tracking:
		t.tracking = false
		elapsed := ev.Timestamp - t.started
		if d := distance(t.start, *ev.Position); d > t.maxDist {
			t.maxDist = d
		}
		if elapsed <= t.cfg.TapMaxDuration && t.maxDist <= float64(t.cfg.TapMaxMovement) {
			return &types.GestureEvent{
				Type:      types.GestureTap,
				Position:  *ev.Position,
				Start:     t.start,
				Duration:  elapsed,
				Timestamp: ev.Timestamp,
				Context:   t.ctx,
			}
		}
	}
	return nil
}

// dragRecognizer emits a start transition the first time movement
// crosses the threshold, update transitions on later moves, and an
// end on release. Sub-threshold attempts produce nothing.
type dragRecognizer struct {
	cfg      config.InputConfig
	tracking bool
	started  bool
	start    types.Position
	pressed  int64
	ctx      *types.EventContext
}

func newDragRecognizer(cfg config.InputConfig) *dragRecognizer {
	return &dragRecognizer{cfg: cfg}
}

func (d *dragRecognizer) Reset() {
	d.tracking = false
	d.started = false
}

func (d *dragRecognizer) Recognize(recent []types.InputEvent) *types.GestureEvent {
	ev := latest(recent)
	if ev == nil || ev.Position == nil {
		return nil
	}

	transition := func(phase string) *types.GestureEvent {
		return &types.GestureEvent{
			Type:     types.GestureDrag,
			Phase:    phase,
			Position: *ev.Position,
			Start:    d.start,
			Delta: types.Position{
				X: ev.Position.X - d.start.X,
				Y: ev.Position.Y - d.start.Y,
			},
			Duration:  ev.Timestamp - d.pressed,
			Timestamp: ev.Timestamp,
			Context:   d.ctx,
		}
	}

	switch {
	case isPress(ev.Type):
		d.tracking = true
		d.started = false
		d.start = *ev.Position
		d.pressed = ev.Timestamp
		d.ctx = ev.Context

	case isMove(ev.Type) && d.tracking:
		if d.started {
			return transition(types.GesturePhaseUpdate)
		}
		if distance(d.start, *ev.Position) >= float64(d.cfg.DragThreshold) {
			d.started = true
			return transition(types.GesturePhaseStart)
		}

	case isRelease(ev.Type) && d.tracking:
		d.tracking = false
		if d.started {
			d.started = false
			return transition(types.GesturePhaseEnd)
		}
	}
	return nil
}

// swipeRecognizer completes on release when the stroke is fast, long,
// and quick enough at once. Direction buckets the start-to-end angle
// into right/down/left/up quadrants.
type swipeRecognizer struct {
	cfg      config.InputConfig
	tracking bool
	start    types.Position
	pressed  int64
	ctx      *types.EventContext
}

func newSwipeRecognizer(cfg config.InputConfig) *swipeRecognizer {
	return &swipeRecognizer{cfg: cfg}
}

func (s *swipeRecognizer) Reset() {
	s.tracking = false
}

func (s *swipeRecognizer) Recognize(recent []types.InputEvent) *types.GestureEvent {
	ev := latest(recent)
	if ev == nil || ev.Position == nil {
		return nil
	}

	switch {
	case isPress(ev.Type):
		s.tracking = true
		s.start = *ev.Position
		s.pressed = ev.Timestamp
		s.ctx = ev.Context

	case isRelease(ev.Type) && s.tracking:
		s.tracking = false
		elapsed := ev.Timestamp - s.pressed
		dist := distance(s.start, *ev.Position)
		if elapsed > s.cfg.SwipeMaxDuration || dist < float64(s.cfg.SwipeMinDistance) {
			return nil
		}
		// Zero elapsed with the distance cleared means unbounded
		// average velocity, which trivially meets the floor.
		if elapsed > 0 && dist/float64(elapsed) < s.cfg.SwipeMinVelocity {
			return nil
		}
		return &types.GestureEvent{
			Type:      types.GestureSwipe,
			Position:  *ev.Position,
			Start:     s.start,
			Delta:     types.Position{X: ev.Position.X - s.start.X, Y: ev.Position.Y - s.start.Y},
			Direction: swipeDirection(s.start, *ev.Position),
			Duration:  elapsed,
			Timestamp: ev.Timestamp,
			Context:   s.ctx,
		}
	}
	return nil
}

func swipeDirection(start, end types.Position) string {
	dx := end.X - start.X
	dy := end.Y - start.Y
	if abs(dx) >= abs(dy) {
		if dx >= 0 {
			return types.SwipeRight
		}
		return types.SwipeLeft
	}
	if dy >= 0 {
		return types.SwipeDown
	}
	return types.SwipeUp
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// longPressRecognizer arms a deadline on press. Movement past the
// envelope cancels; a release after the deadline emits the gesture.
// The deadline check runs on each observed event rather than a timer,
// which keeps recognition a pure function of the event stream.
type longPressRecognizer struct {
	cfg       config.InputConfig
	tracking  bool
	triggered bool
	start     types.Position
	pressed   int64
	ctx       *types.EventContext
}

func newLongPressRecognizer(cfg config.InputConfig) *longPressRecognizer {
	return &longPressRecognizer{cfg: cfg}
}

func (l *longPressRecognizer) Reset() {
	l.tracking = false
	l.triggered = false
}

func (l *longPressRecognizer) Recognize(recent []types.InputEvent) *types.GestureEvent {
	ev := latest(recent)
	if ev == nil || ev.Position == nil {
		return nil
	}

	switch {
	case isPress(ev.Type):
		l.tracking = true
		l.triggered = false
		l.start = *ev.Position
		l.pressed = ev.Timestamp
		l.ctx = ev.Context

	case isMove(ev.Type) && l.tracking:
		if distance(l.start, *ev.Position) > float64(l.cfg.TapMaxMovement) {
			l.tracking = false
			return nil
		}
		if ev.Timestamp-l.pressed >= l.cfg.LongPressDelay {
			l.triggered = true
		}

	case isRelease(ev.Type) && l.tracking:
		l.tracking = false
		elapsed := ev.Timestamp - l.pressed
		if distance(l.start, *ev.Position) > float64(l.cfg.TapMaxMovement) {
			return nil
		}
		if l.triggered || elapsed >= l.cfg.LongPressDelay {
			l.triggered = false
			return &types.GestureEvent{
				Type:      types.GestureLongPress,
				Position:  *ev.Position,
				Start:     l.start,
				Duration:  elapsed,
				Timestamp: ev.Timestamp,
				Context:   l.ctx,
			}
		}
	}
	return nil
}
