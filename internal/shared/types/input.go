package types

// EventType distinguishes normalized input events. The event source is
// expected to have already mapped platform-native events onto these.
type EventType string

const (
	PointerPress       EventType = "pointer.press"
	PointerRelease     EventType = "pointer.release"
	PointerMove        EventType = "pointer.move"
	PointerClick       EventType = "pointer.click"
	PointerDoubleClick EventType = "pointer.dblclick"
	PointerWheel       EventType = "pointer.wheel"
	KeyDown            EventType = "key.down"
	KeyUp              EventType = "key.up"
	KeyRepeat          EventType = "key.repeat"
	TouchStart         EventType = "touch.start"
	TouchMove          EventType = "touch.move"
	TouchEnd           EventType = "touch.end"
)

// Modifiers are the modifier key flags active on an event
type Modifiers struct {
	Ctrl  bool `json:"ctrl"`
	Alt   bool `json:"alt"`
	Shift bool `json:"shift"`
	Meta  bool `json:"meta"`
}

// EventContext scopes an event to a window, application, or interaction mode
type EventContext struct {
	WindowID string `json:"window_id,omitempty"`
	AppID    string `json:"app_id,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

// InputEvent is the canonical normalized event shape.
// Timestamps are in abstract time-units from the event source clock;
// positions are in abstract distance-units.
type InputEvent struct {
	Type      EventType              `json:"type"`
	Timestamp int64                  `json:"timestamp"`
	Position  *Position              `json:"position,omitempty"`
	Target    string                 `json:"target,omitempty"`
	Context   *EventContext          `json:"context,omitempty"`
	Modifiers Modifiers              `json:"modifiers"`
	Key       string                 `json:"key,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// ContextFilter is a partial-match record scoping shortcuts, gestures,
// and interaction handlers. A set field must equal the event's context
// field; an unset field matches anything. An event with no context at
// all matches only fully-unset filters.
type ContextFilter struct {
	WindowID string `json:"window_id,omitempty"`
	AppID    string `json:"app_id,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// Matches reports whether the filter accepts the given event context
func (f ContextFilter) Matches(ctx *EventContext) bool {
	if ctx == nil {
		return f.WindowID == "" && f.AppID == "" && f.Mode == ""
	}
	if f.WindowID != "" && f.WindowID != ctx.WindowID {
		return false
	}
	if f.AppID != "" && f.AppID != ctx.AppID {
		return false
	}
	if f.Mode != "" && f.Mode != ctx.Mode {
		return false
	}
	return true
}

// GestureType identifies a gesture family
type GestureType string

const (
	GestureTap       GestureType = "tap"
	GestureDrag      GestureType = "drag"
	GestureSwipe     GestureType = "swipe"
	GestureLongPress GestureType = "longpress"
)

// Gesture phases for multi-transition gestures (drag)
const (
	GesturePhaseStart  = "start"
	GesturePhaseUpdate = "update"
	GesturePhaseEnd    = "end"
)

// Swipe directions, bucketed into ±45° quadrants
const (
	SwipeRight = "right"
	SwipeDown  = "down"
	SwipeLeft  = "left"
	SwipeUp    = "up"
)

// GestureEvent is one recognized gesture transition
type GestureEvent struct {
	Type      GestureType   `json:"type"`
	Phase     string        `json:"phase,omitempty"`
	Position  Position      `json:"position"`
	Start     Position      `json:"start"`
	Delta     Position      `json:"delta"`
	Direction string        `json:"direction,omitempty"`
	Duration  int64         `json:"duration"`
	Timestamp int64         `json:"timestamp"`
	Context   *EventContext `json:"context,omitempty"`
}

// Router event types
const (
	RouterEventReceived = "input.received"
	RouterEventGesture  = "gesture.recognized"
)

// RouterEvent describes one input pipeline notification
type RouterEvent struct {
	Type    string        `json:"type"`
	Event   *InputEvent   `json:"event,omitempty"`
	Gesture *GestureEvent `json:"gesture,omitempty"`
}

// RouterStats contains input router counters
type RouterStats struct {
	EventsProcessed    int64          `json:"events_processed"`
	EventsConsumed     int64          `json:"events_consumed"`
	ShortcutMatches    int64          `json:"shortcut_matches"`
	GesturesRecognized map[string]int `json:"gestures_recognized"`
	HandlerErrors      int64          `json:"handler_errors"`
}
