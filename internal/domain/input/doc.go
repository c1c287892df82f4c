// Package input routes normalized device events.
//
// Each dispatched event flows through a fixed pipeline:
//
//   - Record into the recent-event window and bounded history
//   - Emit an input.received notification
//   - Key-down shortcut matching (set-equality on modifiers + key)
//   - Gesture recognition over the recent window (tap, drag, swipe,
//     long-press built in, plus registered custom recognizers)
//   - Interaction handler chain in priority order until consumed
//
// Shortcuts, gestures, and interaction handlers all scope themselves
// with the same partial-match context filter. Handler failures are
// contained per candidate and never stall the pipeline.
package input
