// Package types provides shared data structures for the desktop core.
//
// This package defines the types exchanged between the window registry,
// application registry, lifecycle engine, bridge, and input router,
// keeping the domain packages free of cross-dependencies.
//
// Core Types:
//   - Window: Geometry, visibility, focus, and stacking record
//   - Descriptor: Immutable installable application manifest
//   - Instance: One running session of a descriptor
//   - Component: Renderable behavior contract with optional hooks
//   - Session: Saved desktop snapshot
//
// Input Types:
//   - InputEvent: Canonical normalized device event
//   - ContextFilter: Partial-match scoping record
//   - GestureEvent: One recognized gesture transition
//   - Message: Inter-application message envelope
//
// Event Types:
//   - WindowEvent, LifecycleEvent, RegistryEvent, RouterEvent
//
// Example Usage:
//
//	desc := types.Descriptor{
//	    ID:      "notes",
//	    Name:    "Notes",
//	    Version: "1.0.0",
//	    Launch:  types.LaunchOptions{Singleton: true},
//	}
package types
