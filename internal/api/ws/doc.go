// Package ws streams desktop events (window, registry, lifecycle,
// gesture) over WebSocket and accepts input events from connected
// event sources.
package ws
