// Package bridge ties windows to the application instances that own
// them. It listens to window registry events, maintains the
// window-to-instance ownership map, and opens application windows
// with descriptor-supplied default geometry.
package bridge
