// Package main is the entry point for the Halcyon desktop core server.
//
// The server hosts the simulated desktop's coordinating state: window
// placement and focus, the application catalog and instance lifecycle,
// and input event interpretation. A frontend shell talks to it over
// REST and a WebSocket event stream.
//
// The server provides:
//   - REST API for windows, applications, instances, and sessions
//   - Input event injection with shortcut/gesture processing
//   - WebSocket streaming of desktop events
//   - Session persistence into a compressed blob store
//   - Prometheus metrics, rate limiting, CORS
//
// Configuration comes from environment variables (HALCYON_ prefix)
// with an optional TOML file via -config; environment wins.
//
// Usage:
//
//	./server
//	./server -config /etc/halcyon/config.toml
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
