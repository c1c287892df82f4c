// Package http exposes the desktop core over a REST surface: window
// operations, the application catalog, instance lifecycle, messaging,
// session persistence, and input event injection.
package http
