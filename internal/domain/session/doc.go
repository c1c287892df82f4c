// Package session persists named desktop snapshots in a blob store
// and restores them transactionally into the window registry.
package session
