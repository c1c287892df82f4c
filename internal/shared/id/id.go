// Package id provides centralized ID generation for the desktop core.
//
// This package offers type-safe ULID generation with:
//   - Lexicographic sortability: creation-ordered queries for free
//   - Prefixed types: type-specific prefixes for debugging (inst_*, sess_*)
//   - Type safety: separate types prevent ID misuse
//
// Window identities are caller-chosen (the registry treats them as opaque
// strings), so WindowID generation here is a convenience, not a requirement.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// InstanceID identifies a running application instance
type InstanceID string

// WindowID identifies a window surface
type WindowID string

// SessionID identifies a saved desktop snapshot
type SessionID string

// ShortcutID identifies a registered keyboard shortcut
type ShortcutID string

// GestureID identifies a registered custom gesture
type GestureID string

// HandlerID identifies a registered interaction handler
type HandlerID string

// ID prefixes, kept short so logs stay readable
const (
	InstancePrefix = "inst"
	WindowPrefix   = "win"
	SessionPrefix  = "sess"
	ShortcutPrefix = "sc"
	GesturePrefix  = "gest"
	HandlerPrefix  = "hnd"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy
// source, useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewInstanceID generates a new application instance ID
func NewInstanceID() InstanceID {
	return InstanceID(Default().GenerateWithPrefix(InstancePrefix))
}

// NewWindowID generates a new window ID
func NewWindowID() WindowID {
	return WindowID(Default().GenerateWithPrefix(WindowPrefix))
}

// NewSessionID generates a new session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewShortcutID generates a new shortcut ID
func NewShortcutID() ShortcutID {
	return ShortcutID(Default().GenerateWithPrefix(ShortcutPrefix))
}

// NewGestureID generates a new custom gesture ID
func NewGestureID() GestureID {
	return GestureID(Default().GenerateWithPrefix(GesturePrefix))
}

// NewHandlerID generates a new interaction handler ID
func NewHandlerID() HandlerID {
	return HandlerID(Default().GenerateWithPrefix(HandlerPrefix))
}

func (id InstanceID) String() string { return string(id) }
func (id WindowID) String() string   { return string(id) }
func (id SessionID) String() string  { return string(id) }
func (id ShortcutID) String() string { return string(id) }
func (id GestureID) String() string  { return string(id) }
func (id HandlerID) String() string  { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Parse parses a ULID string
func Parse(id string) (ulid.ULID, error) {
	return ulid.Parse(id)
}

// Timestamp extracts the creation time from a ULID
func Timestamp(id string) (time.Time, error) {
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
