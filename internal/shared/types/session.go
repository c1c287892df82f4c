package types

import (
	"encoding/json"
	"time"
)

// Session is one saved desktop snapshot. The snapshot payload is the
// window registry's opaque serialized state; the session layer never
// inspects it.
type Session struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Snapshot    json.RawMessage `json:"snapshot"`
}

// SessionMetadata is summary information about a saved session
type SessionMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToMetadata extracts metadata from a session
func (s *Session) ToMetadata() SessionMetadata {
	return SessionMetadata{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// SessionStats contains session manager statistics
type SessionStats struct {
	TotalSessions int        `json:"total_sessions"`
	LastSaved     *time.Time `json:"last_saved,omitempty"`
	LastRestored  *time.Time `json:"last_restored,omitempty"`
}
