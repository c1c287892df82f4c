package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/halcyon-desktop/halcyon/internal/infrastructure/logging"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/monitoring"
	"github.com/halcyon-desktop/halcyon/internal/shared/id"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
	"github.com/halcyon-desktop/halcyon/internal/storage"
)

// ErrSessionNotFound is returned when a session identity has no saved blob
var ErrSessionNotFound = errors.New("session not found")

const keyPrefix = "sessions/"

// Desktop is the snapshot surface the session layer persists.
// Implemented by the window registry.
type Desktop interface {
	Serialize() ([]byte, error)
	LoadSerialized(data []byte) error
}

// Manager saves and restores desktop snapshots through a blob store.
//
// Snapshots are opaque: serialization and validation belong to the
// desktop, the session layer only wraps them with naming and
// timestamps. A failed restore leaves the live desktop untouched.
type Manager struct {
	mu      sync.Mutex
	desktop Desktop
	store   storage.Store
	logger  *logging.Logger
	metrics *monitoring.Metrics

	lastSaved    *time.Time
	lastRestored *time.Time
}

// NewManager creates a session manager persisting into store
func NewManager(desktop Desktop, store storage.Store, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		desktop: desktop,
		store:   store,
		logger:  logger,
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Save captures the current desktop state under a new session identity
func (m *Manager) Save(ctx context.Context, name, description string) (*types.Session, error) {
	snapshot, err := m.desktop.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize desktop: %w", err)
	}

	now := time.Now()
	sess := &types.Session{
		ID:          id.NewSessionID().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Snapshot:    snapshot,
	}

	if err := m.put(ctx, sess); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.lastSaved = &now
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.SessionsSaved.Inc()
	}
	m.logger.Info("session saved", zap.String("session_id", sess.ID), zap.String("name", name))
	return sess, nil
}

// Update overwrites an existing session's snapshot with the current
// desktop state, preserving its identity and creation time.
func (m *Manager) Update(ctx context.Context, sessionID string) (*types.Session, error) {
	sess, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	snapshot, err := m.desktop.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize desktop: %w", err)
	}
	sess.Snapshot = snapshot
	sess.UpdatedAt = time.Now()

	if err := m.put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Restore loads a saved session's snapshot into the desktop. A
// corrupt snapshot is reported as an error and the live desktop state
// is preserved.
func (m *Manager) Restore(ctx context.Context, sessionID string) (*types.Session, error) {
	sess, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := m.desktop.LoadSerialized(sess.Snapshot); err != nil {
		return nil, fmt.Errorf("restore session %s: %w", sessionID, err)
	}

	now := time.Now()
	m.mu.Lock()
	m.lastRestored = &now
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.SessionsRestored.Inc()
	}
	m.logger.Info("session restored", zap.String("session_id", sessionID))
	return sess, nil
}

// Get loads a saved session including its snapshot payload
func (m *Manager) Get(ctx context.Context, sessionID string) (*types.Session, error) {
	data, err := m.store.Get(ctx, keyPrefix+sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var sess types.Session
	if err := sonic.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &sess, nil
}

// List returns metadata for every saved session, newest first
func (m *Manager) List(ctx context.Context) ([]types.SessionMetadata, error) {
	keys, err := m.store.List(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]types.SessionMetadata, 0, len(keys))
	for _, key := range keys {
		data, err := m.store.Get(ctx, key)
		if err != nil {
			m.logger.Warn("skipping unreadable session", zap.String("key", key), zap.Error(err))
			continue
		}
		var sess types.Session
		if err := sonic.Unmarshal(data, &sess); err != nil {
			m.logger.Warn("skipping corrupt session", zap.String("key", key), zap.Error(err))
			continue
		}
		out = append(out, sess.ToMetadata())
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Delete removes a saved session, reporting whether it existed
func (m *Manager) Delete(ctx context.Context, sessionID string) (bool, error) {
	key := keyPrefix + sessionID
	if _, err := m.store.Get(ctx, key); errors.Is(err, storage.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	if err := m.store.Delete(ctx, key); err != nil {
		return false, fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return true, nil
}

// Stats returns session manager statistics
func (m *Manager) Stats(ctx context.Context) (types.SessionStats, error) {
	keys, err := m.store.List(ctx, keyPrefix)
	if err != nil {
		return types.SessionStats{}, fmt.Errorf("list sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return types.SessionStats{
		TotalSessions: len(keys),
		LastSaved:     m.lastSaved,
		LastRestored:  m.lastRestored,
	}, nil
}

func (m *Manager) put(ctx context.Context, sess *types.Session) error {
	data, err := sonic.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}
	if err := m.store.Put(ctx, keyPrefix+sess.ID, data); err != nil {
		return fmt.Errorf("store session %s: %w", sess.ID, err)
	}
	return nil
}
