package registry

import (
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/halcyon-desktop/halcyon/internal/infrastructure/logging"
	"github.com/halcyon-desktop/halcyon/internal/shared/events"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

// ErrAppRegistered is returned when registering a duplicate descriptor identity
var ErrAppRegistered = errors.New("application id already registered")

// entry pairs an immutable descriptor with its behavior component
type entry struct {
	descriptor types.Descriptor
	component  types.Component
}

// Manager owns the catalog of installable application descriptors.
//
// Descriptors are immutable once registered. The component is the
// application's renderable behavior contract; the lifecycle engine
// resolves it through Component at launch time.
type Manager struct {
	mu      sync.RWMutex
	entries map[string]*entry
	emitter *events.Emitter[types.RegistryEvent]
	logger  *logging.Logger
}

// NewManager creates an empty application registry
func NewManager(logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		entries: make(map[string]*entry),
		emitter: events.New[types.RegistryEvent](logger.Logger),
		logger:  logger,
	}
}

// Subscribe registers a catalog event listener
func (m *Manager) Subscribe(fn func(types.RegistryEvent)) func() {
	return m.emitter.Subscribe(fn)
}

// Register adds a descriptor and its component to the catalog.
// Duplicate identities fail fast with no state mutation. Registration
// does not validate the manifest; callers are expected to run
// ValidateManifest first.
func (m *Manager) Register(desc types.Descriptor, comp types.Component) error {
	m.mu.Lock()
	if _, exists := m.entries[desc.ID]; exists {
		m.mu.Unlock()
		return ErrAppRegistered
	}
	desc.RegisteredAt = time.Now()
	m.entries[desc.ID] = &entry{descriptor: desc, component: comp}
	m.mu.Unlock()

	m.logger.Info("application registered", zap.String("app_id", desc.ID), zap.String("version", desc.Version))
	m.emitter.Emit(types.RegistryEvent{Type: types.RegistryEventRegister, Descriptor: desc, Timestamp: time.Now()})
	return nil
}

// Unregister removes a descriptor. Returns false (without emitting)
// when the identity is absent.
func (m *Manager) Unregister(id string) bool {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.entries, id)
	m.mu.Unlock()

	m.logger.Info("application unregistered", zap.String("app_id", id))
	m.emitter.Emit(types.RegistryEvent{Type: types.RegistryEventUnregister, Descriptor: e.descriptor, Timestamp: time.Now()})
	return true
}

// Get retrieves a descriptor by exact identity
func (m *Manager) Get(id string) (types.Descriptor, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return types.Descriptor{}, false
	}
	return e.descriptor, true
}

// Component retrieves the behavior component registered for an application
func (m *Manager) Component(id string) (types.Component, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok {
		return types.Component{}, false
	}
	return e.component, true
}

// List returns all descriptors, optionally filtered by category
func (m *Manager) List(category *string) []types.Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.Descriptor
	for _, e := range m.entries {
		if category == nil || e.descriptor.Category == *category {
			out = append(out, e.descriptor)
		}
	}
	return out
}

// Search performs a case-insensitive substring match over name,
// description, and keywords. Any field matching qualifies.
func (m *Manager) Search(query string) []types.Descriptor {
	q := strings.ToLower(query)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.Descriptor
	for _, e := range m.entries {
		if matches(&e.descriptor, q) {
			out = append(out, e.descriptor)
		}
	}
	return out
}

func matches(desc *types.Descriptor, q string) bool {
	if strings.Contains(strings.ToLower(desc.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(desc.Description), q) {
		return true
	}
	for _, kw := range desc.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}

// ValidateManifest returns the list of missing-required-field
// violations without failing. An empty slice means the manifest is
// structurally usable.
func ValidateManifest(desc *types.Descriptor) []string {
	var violations []string
	if desc.ID == "" {
		violations = append(violations, "missing required field: id")
	}
	if desc.Name == "" {
		violations = append(violations, "missing required field: name")
	}
	if desc.Version == "" {
		violations = append(violations, "missing required field: version")
	}
	return violations
}

// Stats returns catalog statistics
func (m *Manager) Stats() types.RegistryStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := types.RegistryStats{
		TotalApps:  len(m.entries),
		Categories: make(map[string]int),
	}
	for _, e := range m.entries {
		stats.Categories[e.descriptor.Category]++
	}
	return stats
}
