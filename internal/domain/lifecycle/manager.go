package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/halcyon-desktop/halcyon/internal/infrastructure/logging"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/monitoring"
	"github.com/halcyon-desktop/halcyon/internal/shared/events"
	"github.com/halcyon-desktop/halcyon/internal/shared/id"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

// ErrAppNotFound is returned when launching an unregistered application
var ErrAppNotFound = errors.New("application not registered")

// TerminateNoWindows is the reason recorded when removing the last
// window of a non-background-capable instance triggers termination.
const TerminateNoWindows = "no windows remaining"

// Catalog resolves descriptors and components. Implemented by the
// application registry; declared here for dependency injection.
type Catalog interface {
	Get(appID string) (types.Descriptor, bool)
	Component(appID string) (types.Component, bool)
}

// Manager orchestrates application instance lifecycle.
//
// Instance state only ever moves through the documented operations:
// loading → running ⇄ suspended → stopping → removed, with crashed as
// an absorbing state entered on mount failure. Transitions attempted
// from any other source state are silent no-ops so concurrent callers
// may race without errors.
type Manager struct {
	mu        sync.RWMutex
	instances map[string]*types.Instance
	handlers  map[string]types.MessageHandler
	catalog   Catalog
	emitter   *events.Emitter[types.LifecycleEvent]
	logger    *logging.Logger
	metrics   *monitoring.Metrics
}

// NewManager creates a lifecycle engine resolving applications
// through the given catalog.
func NewManager(catalog Catalog, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		instances: make(map[string]*types.Instance),
		handlers:  make(map[string]types.MessageHandler),
		catalog:   catalog,
		emitter:   events.New[types.LifecycleEvent](logger.Logger),
		logger:    logger,
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Subscribe registers a lifecycle event listener
func (m *Manager) Subscribe(fn func(types.LifecycleEvent)) func() {
	return m.emitter.Subscribe(fn)
}

// Launch creates a running instance of the application.
//
// For singleton applications an existing live instance is returned
// instead (marked recently active, no launch event). A mount hook
// failure moves the fresh instance to crashed and emits a crash event;
// the instance stays queryable for diagnostics and is never cleaned up
// automatically.
func (m *Manager) Launch(ctx context.Context, appID string, lctx types.LaunchContext) (*types.Instance, error) {
	desc, ok := m.catalog.Get(appID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAppNotFound, appID)
	}

	if desc.Launch.Singleton {
		if existing := m.touchLiveInstance(appID); existing != nil {
			return existing, nil
		}
	}

	now := time.Now()
	inst := &types.Instance{
		ID:           id.NewInstanceID().String(),
		AppID:        appID,
		State:        types.StateLoading,
		WindowIDs:    []string{},
		Context:      lctx,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	m.mu.Lock()
	m.instances[inst.ID] = inst
	inst.State = types.StateRunning
	launched := cloneInstance(inst)
	m.mu.Unlock()

	m.updateStateMetrics()
	m.logger.Info("instance launched", zap.String("instance_id", inst.ID), zap.String("app_id", appID))
	m.emit(types.LifecycleEventLaunch, launched, "", nil)

	if comp, ok := m.catalog.Component(appID); ok && comp.OnMount != nil {
		if err := callHook(ctx, comp.OnMount, launched); err != nil {
			m.logger.Error("mount hook failed", zap.String("instance_id", inst.ID), zap.Error(err))
			if crashed := m.transition(inst.ID, types.StateRunning, types.StateCrashed); crashed != nil {
				if m.metrics != nil {
					m.metrics.InstancesCrashed.Inc()
				}
				m.emit(types.LifecycleEventCrash, crashed, "", err)
			}
		}
	}

	return m.mustGet(inst.ID), nil
}

// Terminate stops and removes an instance. Absent identities are a
// no-op. Unmount hook failures are logged, never propagated:
// termination always completes.
func (m *Manager) Terminate(ctx context.Context, instanceID, reason string) {
	stopping := m.transitionAny(instanceID, types.StateStopping)
	if stopping == nil {
		return
	}

	if comp, ok := m.catalog.Component(stopping.AppID); ok && comp.OnUnmount != nil {
		if err := callHook(ctx, comp.OnUnmount, stopping); err != nil {
			m.logger.Warn("unmount hook failed", zap.String("instance_id", instanceID), zap.Error(err))
		}
	}

	m.mu.Lock()
	removed, ok := m.instances[instanceID]
	if ok {
		delete(m.instances, instanceID)
		delete(m.handlers, instanceID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	m.updateStateMetrics()
	m.logger.Info("instance terminated", zap.String("instance_id", instanceID), zap.String("reason", reason))
	m.emit(types.LifecycleEventTerminate, cloneInstance(removed), reason, nil)
}

// Suspend moves a running instance to suspended. The state transition
// always completes; a failing suspend hook is only logged.
func (m *Manager) Suspend(ctx context.Context, instanceID string) {
	inst := m.transition(instanceID, types.StateRunning, types.StateSuspended)
	if inst == nil {
		return
	}

	if comp, ok := m.catalog.Component(inst.AppID); ok && comp.OnSuspend != nil {
		if err := callHook(ctx, comp.OnSuspend, inst); err != nil {
			m.logger.Warn("suspend hook failed", zap.String("instance_id", instanceID), zap.Error(err))
		}
	}

	m.updateStateMetrics()
	m.emit(types.LifecycleEventSuspend, inst, "", nil)
}

// Resume moves a suspended instance back to running and updates its
// last-active timestamp.
func (m *Manager) Resume(ctx context.Context, instanceID string) {
	inst := m.transition(instanceID, types.StateSuspended, types.StateRunning)
	if inst == nil {
		return
	}

	m.mu.Lock()
	if live, ok := m.instances[instanceID]; ok {
		live.LastActiveAt = time.Now()
		inst = cloneInstance(live)
	}
	m.mu.Unlock()

	if comp, ok := m.catalog.Component(inst.AppID); ok && comp.OnResume != nil {
		if err := callHook(ctx, comp.OnResume, inst); err != nil {
			m.logger.Warn("resume hook failed", zap.String("instance_id", instanceID), zap.Error(err))
		}
	}

	m.updateStateMetrics()
	m.emit(types.LifecycleEventResume, inst, "", nil)
}

// AddWindow appends a window identity to the instance's window list,
// deduplicated. Unknown instances are a no-op.
func (m *Manager) AddWindow(instanceID, windowID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[instanceID]
	if !ok {
		return
	}
	for _, w := range inst.WindowIDs {
		if w == windowID {
			return
		}
	}
	inst.WindowIDs = append(inst.WindowIDs, windowID)
}

// RemoveWindow removes a window identity from the instance's window
// list. Removing the last window of an instance whose descriptor does
// not declare background-mode support triggers termination with reason
// "no windows remaining".
func (m *Manager) RemoveWindow(instanceID, windowID string) {
	m.mu.Lock()
	inst, ok := m.instances[instanceID]
	if !ok {
		m.mu.Unlock()
		return
	}
	removed := false
	for i, w := range inst.WindowIDs {
		if w == windowID {
			inst.WindowIDs = append(inst.WindowIDs[:i], inst.WindowIDs[i+1:]...)
			removed = true
			break
		}
	}
	lastGone := removed && len(inst.WindowIDs) == 0 && inst.State != types.StateStopping
	appID := inst.AppID
	m.mu.Unlock()

	if !lastGone {
		return
	}
	if desc, ok := m.catalog.Get(appID); ok && desc.Capabilities.SupportsBackgroundMode {
		return
	}
	m.Terminate(context.Background(), instanceID, TerminateNoWindows)
}

// Get retrieves an instance by identity
func (m *Manager) Get(instanceID string) (*types.Instance, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inst, ok := m.instances[instanceID]
	if !ok {
		return nil, false
	}
	return cloneInstance(inst), true
}

// List returns all instances, optionally filtered by state
func (m *Manager) List(state *types.InstanceState) []*types.Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.Instance, 0, len(m.instances))
	for _, inst := range m.instances {
		if state == nil || inst.State == *state {
			out = append(out, cloneInstance(inst))
		}
	}
	return out
}

// FindByApp returns all instances of one application
func (m *Manager) FindByApp(appID string) []*types.Instance {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*types.Instance
	for _, inst := range m.instances {
		if inst.AppID == appID {
			out = append(out, cloneInstance(inst))
		}
	}
	return out
}

// Render invokes the application's render behavior for an instance
func (m *Manager) Render(instanceID string) (map[string]interface{}, bool) {
	inst, ok := m.Get(instanceID)
	if !ok {
		return nil, false
	}
	comp, ok := m.catalog.Component(inst.AppID)
	if !ok || comp.Render == nil {
		return nil, false
	}
	return comp.Render(inst), true
}

// Stats returns lifecycle engine statistics
func (m *Manager) Stats() types.LifecycleStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := types.LifecycleStats{
		TotalInstances:     len(m.instances),
		InstancesByState:   make(map[string]int),
		RegisteredHandlers: len(m.handlers),
	}
	for _, inst := range m.instances {
		stats.InstancesByState[string(inst.State)]++
	}
	return stats
}

// touchLiveInstance returns a copy of a live (not crashed, not
// stopping) instance of appID with its last-active timestamp updated,
// or nil when none exists.
func (m *Manager) touchLiveInstance(appID string) *types.Instance {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, inst := range m.instances {
		if inst.AppID != appID {
			continue
		}
		switch inst.State {
		case types.StateLoading, types.StateRunning, types.StateSuspended:
			inst.LastActiveAt = time.Now()
			return cloneInstance(inst)
		}
	}
	return nil
}

// transition moves an instance from one specific state to another,
// returning a copy, or nil when the instance is absent or in a
// different state (silent no-op).
func (m *Manager) transition(instanceID string, from, to types.InstanceState) *types.Instance {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[instanceID]
	if !ok || inst.State != from {
		return nil
	}
	inst.State = to
	return cloneInstance(inst)
}

// transitionAny moves an instance to a state from any live state
func (m *Manager) transitionAny(instanceID string, to types.InstanceState) *types.Instance {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[instanceID]
	if !ok || inst.State == to {
		return nil
	}
	inst.State = to
	return cloneInstance(inst)
}

func (m *Manager) mustGet(instanceID string) *types.Instance {
	inst, _ := m.Get(instanceID)
	return inst
}

func (m *Manager) emit(eventType string, inst *types.Instance, reason string, err error) {
	ev := types.LifecycleEvent{
		Type:      eventType,
		Instance:  *inst,
		Reason:    reason,
		Timestamp: time.Now(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	m.emitter.Emit(ev)
}

func (m *Manager) updateStateMetrics() {
	if m.metrics == nil {
		return
	}
	m.mu.RLock()
	counts := make(map[types.InstanceState]int)
	for _, inst := range m.instances {
		counts[inst.State]++
	}
	m.mu.RUnlock()

	for _, state := range []types.InstanceState{
		types.StateLoading, types.StateRunning, types.StateSuspended,
		types.StateStopping, types.StateCrashed,
	} {
		m.metrics.InstancesByState.WithLabelValues(string(state)).Set(float64(counts[state]))
	}
}

// callHook invokes a lifecycle hook, converting a panic into an error
// so a misbehaving application cannot take down the engine.
func callHook(ctx context.Context, hook func(context.Context, *types.Instance) error, inst *types.Instance) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return hook(ctx, inst)
}

func cloneInstance(inst *types.Instance) *types.Instance {
	cp := *inst
	cp.WindowIDs = append([]string(nil), inst.WindowIDs...)
	return &cp
}
