package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

type stubCatalog struct {
	descriptors map[string]types.Descriptor
	components  map[string]types.Component
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		descriptors: make(map[string]types.Descriptor),
		components:  make(map[string]types.Component),
	}
}

func (c *stubCatalog) add(desc types.Descriptor, comp types.Component) {
	c.descriptors[desc.ID] = desc
	c.components[desc.ID] = comp
}

func (c *stubCatalog) Get(appID string) (types.Descriptor, bool) {
	d, ok := c.descriptors[appID]
	return d, ok
}

func (c *stubCatalog) Component(appID string) (types.Component, bool) {
	comp, ok := c.components[appID]
	return comp, ok
}

func TestLaunchCreatesRunningInstance(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "notes", Name: "Notes", Version: "1.0.0"}, types.Component{})
	m := NewManager(catalog, nil)

	var events []types.LifecycleEvent
	m.Subscribe(func(ev types.LifecycleEvent) {
		events = append(events, ev)
	})

	inst, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)
	assert.Equal(t, types.StateRunning, inst.State)
	assert.Equal(t, "notes", inst.AppID)
	assert.NotEmpty(t, inst.ID)

	require.Len(t, events, 1)
	assert.Equal(t, types.LifecycleEventLaunch, events[0].Type)
	assert.Equal(t, inst.ID, events[0].Instance.ID)
}

func TestLaunchUnknownAppFails(t *testing.T) {
	m := NewManager(newStubCatalog(), nil)

	_, err := m.Launch(context.Background(), "ghost", types.LaunchContext{})
	assert.ErrorIs(t, err, ErrAppNotFound)
}

func TestLaunchRunsMountHook(t *testing.T) {
	catalog := newStubCatalog()
	var mounted string
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{
		OnMount: func(ctx context.Context, inst *types.Instance) error {
			mounted = inst.ID
			return nil
		},
	})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)
	assert.Equal(t, inst.ID, mounted)
	assert.Equal(t, types.StateRunning, inst.State)
}

func TestMountFailureCrashesInstance(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "flaky"}, types.Component{
		OnMount: func(ctx context.Context, inst *types.Instance) error {
			return errors.New("backing store unavailable")
		},
	})
	m := NewManager(catalog, nil)

	var events []types.LifecycleEvent
	m.Subscribe(func(ev types.LifecycleEvent) {
		events = append(events, ev)
	})

	inst, err := m.Launch(context.Background(), "flaky", types.LaunchContext{})
	require.NoError(t, err)
	assert.Equal(t, types.StateCrashed, inst.State)

	// Crashed instances stay queryable for diagnostics.
	got, ok := m.Get(inst.ID)
	require.True(t, ok)
	assert.Equal(t, types.StateCrashed, got.State)

	require.Len(t, events, 2)
	assert.Equal(t, types.LifecycleEventLaunch, events[0].Type)
	assert.Equal(t, types.LifecycleEventCrash, events[1].Type)
	assert.Contains(t, events[1].Error, "backing store unavailable")
}

func TestMountPanicIsContained(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "bomb"}, types.Component{
		OnMount: func(ctx context.Context, inst *types.Instance) error {
			panic("mount exploded")
		},
	})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "bomb", types.LaunchContext{})
	require.NoError(t, err)
	assert.Equal(t, types.StateCrashed, inst.State)
}

func TestSingletonLaunchReusesInstance(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{
		ID:     "settings",
		Launch: types.LaunchOptions{Singleton: true},
	}, types.Component{})
	m := NewManager(catalog, nil)

	var launches int
	m.Subscribe(func(ev types.LifecycleEvent) {
		if ev.Type == types.LifecycleEventLaunch {
			launches++
		}
	})

	first, err := m.Launch(context.Background(), "settings", types.LaunchContext{})
	require.NoError(t, err)
	second, err := m.Launch(context.Background(), "settings", types.LaunchContext{})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, launches)
	assert.False(t, second.LastActiveAt.Before(first.LastActiveAt))
}

func TestSingletonLaunchSkipsCrashedInstance(t *testing.T) {
	catalog := newStubCatalog()
	fail := true
	catalog.add(types.Descriptor{
		ID:     "settings",
		Launch: types.LaunchOptions{Singleton: true},
	}, types.Component{
		OnMount: func(ctx context.Context, inst *types.Instance) error {
			if fail {
				return errors.New("first mount fails")
			}
			return nil
		},
	})
	m := NewManager(catalog, nil)

	crashed, err := m.Launch(context.Background(), "settings", types.LaunchContext{})
	require.NoError(t, err)
	require.Equal(t, types.StateCrashed, crashed.State)

	fail = false
	fresh, err := m.Launch(context.Background(), "settings", types.LaunchContext{})
	require.NoError(t, err)
	assert.NotEqual(t, crashed.ID, fresh.ID)
	assert.Equal(t, types.StateRunning, fresh.State)
}

func TestTerminateRemovesInstance(t *testing.T) {
	catalog := newStubCatalog()
	var unmounted bool
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{
		OnUnmount: func(ctx context.Context, inst *types.Instance) error {
			unmounted = true
			return nil
		},
	})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	var events []types.LifecycleEvent
	m.Subscribe(func(ev types.LifecycleEvent) {
		events = append(events, ev)
	})

	m.Terminate(context.Background(), inst.ID, "user request")

	assert.True(t, unmounted)
	_, ok := m.Get(inst.ID)
	assert.False(t, ok)

	require.Len(t, events, 1)
	assert.Equal(t, types.LifecycleEventTerminate, events[0].Type)
	assert.Equal(t, "user request", events[0].Reason)
}

func TestTerminateCompletesDespiteHookFailure(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "stubborn"}, types.Component{
		OnUnmount: func(ctx context.Context, inst *types.Instance) error {
			panic("refusing to unmount")
		},
	})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "stubborn", types.LaunchContext{})
	require.NoError(t, err)

	m.Terminate(context.Background(), inst.ID, "forced")

	_, ok := m.Get(inst.ID)
	assert.False(t, ok)
}

func TestTerminateUnknownInstanceNoOp(t *testing.T) {
	m := NewManager(newStubCatalog(), nil)
	m.Terminate(context.Background(), "inst_unknown", "whatever")
}

func TestTerminateCrashedInstance(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "flaky"}, types.Component{
		OnMount: func(ctx context.Context, inst *types.Instance) error {
			return errors.New("boom")
		},
	})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "flaky", types.LaunchContext{})
	require.NoError(t, err)
	require.Equal(t, types.StateCrashed, inst.State)

	m.Terminate(context.Background(), inst.ID, "cleanup")
	_, ok := m.Get(inst.ID)
	assert.False(t, ok)
}

func TestSuspendResumeCycle(t *testing.T) {
	catalog := newStubCatalog()
	var suspended, resumed bool
	catalog.add(types.Descriptor{ID: "player"}, types.Component{
		OnSuspend: func(ctx context.Context, inst *types.Instance) error {
			suspended = true
			return nil
		},
		OnResume: func(ctx context.Context, inst *types.Instance) error {
			resumed = true
			return nil
		},
	})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "player", types.LaunchContext{})
	require.NoError(t, err)

	m.Suspend(context.Background(), inst.ID)
	got, _ := m.Get(inst.ID)
	assert.Equal(t, types.StateSuspended, got.State)
	assert.True(t, suspended)

	// Suspending again is a no-op.
	m.Suspend(context.Background(), inst.ID)
	got, _ = m.Get(inst.ID)
	assert.Equal(t, types.StateSuspended, got.State)

	m.Resume(context.Background(), inst.ID)
	got, _ = m.Get(inst.ID)
	assert.Equal(t, types.StateRunning, got.State)
	assert.True(t, resumed)
}

func TestSuspendHookFailureStillSuspends(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "player"}, types.Component{
		OnSuspend: func(ctx context.Context, inst *types.Instance) error {
			return errors.New("state too large")
		},
	})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "player", types.LaunchContext{})
	require.NoError(t, err)

	m.Suspend(context.Background(), inst.ID)
	got, _ := m.Get(inst.ID)
	assert.Equal(t, types.StateSuspended, got.State)
}

func TestResumeOnlyFromSuspended(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	m.Resume(context.Background(), inst.ID)
	got, _ := m.Get(inst.ID)
	assert.Equal(t, types.StateRunning, got.State)
}

func TestWindowListDeduplicates(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	m.AddWindow(inst.ID, "win_a")
	m.AddWindow(inst.ID, "win_a")
	m.AddWindow(inst.ID, "win_b")

	got, _ := m.Get(inst.ID)
	assert.Equal(t, []string{"win_a", "win_b"}, got.WindowIDs)
}

func TestLastWindowRemovalTerminates(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)
	m.AddWindow(inst.ID, "win_a")

	var events []types.LifecycleEvent
	m.Subscribe(func(ev types.LifecycleEvent) {
		events = append(events, ev)
	})

	m.RemoveWindow(inst.ID, "win_a")

	_, ok := m.Get(inst.ID)
	assert.False(t, ok)
	require.Len(t, events, 1)
	assert.Equal(t, types.LifecycleEventTerminate, events[0].Type)
	assert.Equal(t, TerminateNoWindows, events[0].Reason)
}

func TestLastWindowRemovalKeepsBackgroundApp(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{
		ID:           "daemon",
		Capabilities: types.Capabilities{SupportsBackgroundMode: true},
	}, types.Component{})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "daemon", types.LaunchContext{})
	require.NoError(t, err)
	m.AddWindow(inst.ID, "win_a")
	m.RemoveWindow(inst.ID, "win_a")

	got, ok := m.Get(inst.ID)
	require.True(t, ok)
	assert.Equal(t, types.StateRunning, got.State)
	assert.Empty(t, got.WindowIDs)
}

func TestRemoveUnknownWindowNoOp(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)
	m.AddWindow(inst.ID, "win_a")

	m.RemoveWindow(inst.ID, "win_missing")
	m.RemoveWindow("inst_missing", "win_a")

	got, ok := m.Get(inst.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"win_a"}, got.WindowIDs)
}

func TestDirectMessageDelivery(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{})
	m := NewManager(catalog, nil)

	sender, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)
	receiver, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	var mu sync.Mutex
	var got []types.Message
	done := make(chan struct{})
	ok := m.RegisterMessageHandler(receiver.ID, func(msg types.Message) {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()
		close(done)
	})
	require.True(t, ok)

	m.SendMessage(types.Message{
		From:    sender.ID,
		To:      receiver.ID,
		Type:    "ping",
		Payload: map[string]interface{}{"n": 1},
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("message never delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "ping", got[0].Type)
	assert.NotEmpty(t, got[0].ID)
	assert.NotZero(t, got[0].Timestamp)
}

func TestBroadcastSkipsSender(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{})
	m := NewManager(catalog, nil)

	var insts []*types.Instance
	for i := 0; i < 3; i++ {
		inst, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
		require.NoError(t, err)
		insts = append(insts, inst)
	}

	var mu sync.Mutex
	received := make(map[string]int)
	var wg sync.WaitGroup
	wg.Add(2)
	for _, inst := range insts {
		instID := inst.ID
		m.RegisterMessageHandler(instID, func(msg types.Message) {
			mu.Lock()
			received[instID]++
			mu.Unlock()
			wg.Done()
		})
	}

	m.SendMessage(types.Message{From: insts[0].ID, To: types.Broadcast, Type: "announce"})

	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatal("broadcast never fanned out")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, received[insts[0].ID])
	assert.Equal(t, 1, received[insts[1].ID])
	assert.Equal(t, 1, received[insts[2].ID])
}

func TestMessageToUnregisteredInstanceDropped(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	// No handler registered: must not panic or block.
	m.SendMessage(types.Message{From: "ext", To: inst.ID, Type: "ping"})
}

func TestPanickingHandlerIsolated(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{})
	m := NewManager(catalog, nil)

	bad, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)
	good, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	m.RegisterMessageHandler(bad.ID, func(msg types.Message) {
		panic("handler exploded")
	})
	delivered := make(chan struct{})
	m.RegisterMessageHandler(good.ID, func(msg types.Message) {
		close(delivered)
	})

	m.SendMessage(types.Message{From: "ext", To: types.Broadcast, Type: "ping"})

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("healthy handler starved by panicking peer")
	}
}

func TestTerminateDropsMessageHandler(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)
	m.RegisterMessageHandler(inst.ID, func(msg types.Message) {})

	m.Terminate(context.Background(), inst.ID, "done")

	stats := m.Stats()
	assert.Zero(t, stats.RegisteredHandlers)
}

func TestRenderInvokesComponent(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{
		Render: func(inst *types.Instance) map[string]interface{} {
			return map[string]interface{}{"instance": inst.ID}
		},
	})
	m := NewManager(catalog, nil)

	inst, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	out, ok := m.Render(inst.ID)
	require.True(t, ok)
	assert.Equal(t, inst.ID, out["instance"])

	_, ok = m.Render("inst_missing")
	assert.False(t, ok)
}

func TestListAndStats(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add(types.Descriptor{ID: "notes"}, types.Component{})
	m := NewManager(catalog, nil)

	a, err := m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)
	_, err = m.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)
	m.Suspend(context.Background(), a.ID)

	running := types.StateRunning
	assert.Len(t, m.List(nil), 2)
	assert.Len(t, m.List(&running), 1)
	assert.Len(t, m.FindByApp("notes"), 2)

	stats := m.Stats()
	assert.Equal(t, 2, stats.TotalInstances)
	assert.Equal(t, 1, stats.InstancesByState[string(types.StateRunning)])
	assert.Equal(t, 1, stats.InstancesByState[string(types.StateSuspended)])
}
