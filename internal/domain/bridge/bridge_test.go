package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-desktop/halcyon/internal/domain/lifecycle"
	"github.com/halcyon-desktop/halcyon/internal/domain/registry"
	"github.com/halcyon-desktop/halcyon/internal/domain/window"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

type fixture struct {
	apps    *registry.Manager
	engine  *lifecycle.Manager
	windows *window.Manager
	bridge  *Bridge
}

func newFixture(t *testing.T, desc types.Descriptor) *fixture {
	t.Helper()

	apps := registry.NewManager(nil)
	require.NoError(t, apps.Register(desc, types.Component{}))
	engine := lifecycle.NewManager(apps, nil)
	windows := window.NewManager(nil)
	return &fixture{
		apps:    apps,
		engine:  engine,
		windows: windows,
		bridge:  New(windows, engine, apps, nil),
	}
}

func TestCreateWindowForAppAssociates(t *testing.T) {
	f := newFixture(t, types.Descriptor{ID: "notes", Name: "Notes", Version: "1.0.0"})

	inst, err := f.engine.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	win, err := f.bridge.CreateWindowForApp(inst.ID, window.CreateOptions{})
	require.NoError(t, err)

	owner, ok := win.InstanceID()
	require.True(t, ok)
	assert.Equal(t, inst.ID, owner)
	assert.Equal(t, "notes", win.AppID)

	got, ok := f.engine.Get(inst.ID)
	require.True(t, ok)
	assert.Equal(t, []string{win.ID}, got.WindowIDs)

	mapped, ok := f.bridge.Owner(win.ID)
	require.True(t, ok)
	assert.Equal(t, inst.ID, mapped)
}

func TestCreateWindowForUnknownInstanceFails(t *testing.T) {
	f := newFixture(t, types.Descriptor{ID: "notes"})

	_, err := f.bridge.CreateWindowForApp("inst_missing", window.CreateOptions{})
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestDescriptorDefaultsApply(t *testing.T) {
	defaults := types.Bounds{
		Position: types.Position{X: 10, Y: 20},
		Size:     types.Size{Width: 800, Height: 600},
	}
	constraints := types.DefaultConstraints()
	constraints.Resizable = false
	f := newFixture(t, types.Descriptor{
		ID:                 "notes",
		DefaultBounds:      &defaults,
		DefaultConstraints: &constraints,
	})

	inst, err := f.engine.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	win, err := f.bridge.CreateWindowForApp(inst.ID, window.CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, defaults, win.Bounds)
	assert.False(t, win.Constraints.Resizable)
}

func TestCallerGeometryWinsOverDefaults(t *testing.T) {
	defaults := types.Bounds{Size: types.Size{Width: 800, Height: 600}}
	f := newFixture(t, types.Descriptor{ID: "notes", DefaultBounds: &defaults})

	inst, err := f.engine.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	wanted := types.Bounds{
		Position: types.Position{X: 5, Y: 5},
		Size:     types.Size{Width: 320, Height: 240},
	}
	win, err := f.bridge.CreateWindowForApp(inst.ID, window.CreateOptions{Bounds: &wanted})
	require.NoError(t, err)
	assert.Equal(t, wanted, win.Bounds)
}

func TestDestroyLastWindowTerminatesInstance(t *testing.T) {
	f := newFixture(t, types.Descriptor{ID: "notes"})

	inst, err := f.engine.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	var terminations []types.LifecycleEvent
	f.engine.Subscribe(func(ev types.LifecycleEvent) {
		if ev.Type == types.LifecycleEventTerminate {
			terminations = append(terminations, ev)
		}
	})

	win, err := f.bridge.CreateWindowForApp(inst.ID, window.CreateOptions{})
	require.NoError(t, err)

	f.windows.Destroy(win.ID)

	_, ok := f.engine.Get(inst.ID)
	assert.False(t, ok)
	require.Len(t, terminations, 1)
	assert.Equal(t, lifecycle.TerminateNoWindows, terminations[0].Reason)

	_, ok = f.bridge.Owner(win.ID)
	assert.False(t, ok)
}

func TestDestroyOneOfManyKeepsInstance(t *testing.T) {
	f := newFixture(t, types.Descriptor{ID: "notes"})

	inst, err := f.engine.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	first, err := f.bridge.CreateWindowForApp(inst.ID, window.CreateOptions{})
	require.NoError(t, err)
	second, err := f.bridge.CreateWindowForApp(inst.ID, window.CreateOptions{})
	require.NoError(t, err)

	f.windows.Destroy(first.ID)

	got, ok := f.engine.Get(inst.ID)
	require.True(t, ok)
	assert.Equal(t, []string{second.ID}, got.WindowIDs)
	assert.ElementsMatch(t, []string{second.ID}, f.bridge.WindowsFor(inst.ID))
}

func TestBackgroundAppSurvivesLastWindow(t *testing.T) {
	f := newFixture(t, types.Descriptor{
		ID:           "daemon",
		Capabilities: types.Capabilities{SupportsBackgroundMode: true},
	})

	inst, err := f.engine.Launch(context.Background(), "daemon", types.LaunchContext{})
	require.NoError(t, err)

	win, err := f.bridge.CreateWindowForApp(inst.ID, window.CreateOptions{})
	require.NoError(t, err)
	f.windows.Destroy(win.ID)

	got, ok := f.engine.Get(inst.ID)
	require.True(t, ok)
	assert.Equal(t, types.StateRunning, got.State)
	assert.Empty(t, got.WindowIDs)
}

func TestDirectlyCreatedWindowWithMetadataAssociates(t *testing.T) {
	f := newFixture(t, types.Descriptor{ID: "notes"})

	inst, err := f.engine.Launch(context.Background(), "notes", types.LaunchContext{})
	require.NoError(t, err)

	win, err := f.windows.Create("win_manual", "notes", window.CreateOptions{
		Metadata: map[string]interface{}{types.MetadataInstanceID: inst.ID},
	})
	require.NoError(t, err)

	got, ok := f.engine.Get(inst.ID)
	require.True(t, ok)
	assert.Equal(t, []string{win.ID}, got.WindowIDs)
}

func TestUnownedWindowIgnored(t *testing.T) {
	f := newFixture(t, types.Descriptor{ID: "notes"})

	win, err := f.windows.Create("win_plain", "notes", window.CreateOptions{})
	require.NoError(t, err)
	f.windows.Destroy(win.ID)

	_, ok := f.bridge.Owner(win.ID)
	assert.False(t, ok)
}
