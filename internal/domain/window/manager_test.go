package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

func newTestManager() *Manager {
	return NewManager(nil)
}

// checkInvariants asserts the registry invariants: at most one focused
// window (visible, not minimized), and z-index equal to stack position+1.
func checkInvariants(t *testing.T, m *Manager) {
	t.Helper()

	all := m.GetAll()
	focusedCount := 0
	for i, win := range all {
		assert.Equal(t, i+1, win.ZIndex, "z-index must equal stack position+1")
		if win.Focused {
			focusedCount++
			assert.True(t, win.Visible, "focused window must be visible")
			assert.False(t, win.Minimized, "focused window must not be minimized")
		}
	}
	assert.LessOrEqual(t, focusedCount, 1, "at most one window may hold focus")
}

func TestCreateAssignsTopAndFocus(t *testing.T) {
	m := newTestManager()

	w1, err := m.Create("a", "app1", CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, w1.ZIndex)
	assert.Equal(t, DefaultBounds, w1.Bounds)

	_, err = m.Create("b", "app1", CreateOptions{})
	require.NoError(t, err)

	focused, ok := m.GetFocused()
	require.True(t, ok)
	assert.Equal(t, "b", focused.ID, "newest window auto-focuses")

	got, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, got.ZIndex)
	checkInvariants(t, m)
}

func TestCreateDuplicateFails(t *testing.T) {
	m := newTestManager()

	_, err := m.Create("a", "app1", CreateOptions{})
	require.NoError(t, err)

	_, err = m.Create("a", "app2", CreateOptions{})
	assert.ErrorIs(t, err, ErrWindowExists)

	// Original is untouched
	win, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "app1", win.AppID)
}

func TestCreateEmitsBeforeFocus(t *testing.T) {
	m := newTestManager()

	var order []string
	m.Subscribe(func(ev types.WindowEvent) {
		order = append(order, ev.Type)
	})

	_, err := m.Create("a", "app1", CreateOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{types.WindowEventCreate, types.WindowEventFocus}, order)
}

func TestFocusRaisesToTop(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})
	m.Create("b", "app1", CreateOptions{})
	m.Create("c", "app1", CreateOptions{})

	m.Focus("a")

	all := m.GetAll()
	assert.Equal(t, "a", all[len(all)-1].ID, "focusing raises to top")
	assert.True(t, all[len(all)-1].Focused)

	b, _ := m.Get("b")
	assert.False(t, b.Focused)
	checkInvariants(t, m)
}

func TestFocusEmitsBlurThenFocus(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})
	m.Create("b", "app1", CreateOptions{})

	var got []string
	m.Subscribe(func(ev types.WindowEvent) {
		got = append(got, ev.Type+":"+ev.Window.ID)
	})

	m.Focus("a")

	assert.Equal(t, []string{"blur:b", "focus:a"}, got)
}

func TestFocusMinimizedIsNoop(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})
	m.Create("b", "app1", CreateOptions{})
	m.Minimize("a")

	m.Focus("a")

	focused, ok := m.GetFocused()
	require.True(t, ok)
	assert.Equal(t, "b", focused.ID)
	checkInvariants(t, m)
}

func TestFocusUnknownIsNoop(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})

	m.Focus("ghost")

	focused, ok := m.GetFocused()
	require.True(t, ok)
	assert.Equal(t, "a", focused.ID)
}

func TestDestroyTransfersFocusToTopmostEligible(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})
	m.Create("b", "app1", CreateOptions{})
	m.Create("c", "app1", CreateOptions{})
	m.Minimize("b")

	// c is focused; destroying it must skip minimized b and land on a
	m.Destroy("c")

	focused, ok := m.GetFocused()
	require.True(t, ok)
	assert.Equal(t, "a", focused.ID)
	checkInvariants(t, m)
}

func TestDestroyLastWindowClearsFocus(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})

	m.Destroy("a")

	_, ok := m.GetFocused()
	assert.False(t, ok)
	assert.Empty(t, m.GetAll())
}

func TestDestroyUnknownIsNoop(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})

	m.Destroy("ghost")
	m.Destroy("a")
	m.Destroy("a") // stale reference, second destroy is a no-op

	assert.Empty(t, m.GetAll())
}

func TestMinimizeTransfersFocusImmediately(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})
	m.Create("b", "app1", CreateOptions{})

	m.Minimize("b")

	b, _ := m.Get("b")
	assert.True(t, b.Minimized)
	assert.False(t, b.Visible)
	assert.False(t, b.Focused)

	focused, ok := m.GetFocused()
	require.True(t, ok)
	assert.Equal(t, "a", focused.ID)
	checkInvariants(t, m)
}

func TestMinimizeAlreadyMinimizedIsNoop(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})

	count := 0
	m.Subscribe(func(ev types.WindowEvent) {
		if ev.Type == types.WindowEventMinimize {
			count++
		}
	})

	m.Minimize("a")
	m.Minimize("a")

	assert.Equal(t, 1, count)
}

func TestMinimizeLastWindowLeavesNoFocus(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})

	m.Minimize("a")

	_, ok := m.GetFocused()
	assert.False(t, ok)
	checkInvariants(t, m)
}

func TestRestoreMinimizedFocuses(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})
	m.Create("b", "app1", CreateOptions{})
	m.Minimize("a")

	m.Restore("a")

	a, _ := m.Get("a")
	assert.False(t, a.Minimized)
	assert.True(t, a.Visible)
	assert.True(t, a.Focused)

	all := m.GetAll()
	assert.Equal(t, "a", all[len(all)-1].ID, "restored window raises to top")
	checkInvariants(t, m)
}

func TestMaximizeRestoreTogglesFlag(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})

	m.Maximize("a")
	a, _ := m.Get("a")
	assert.True(t, a.Maximized)

	m.Restore("a")
	a, _ = m.Get("a")
	assert.False(t, a.Maximized)
}

func TestMoveHonorsConstraints(t *testing.T) {
	m := newTestManager()
	fixed := types.DefaultConstraints()
	fixed.Movable = false
	m.Create("a", "app1", CreateOptions{Constraints: &fixed})
	m.Create("b", "app1", CreateOptions{})

	m.Move("a", types.Position{X: 5, Y: 5})
	m.Move("b", types.Position{X: 5, Y: 5})

	a, _ := m.Get("a")
	assert.Equal(t, DefaultBounds.Position, a.Bounds.Position, "move against constraints is silently ignored")

	b, _ := m.Get("b")
	assert.Equal(t, types.Position{X: 5, Y: 5}, b.Bounds.Position)
}

func TestResizeClampsToDeclaredBounds(t *testing.T) {
	m := newTestManager()
	c := types.DefaultConstraints()
	c.MinSize = &types.Size{Width: 200, Height: 150}
	c.MaxSize = &types.Size{Width: 800, Height: 600}
	m.Create("a", "app1", CreateOptions{Constraints: &c})

	var lastResize *types.WindowEvent
	m.Subscribe(func(ev types.WindowEvent) {
		if ev.Type == types.WindowEventResize {
			cp := ev
			lastResize = &cp
		}
	})

	m.Resize("a", types.Size{Width: 50, Height: 2000})

	a, _ := m.Get("a")
	assert.Equal(t, types.Size{Width: 200, Height: 600}, a.Bounds.Size)
	require.NotNil(t, lastResize)
	assert.Equal(t, types.Size{Width: 200, Height: 600}, lastResize.Window.Bounds.Size,
		"resize event carries the clamped value")
}

func TestResizeForbiddenIsNoop(t *testing.T) {
	m := newTestManager()
	c := types.DefaultConstraints()
	c.Resizable = false
	m.Create("a", "app1", CreateOptions{Constraints: &c})

	m.Resize("a", types.Size{Width: 10, Height: 10})

	a, _ := m.Get("a")
	assert.Equal(t, DefaultBounds.Size, a.Bounds.Size)
}

func TestViewportLastWriterWins(t *testing.T) {
	m := newTestManager()

	m.SetViewport(types.Viewport{Width: 1920, Height: 1080})
	m.SetViewport(types.Viewport{Width: 1280, Height: 720})

	assert.Equal(t, types.Viewport{Width: 1280, Height: 720}, m.Viewport())
}

func TestStats(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{})
	m.Create("b", "app2", CreateOptions{})
	m.Minimize("a")

	stats := m.Stats()
	assert.Equal(t, 2, stats.TotalWindows)
	assert.Equal(t, 1, stats.VisibleWindows)
	assert.Equal(t, 1, stats.MinimizedWindows)
	require.NotNil(t, stats.FocusedWindowID)
	assert.Equal(t, "b", *stats.FocusedWindowID)
}

func TestListenerMayDestroyDuringCreate(t *testing.T) {
	m := newTestManager()

	// A listener that destroys the window on create: the deferred
	// auto-focus must tolerate the stale reference.
	m.Subscribe(func(ev types.WindowEvent) {
		if ev.Type == types.WindowEventCreate && ev.Window.ID == "doomed" {
			m.Destroy("doomed")
		}
	})

	m.Create("a", "app1", CreateOptions{})
	_, err := m.Create("doomed", "app1", CreateOptions{})
	require.NoError(t, err)

	_, ok := m.Get("doomed")
	assert.False(t, ok)
	checkInvariants(t, m)
}

func TestReturnedWindowsAreCopies(t *testing.T) {
	m := newTestManager()
	m.Create("a", "app1", CreateOptions{Metadata: map[string]interface{}{"k": "v"}})

	win, _ := m.Get("a")
	win.Metadata["k"] = "mutated"
	win.Focused = false

	again, _ := m.Get("a")
	assert.Equal(t, "v", again.Metadata["k"])
	assert.True(t, again.Focused)
}
