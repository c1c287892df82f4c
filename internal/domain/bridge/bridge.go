package bridge

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/halcyon-desktop/halcyon/internal/domain/window"
	"github.com/halcyon-desktop/halcyon/internal/infrastructure/logging"
	"github.com/halcyon-desktop/halcyon/internal/shared/id"
	"github.com/halcyon-desktop/halcyon/internal/shared/types"
)

// ErrInstanceNotFound is returned when creating a window for an
// unknown instance
var ErrInstanceNotFound = errors.New("instance not found")

// Instances is the lifecycle surface the bridge needs
type Instances interface {
	Get(instanceID string) (*types.Instance, bool)
	AddWindow(instanceID, windowID string)
	RemoveWindow(instanceID, windowID string)
}

// Descriptors resolves application descriptors for default geometry
type Descriptors interface {
	Get(appID string) (types.Descriptor, bool)
}

// Bridge couples the window registry to the application lifecycle.
//
// Ownership is carried on the window itself: windows created through
// the bridge record their instance identity under the instance-id
// metadata key, and the bridge mirrors that association into the
// instance's window list. Window destruction flows back the other way
// and may cascade into instance termination via the lifecycle's own
// window-list policy.
type Bridge struct {
	mu      sync.RWMutex
	owners  map[string]string // window id → instance id
	windows *window.Manager
	insts   Instances
	apps    Descriptors
	logger  *logging.Logger
}

// New creates a bridge and subscribes it to window events
func New(windows *window.Manager, insts Instances, apps Descriptors, logger *logging.Logger) *Bridge {
	if logger == nil {
		logger = logging.NewNop()
	}
	b := &Bridge{
		owners:  make(map[string]string),
		windows: windows,
		insts:   insts,
		apps:    apps,
		logger:  logger,
	}
	windows.Subscribe(b.onWindowEvent)
	return b
}

// CreateWindowForApp opens a window owned by the given instance.
//
// Geometry and constraints resolve in layers: the application
// descriptor's defaults first, then anything the caller set on top
// (caller wins). The association is recorded before the window
// registry fires its create event so the event listener sees a
// consistent owner map.
func (b *Bridge) CreateWindowForApp(instanceID string, opts window.CreateOptions) (*types.Window, error) {
	inst, ok := b.insts.Get(instanceID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	}

	if desc, ok := b.apps.Get(inst.AppID); ok {
		if opts.Bounds == nil && desc.DefaultBounds != nil {
			bounds := *desc.DefaultBounds
			opts.Bounds = &bounds
		}
		if opts.Constraints == nil && desc.DefaultConstraints != nil {
			constraints := *desc.DefaultConstraints
			opts.Constraints = &constraints
		}
	}

	if opts.Metadata == nil {
		opts.Metadata = make(map[string]interface{})
	}
	opts.Metadata[types.MetadataInstanceID] = instanceID

	windowID := id.NewWindowID().String()
	b.mu.Lock()
	b.owners[windowID] = instanceID
	b.mu.Unlock()

	win, err := b.windows.Create(windowID, inst.AppID, opts)
	if err != nil {
		b.mu.Lock()
		delete(b.owners, windowID)
		b.mu.Unlock()
		return nil, err
	}
	return win, nil
}

// Owner returns the instance owning a window, if any
func (b *Bridge) Owner(windowID string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	instID, ok := b.owners[windowID]
	return instID, ok
}

// WindowsFor returns the window identities currently owned by an instance
func (b *Bridge) WindowsFor(instanceID string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []string
	for winID, owner := range b.owners {
		if owner == instanceID {
			out = append(out, winID)
		}
	}
	return out
}

func (b *Bridge) onWindowEvent(ev types.WindowEvent) {
	switch ev.Type {
	case types.WindowEventCreate:
		b.associate(&ev.Window)
	case types.WindowEventDestroy:
		b.dissociate(ev.Window.ID)
	}
}

// associate records ownership for windows carrying instance metadata,
// covering windows created outside CreateWindowForApp as well.
func (b *Bridge) associate(win *types.Window) {
	instID, ok := win.InstanceID()
	if !ok {
		return
	}

	b.mu.Lock()
	b.owners[win.ID] = instID
	b.mu.Unlock()

	if _, ok := b.insts.Get(instID); !ok {
		b.logger.Warn("window references unknown instance",
			zap.String("window_id", win.ID), zap.String("instance_id", instID))
		return
	}
	b.insts.AddWindow(instID, win.ID)
}

func (b *Bridge) dissociate(windowID string) {
	b.mu.Lock()
	instID, ok := b.owners[windowID]
	delete(b.owners, windowID)
	b.mu.Unlock()

	if !ok {
		return
	}
	b.insts.RemoveWindow(instID, windowID)
}
