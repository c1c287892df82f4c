package types

import (
	"context"
	"time"
)

// Capabilities declares what an application supports
type Capabilities struct {
	MultiInstance          bool `json:"multi_instance" yaml:"multi_instance"`
	SupportsSuspend        bool `json:"supports_suspend" yaml:"supports_suspend"`
	SupportsBackgroundMode bool `json:"supports_background_mode" yaml:"supports_background_mode"`
}

// LaunchOptions control how instances of an application are created
type LaunchOptions struct {
	Singleton bool `json:"singleton" yaml:"singleton"`
	Autostart bool `json:"autostart" yaml:"autostart"`
}

// Descriptor is an immutable catalog entry for an installable application.
// Registering a duplicate identity is an error; descriptors are never
// mutated after registration.
type Descriptor struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Version      string        `json:"version" yaml:"version"`
	Description  string        `json:"description" yaml:"description"`
	Icon         string        `json:"icon" yaml:"icon"`
	Category     string        `json:"category" yaml:"category"`
	Keywords     []string      `json:"keywords" yaml:"keywords"`
	Capabilities Capabilities  `json:"capabilities" yaml:"capabilities"`
	Launch       LaunchOptions `json:"launch" yaml:"launch"`

	// Defaults applied to windows created for this application
	DefaultBounds      *Bounds      `json:"default_bounds,omitempty" yaml:"default_bounds"`
	DefaultConstraints *Constraints `json:"default_constraints,omitempty" yaml:"default_constraints"`

	RegisteredAt time.Time `json:"registered_at" yaml:"-"`
}

// InstanceState is the lifecycle state of a running instance
type InstanceState string

const (
	StateLoading   InstanceState = "loading"
	StateRunning   InstanceState = "running"
	StateSuspended InstanceState = "suspended"
	StateStopping  InstanceState = "stopping"
	StateCrashed   InstanceState = "crashed"
)

// LaunchContext is the opaque context blob handed to a launching instance
type LaunchContext struct {
	Args     []string               `json:"args,omitempty"`
	Env      map[string]string      `json:"env,omitempty"`
	UserData map[string]interface{} `json:"user_data,omitempty"`
}

// Instance is one running session of a descriptor
type Instance struct {
	ID           string        `json:"id"`
	AppID        string        `json:"app_id"`
	State        InstanceState `json:"state"`
	WindowIDs    []string      `json:"window_ids"`
	Context      LaunchContext `json:"context"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActiveAt time.Time     `json:"last_active_at"`
}

// Component is the renderable behavior contract an application provides.
// Render is required; lifecycle hooks are optional and checked for
// presence before being invoked.
type Component struct {
	Render    func(inst *Instance) map[string]interface{}
	OnMount   func(ctx context.Context, inst *Instance) error
	OnUnmount func(ctx context.Context, inst *Instance) error
	OnSuspend func(ctx context.Context, inst *Instance) error
	OnResume  func(ctx context.Context, inst *Instance) error
}

// Lifecycle event types emitted by the lifecycle engine
const (
	LifecycleEventLaunch    = "launch"
	LifecycleEventTerminate = "terminate"
	LifecycleEventSuspend   = "suspend"
	LifecycleEventResume    = "resume"
	LifecycleEventCrash     = "crash"
)

// LifecycleEvent describes one instance transition
type LifecycleEvent struct {
	Type      string    `json:"type"`
	Instance  Instance  `json:"instance"`
	Reason    string    `json:"reason,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Registry event types emitted by the application registry
const (
	RegistryEventRegister   = "register"
	RegistryEventUnregister = "unregister"
)

// RegistryEvent describes one catalog mutation
type RegistryEvent struct {
	Type       string     `json:"type"`
	Descriptor Descriptor `json:"descriptor"`
	Timestamp  time.Time  `json:"timestamp"`
}

// LifecycleStats contains lifecycle engine statistics
type LifecycleStats struct {
	TotalInstances     int            `json:"total_instances"`
	InstancesByState   map[string]int `json:"instances_by_state"`
	RegisteredHandlers int            `json:"registered_handlers"`
}

// RegistryStats contains application registry statistics
type RegistryStats struct {
	TotalApps  int            `json:"total_apps"`
	Categories map[string]int `json:"categories"`
}
