// Package registry provides the application descriptor catalog.
//
// The registry stores immutable manifests describing installable
// applications: identity, capabilities, default window geometry and
// constraints, and launch options. Each descriptor is paired with the
// behavior component the lifecycle engine mounts at launch.
//
// Components:
//   - Manager: catalog CRUD, category filter, free-text search
//   - Seeder: loads .app.yaml manifests from disk on startup
//   - ValidateManifest: missing-required-field reporting
//
// Registering a duplicate identity is an error; unregistering an
// absent identity returns false. Validation is the caller's job and is
// never run implicitly by Register.
package registry
