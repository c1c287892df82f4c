// Package lifecycle orchestrates application instances.
//
// The engine owns the instance state machine:
//
//   - Launch: resolve descriptor, create instance, run mount hooks
//   - Suspend/Resume: background transitions with optional hooks
//   - Terminate: unmount hooks, removal, event emission
//   - Crash containment: failing mount hooks park the instance in a
//     crashed state instead of tearing it down
//
// Window membership is tracked per instance; removing the last window
// of an application without background-mode support terminates the
// instance. Inter-instance messaging delivers asynchronously through
// registered handlers with broadcast fan-out.
//
// Applications are resolved through the Catalog interface so the
// engine stays decoupled from the registry implementation.
package lifecycle
