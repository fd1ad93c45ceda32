// Package control
// Author: momentics <momentics@gmail.com>
//
// Control plane of the boundary dispatcher: dynamic configuration with
// hot-reload listeners, runtime metrics telemetry and debug probes.
//
// Provides concurrent-safe state handling primitives including:
//   - Immutable snapshot config reads and atomic updates
//   - Runtime observers for hot-reload, fed by a config file watcher
//   - Metrics counters published by the dispatcher and pools
//   - State export, debug hooks, and probe registration
//
// This package is cross-platform and build-tag-partitioned as needed.
package control
