// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations, DTOs, and constants.

package api

import "time"

// DrainState enumerates the state of the dispatch loop.
type DrainState int

const (
	DrainUnknown DrainState = iota
	DrainWaiting
	DrainActive
	DrainStopped
)

func (s DrainState) String() string {
	switch s {
	case DrainWaiting:
		return "waiting"
	case DrainActive:
		return "draining"
	case DrainStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// DispatcherStats provides a standard layout for health/statistics
// reporting of the boundary dispatcher.
type DispatcherStats struct {
	OpsFetched   uint64 // operations pulled from the peer
	OpsCompleted uint64 // operations answered with a result
	OpsDropped   uint64 // operations discarded (unknown code)
	Invocations  uint64 // boundary round trips
	Doorbells    uint64 // work notifications observed
	StartedAt    time.Time
}

// ServiceInfo exposes descriptive build- and runtime info for external tools.
type ServiceInfo struct {
	Name      string
	Version   string
	Build     string
	StartedAt time.Time
}
