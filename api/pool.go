// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs: the fixed descriptor slot pool and the
// budgeted payload allocator.

package api

import (
	"context"

	"github.com/momentics/netskel/protocol"
)

// SlotPool hands out reusable request descriptors from a fixed
// population. Acquire blocks while the pool is empty; the context is
// there for shutdown, not for per-request deadlines.
type SlotPool interface {
	// Acquire returns a reset descriptor, blocking until one is free.
	Acquire(ctx context.Context) (*protocol.Descriptor, error)

	// Release resets a descriptor and returns it to the pool.
	Release(d *protocol.Descriptor)

	// Stats exposes occupancy counters for observability.
	Stats() SlotPoolStats
}

// SlotPoolStats aggregates slot pool occupancy.
type SlotPoolStats struct {
	Capacity  int
	InUse     int
	HighWater int
}

// Allocator provides payload buffers under a fixed byte budget.
// Exceeding the budget is an ordinary runtime condition reported with
// ErrNoMemory, not a fault.
type Allocator interface {
	// Alloc returns a zeroed buffer of exactly n bytes.
	Alloc(n int) ([]byte, error)

	// Free returns a buffer's bytes to the budget.
	Free(buf []byte)

	// Stats exposes budget accounting.
	Stats() AllocatorStats
}

// AllocatorStats aggregates payload budget accounting.
type AllocatorStats struct {
	Budget   int64
	InUse    int64
	Peak     int64
	Failures uint64
}
