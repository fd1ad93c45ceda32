// File: pool/slotpool.go
// Package pool
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed population of request descriptors. The pool size is the hard
// cap on concurrently serviced operations: when every slot is out, the
// drain loop parks in Acquire until a worker finishes.

package pool

import (
	"context"
	"sync"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
)

// DefaultSlotCount is the descriptor population used when the
// configuration does not say otherwise.
const DefaultSlotCount = 4

// SlotPool implements api.SlotPool over a buffered channel holding the
// whole population.
type SlotPool struct {
	slots chan *protocol.Descriptor

	mu        sync.Mutex
	capacity  int
	inUse     int
	highWater int
}

// NewSlotPool creates a pool with the given number of descriptors.
// Non-positive capacity falls back to DefaultSlotCount.
func NewSlotPool(capacity int) *SlotPool {
	if capacity <= 0 {
		capacity = DefaultSlotCount
	}
	p := &SlotPool{
		slots:    make(chan *protocol.Descriptor, capacity),
		capacity: capacity,
	}
	for i := 0; i < capacity; i++ {
		p.slots <- &protocol.Descriptor{}
	}
	return p
}

// Acquire returns a reset descriptor, blocking while the population is
// exhausted. The context cancels the wait on shutdown.
func (p *SlotPool) Acquire(ctx context.Context) (*protocol.Descriptor, error) {
	select {
	case d := <-p.slots:
		p.mu.Lock()
		p.inUse++
		if p.inUse > p.highWater {
			p.highWater = p.inUse
		}
		p.mu.Unlock()
		return d, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release resets the descriptor and returns it to the population.
func (p *SlotPool) Release(d *protocol.Descriptor) {
	if d == nil {
		return
	}
	d.Reset()
	p.mu.Lock()
	if p.inUse > 0 {
		p.inUse--
	}
	p.mu.Unlock()
	p.slots <- d
}

// Stats reports occupancy counters.
func (p *SlotPool) Stats() api.SlotPoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return api.SlotPoolStats{
		Capacity:  p.capacity,
		InUse:     p.inUse,
		HighWater: p.highWater,
	}
}
