// File: pool/allocator.go
// Package pool
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Payload allocator with a fixed byte budget. Every staged buffer and
// every parked resolver result is charged here, so a flood of oversized
// requests from the peer degrades into ordinary ErrNoMemory results
// instead of unbounded heap growth.

package pool

import (
	"sync"

	"github.com/momentics/netskel/api"
)

// DefaultPayloadBudget bounds staged payload memory when the
// configuration does not say otherwise.
const DefaultPayloadBudget int64 = 16 << 20

// BudgetAllocator implements api.Allocator with plain mutex accounting.
type BudgetAllocator struct {
	mu       sync.Mutex
	budget   int64
	inUse    int64
	peak     int64
	failures uint64
}

// NewBudgetAllocator creates an allocator with the given budget.
// Non-positive budgets fall back to DefaultPayloadBudget.
func NewBudgetAllocator(budget int64) *BudgetAllocator {
	if budget <= 0 {
		budget = DefaultPayloadBudget
	}
	return &BudgetAllocator{budget: budget}
}

// Alloc returns a zeroed buffer of exactly n bytes, or ErrNoMemory
// when the charge would exceed the budget.
func (a *BudgetAllocator) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, api.ErrInvalidArgument
	}
	a.mu.Lock()
	if a.inUse+int64(n) > a.budget {
		a.failures++
		a.mu.Unlock()
		return nil, api.ErrNoMemory
	}
	a.inUse += int64(n)
	if a.inUse > a.peak {
		a.peak = a.inUse
	}
	a.mu.Unlock()
	return make([]byte, n), nil
}

// Free refunds the buffer's bytes. Buffers must be freed whole, as
// returned by Alloc.
func (a *BudgetAllocator) Free(buf []byte) {
	if buf == nil {
		return
	}
	a.mu.Lock()
	a.inUse -= int64(len(buf))
	if a.inUse < 0 {
		a.inUse = 0
	}
	a.mu.Unlock()
}

// Stats reports budget accounting.
func (a *BudgetAllocator) Stats() api.AllocatorStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return api.AllocatorStats{
		Budget:   a.budget,
		InUse:    a.inUse,
		Peak:     a.peak,
		Failures: a.failures,
	}
}
