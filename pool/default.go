package pool

import (
	"sync"

	"github.com/momentics/netskel/api"
)

var (
	defaultOnce  sync.Once
	defaultAlloc *BudgetAllocator
)

// DefaultAllocator returns a process-wide payload allocator so loosely
// coupled components share one budget instead of fragmenting limits.
func DefaultAllocator() api.Allocator {
	defaultOnce.Do(func() {
		defaultAlloc = NewBudgetAllocator(DefaultPayloadBudget)
	})
	return defaultAlloc
}
