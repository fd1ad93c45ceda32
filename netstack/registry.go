// File: netstack/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Registry of parked resolver results. The boundary pairs resolve with
// resolve-release the way getaddrinfo pairs with freeaddrinfo: results
// stay parked under a handle until the peer releases them, and their
// memory is charged to the payload budget so an abandoning peer runs
// into ErrNoMemory instead of growing the heap forever.

package netstack

import (
	"sync"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
)

// ResolveRegistry parks resolver results under peer-visible handles.
type ResolveRegistry struct {
	alloc api.Allocator

	mu     sync.Mutex
	next   uint64
	parked map[uint64]parkedResult
}

type parkedResult struct {
	infos  []protocol.AddrInfo
	charge []byte
}

// NewResolveRegistry creates an empty registry charging the given
// allocator.
func NewResolveRegistry(alloc api.Allocator) *ResolveRegistry {
	return &ResolveRegistry{
		alloc:  alloc,
		next:   1,
		parked: make(map[uint64]parkedResult),
	}
}

// Park stores a resolver result and returns its handle. The result's
// wire size is charged to the budget; exhaustion surfaces as
// api.ErrNoMemory and nothing is parked.
func (g *ResolveRegistry) Park(infos []protocol.AddrInfo) (uint64, error) {
	charge, err := g.alloc.Alloc(len(infos) * protocol.AddrInfoSize)
	if err != nil {
		return 0, err
	}
	g.mu.Lock()
	h := g.next
	g.next++
	g.parked[h] = parkedResult{infos: infos, charge: charge}
	g.mu.Unlock()
	return h, nil
}

// Release evicts a parked result and refunds its charge. Handles that
// are unknown or already released yield api.ErrNotFound.
func (g *ResolveRegistry) Release(handle uint64) error {
	g.mu.Lock()
	p, ok := g.parked[handle]
	if ok {
		delete(g.parked, handle)
	}
	g.mu.Unlock()
	if !ok {
		return api.ErrNotFound
	}
	g.alloc.Free(p.charge)
	return nil
}

// Get returns the parked records for a handle.
func (g *ResolveRegistry) Get(handle uint64) ([]protocol.AddrInfo, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.parked[handle]
	return p.infos, ok
}

// Len reports how many results are currently parked.
func (g *ResolveRegistry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.parked)
}
