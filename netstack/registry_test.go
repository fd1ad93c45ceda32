// File: netstack/registry_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package netstack

import (
	"errors"
	"testing"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/pool"
	"github.com/momentics/netskel/protocol"
)

func TestRegistryParkReleaseRefundsBudget(t *testing.T) {
	alloc := pool.NewBudgetAllocator(1 << 10)
	reg := NewResolveRegistry(alloc)

	infos := []protocol.AddrInfo{{Family: protocol.AFInet}, {Family: protocol.AFInet}}
	h, err := reg.Park(infos)
	if err != nil {
		t.Fatalf("Park: %v", err)
	}
	if got := alloc.Stats().InUse; got != int64(2*protocol.AddrInfoSize) {
		t.Fatalf("charged %d bytes, want %d", got, 2*protocol.AddrInfoSize)
	}
	if got, ok := reg.Get(h); !ok || len(got) != 2 {
		t.Fatalf("Get(%d) = %v, %v", h, got, ok)
	}

	if err := reg.Release(h); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if alloc.Stats().InUse != 0 {
		t.Fatal("release did not refund the charge")
	}
	if err := reg.Release(h); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("double release = %v, want ErrNotFound", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("Len = %d after release", reg.Len())
	}
}

func TestRegistryParkOverBudget(t *testing.T) {
	alloc := pool.NewBudgetAllocator(protocol.AddrInfoSize)
	reg := NewResolveRegistry(alloc)

	if _, err := reg.Park(make([]protocol.AddrInfo, 4)); !errors.Is(err, api.ErrNoMemory) {
		t.Fatalf("Park over budget = %v, want ErrNoMemory", err)
	}
	if reg.Len() != 0 {
		t.Fatal("failed park left a parked entry")
	}
}
