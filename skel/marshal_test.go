// File: skel/marshal_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package skel

import (
	"context"
	"testing"

	"github.com/momentics/netskel/pool"
	"github.com/momentics/netskel/protocol"
)

// phaseRecorder stands in for the invoker and keeps a snapshot of the
// descriptor at every boundary crossing.
type phaseRecorder struct {
	images []*protocol.Descriptor
}

func (p *phaseRecorder) Invoke(_ context.Context, d *protocol.Descriptor) (protocol.Status, error) {
	p.images = append(p.images, d.Clone())
	return protocol.StatusOK, nil
}

func (p *phaseRecorder) Doorbell() <-chan struct{} { return nil }
func (p *phaseRecorder) Close() error              { return nil }

func (p *phaseRecorder) last(t *testing.T) *protocol.Descriptor {
	t.Helper()
	if len(p.images) == 0 {
		t.Fatal("no boundary crossing recorded")
	}
	return p.images[len(p.images)-1]
}

// An in-only payload (send's buffer) crosses inward once and must not
// ride back outward with the result; the reference survives, the bytes
// do not.
func TestFinishDetachesInOnlyPayloads(t *testing.T) {
	alloc := pool.NewBudgetAllocator(1 << 16)
	rec := &phaseRecorder{}

	var d protocol.Descriptor
	d.Op = protocol.OpSend
	d.SetScalar(0, 3)
	d.Slots[1] = protocol.Slot{Kind: protocol.SlotBuffer, Val: 7}
	d.SetScalar(2, 5)
	d.SetScalar(3, 0)

	plan, ok := PlanFor(protocol.OpSend)
	if !ok {
		t.Fatal("no plan for send")
	}
	req := newRequest(rec, alloc, &d, plan)

	ctx := context.Background()
	if !req.Stage(ctx, 1) {
		t.Fatal("Stage failed")
	}
	if !req.CopyIn(ctx) {
		t.Fatal("CopyIn failed")
	}
	req.Finish(ctx, 5)
	req.close()

	final := rec.last(t)
	if final.Phase != protocol.PhasePutResult {
		t.Fatalf("last crossing phase = %v, want put-result", final.Phase)
	}
	if final.Slots[1].Buf != nil {
		t.Fatal("in-only payload crossed outward with the result")
	}
	if final.Slots[1].Kind != protocol.SlotBuffer || final.Slots[1].Val != 7 {
		t.Fatalf("buffer reference lost: %+v", final.Slots[1])
	}
	if alloc.Stats().InUse != 0 {
		t.Fatal("staged buffer not refunded")
	}
}

// Out payloads keep their bytes attached at put-result.
func TestFinishKeepsOutPayloads(t *testing.T) {
	alloc := pool.NewBudgetAllocator(1 << 16)
	rec := &phaseRecorder{}

	var d protocol.Descriptor
	d.Op = protocol.OpRecv
	d.SetScalar(0, 3)
	d.Slots[1] = protocol.Slot{Kind: protocol.SlotBuffer, Val: 9}
	d.SetScalar(2, 4)
	d.SetScalar(3, 0)

	plan, _ := PlanFor(protocol.OpRecv)
	req := newRequest(rec, alloc, &d, plan)
	defer req.close()

	ctx := context.Background()
	if !req.Stage(ctx, 1) {
		t.Fatal("Stage failed")
	}
	copy(req.D.Slots[1].Buf, "data")
	req.D.Sizes[1] = 4
	req.Finish(ctx, 4)

	final := rec.last(t)
	if got := string(final.Slots[1].Buf); got != "data" {
		t.Fatalf("out payload = %q, want %q", got, "data")
	}
}

// Select carries its descriptor sets both ways but the timeout only
// inward; after the call the timeval slot must cross back bare.
func TestFinishDetachesSelectTimeout(t *testing.T) {
	alloc := pool.NewBudgetAllocator(1 << 16)
	rec := &phaseRecorder{}

	var d protocol.Descriptor
	d.Op = protocol.OpSelect
	d.SetScalar(0, 4)
	for i := 1; i <= 4; i++ {
		d.Slots[i] = protocol.Slot{Kind: protocol.SlotBuffer, Val: uint64(i)}
	}

	plan, _ := PlanFor(protocol.OpSelect)
	req := newRequest(rec, alloc, &d, plan)
	defer req.close()

	ctx := context.Background()
	for i := 1; i <= 4; i++ {
		if !req.Stage(ctx, i) {
			t.Fatalf("Stage(%d) failed", i)
		}
	}
	if !req.CopyIn(ctx) {
		t.Fatal("CopyIn failed")
	}
	req.Finish(ctx, 0)

	final := rec.last(t)
	for i := 1; i <= 3; i++ {
		if final.Slots[i].Buf == nil {
			t.Fatalf("descriptor set %d lost its outward bytes", i)
		}
	}
	if final.Slots[4].Buf != nil {
		t.Fatal("timeout payload crossed outward with the result")
	}
}
