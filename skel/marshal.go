// File: skel/marshal.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Request-scoped marshaling. A Request wraps one acquired descriptor
// with the invoker, the payload allocator and its marshal plan, and
// enforces the per-descriptor ordering: buffers are staged, inputs
// cross inward once, the operation runs, the result crosses outward
// once. Every staged buffer is refunded when the request closes,
// whatever path it took.

package skel

import (
	"context"
	"fmt"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
)

// Request is the per-operation marshaling context handed to handlers.
type Request struct {
	D    *protocol.Descriptor
	Plan Plan

	inv   api.Invoker
	alloc api.Allocator

	staged   [][]byte
	copiedIn bool
	finished bool
	result   int32
	err      error
}

func newRequest(inv api.Invoker, alloc api.Allocator, d *protocol.Descriptor, plan Plan) *Request {
	return &Request{D: d, Plan: plan, inv: inv, alloc: alloc}
}

// Scalar returns the immediate value of slot i.
func (r *Request) Scalar(i int) uint64 { return r.D.Slots[i].Val }

// Stage allocates the buffer for slot i at its plan-declared length
// and attaches it to the descriptor. On budget exhaustion the request
// is finished with an out-of-memory result and Stage reports false;
// the handler must return without touching the slot.
func (r *Request) Stage(ctx context.Context, i int) bool {
	return r.StageN(ctx, i, r.Plan.BufferLen(r.D, i))
}

// StageN is Stage with an explicit length, for out buffers whose size
// only the handler knows.
func (r *Request) StageN(ctx context.Context, i, n int) bool {
	buf, err := r.alloc.Alloc(n)
	if err != nil {
		r.Finish(ctx, protocol.ResultNoMem)
		return false
	}
	r.staged = append(r.staged, buf)
	r.D.SetBuffer(i, buf)
	return true
}

// CopyIn crosses the staged input buffers inward. It must be called
// before the handler reads any staged "in" buffer, and only once.
// A false return means the boundary failed; the request is dead and
// the handler must return immediately.
func (r *Request) CopyIn(ctx context.Context) bool {
	if r.copiedIn || r.finished {
		r.fail(fmt.Errorf("copy-in out of order for %v", r.D.Op))
		return false
	}
	r.D.Phase = protocol.PhaseCopyIn
	st, err := r.inv.Invoke(ctx, r.D)
	if err != nil {
		r.fail(fmt.Errorf("copy-in %v: %w", r.D.Op, err))
		return false
	}
	if st != protocol.StatusOK {
		r.fail(fmt.Errorf("copy-in %v: unexpected status %v", r.D.Op, st))
		return false
	}
	r.copiedIn = true
	return true
}

// Finish delivers the result and the staged output buffers to the
// peer. Exactly one Finish lands per dispatched request; later calls
// are ignored so error paths can finish unconditionally. Buffers whose
// plan slot does not cross outward are detached first, so the result
// frame carries only what the plan declares.
func (r *Request) Finish(ctx context.Context, result int32) {
	if r.finished {
		return
	}
	r.finished = true
	r.result = result
	for i := range r.D.Slots {
		if r.D.Slots[i].Buf != nil && !r.Plan.Slots[i].Dir.Out() {
			r.D.Slots[i].Buf = nil
		}
	}
	r.D.Phase = protocol.PhasePutResult
	r.D.Result = result
	st, err := r.inv.Invoke(ctx, r.D)
	if err != nil {
		r.err = fmt.Errorf("put-result %v: %w", r.D.Op, err)
		return
	}
	if st != protocol.StatusOK {
		r.err = fmt.Errorf("put-result %v: unexpected status %v", r.D.Op, st)
	}
}

// DropOutput detaches slot i so no payload crosses outward with the
// result. Used on failed reads so the peer never sees a torn buffer.
func (r *Request) DropOutput(i int) {
	r.D.Slots[i].Buf = nil
	r.D.Sizes[i] = 0
}

func (r *Request) fail(err error) {
	if r.err == nil {
		r.err = err
	}
	r.finished = true
}

// close refunds staged buffers. Called by the dispatcher after the
// handler returns; the descriptor itself goes back to the slot pool
// separately.
func (r *Request) close() {
	for _, buf := range r.staged {
		r.alloc.Free(buf)
	}
	r.staged = nil
	for i := range r.D.Slots {
		r.D.Slots[i].Buf = nil
	}
}
