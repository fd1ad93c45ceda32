// File: channel/invoker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-owner invoker. The boundary tolerates exactly one in-flight
// invocation; instead of guarding the link with a mutex, one goroutine
// owns it outright and everyone else hands work over a channel. The
// owner also folds the peer's answer back into the caller's descriptor,
// so a descriptor is never touched by two goroutines at once.

package channel

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/protocol"
)

type invokeReq struct {
	d    *protocol.Descriptor
	done chan invokeRes
}

type invokeRes struct {
	st  protocol.Status
	err error
}

// Invoker implements api.Invoker over a peer link.
type Invoker struct {
	link   api.PeerLink
	handle uint64

	reqCh    chan invokeReq
	stopCh   chan struct{}
	stopOnce sync.Once
	closed   atomic.Bool

	invocations atomic.Uint64
}

// NewInvoker starts the owner goroutine for the given link and service
// handle.
func NewInvoker(link api.PeerLink, handle uint64) *Invoker {
	inv := &Invoker{
		link:   link,
		handle: handle,
		reqCh:  make(chan invokeReq),
		stopCh: make(chan struct{}),
	}
	go inv.run()
	return inv
}

// Invoke hands the descriptor to the owner goroutine and waits for the
// merged result. The context covers the rendezvous; once the owner has
// picked the request up, the invocation runs to completion.
func (inv *Invoker) Invoke(ctx context.Context, d *protocol.Descriptor) (protocol.Status, error) {
	if inv.closed.Load() {
		return 0, api.ErrInvokerClosed
	}
	req := invokeReq{d: d, done: make(chan invokeRes, 1)}
	select {
	case inv.reqCh <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-inv.stopCh:
		return 0, api.ErrInvokerClosed
	}
	select {
	case res := <-req.done:
		if res.err == nil && res.st == protocol.StatusBusy {
			// The single owner makes overlap impossible, so the
			// peer claiming to be busy means one of the two sides
			// has lost track of the conversation. Continuing would
			// corrupt descriptor state; stop the process instead.
			panic("channel: peer reported busy on a serialized boundary")
		}
		return res.st, res.err
	case <-inv.stopCh:
		return 0, api.ErrInvokerClosed
	}
}

// Doorbell exposes the link's work notification.
func (inv *Invoker) Doorbell() <-chan struct{} {
	return inv.link.Doorbell()
}

// Close stops the owner and closes the link.
func (inv *Invoker) Close() error {
	inv.stopOnce.Do(func() {
		inv.closed.Store(true)
		close(inv.stopCh)
	})
	return inv.link.Close()
}

// Invocations returns the number of completed boundary round trips.
func (inv *Invoker) Invocations() uint64 {
	return inv.invocations.Load()
}

func (inv *Invoker) run() {
	for {
		select {
		case req := <-inv.reqCh:
			st, err := inv.invokeOne(req.d)
			req.done <- invokeRes{st: st, err: err}
		case <-inv.stopCh:
			return
		}
	}
}

func (inv *Invoker) invokeOne(d *protocol.Descriptor) (protocol.Status, error) {
	body, err := inv.link.Call(protocol.EncodeCall(inv.handle, d))
	if err != nil {
		return 0, err
	}
	st, reply, err := protocol.DecodeReply(body)
	if err != nil {
		return 0, err
	}
	inv.invocations.Add(1)
	if st != protocol.StatusOK || reply == nil {
		return st, nil
	}
	switch d.Phase {
	case protocol.PhaseGetOp:
		d.CopyFrom(reply)
	case protocol.PhaseCopyIn:
		d.FillBuffers(reply)
	}
	return st, nil
}
