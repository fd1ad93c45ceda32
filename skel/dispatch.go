// File: skel/dispatch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The dispatcher proper: a single drain goroutine pulls pending
// operations from the peer and a fixed worker pool executes them.
// The worker count equals the slot population, so a full pool parks
// the drain loop in Acquire until a worker finishes — that is the
// only backpressure mechanism and the only one needed.

package skel

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/netskel/api"
	"github.com/momentics/netskel/internal/concurrency"
	"github.com/momentics/netskel/netstack"
	"github.com/momentics/netskel/protocol"
)

// DefaultWorkers is the worker (and slot) count used when the
// configuration does not say otherwise.
const DefaultWorkers = 4

// Options configures a Dispatcher.
type Options struct {
	// Workers is the executor pool size. Non-positive falls back to
	// DefaultWorkers.
	Workers int

	// Logger receives drain-level events. Nil silences them.
	Logger *logrus.Logger

	// Observer receives completion and drop events. Callbacks run on
	// worker goroutines.
	Observer api.Observer
}

// Dispatcher drains and executes boundary operations.
type Dispatcher struct {
	inv   api.Invoker
	pool  api.SlotPool
	alloc api.Allocator
	table [protocol.NumOps]HandlerFunc
	exec  *concurrency.Executor
	log   *logrus.Entry
	obs   api.Observer

	state     atomic.Int32
	startedAt time.Time

	opsFetched   atomic.Uint64
	opsCompleted atomic.Uint64
	opsDropped   atomic.Uint64
	doorbells    atomic.Uint64
}

// NewDispatcher wires a dispatcher over an invoker, a slot pool, a
// payload allocator and a network stack. The resolve registry charges
// the same allocator the payload buffers come from.
func NewDispatcher(inv api.Invoker, pool api.SlotPool, alloc api.Allocator, stack api.NetStack, opts Options) *Dispatcher {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	log := opts.Logger
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	d := &Dispatcher{
		inv:   inv,
		pool:  pool,
		alloc: alloc,
		table: newHandlerTable(stack, netstack.NewResolveRegistry(alloc)),
		exec:  concurrency.NewExecutor(workers),
		log:   log.WithField("component", "skel"),
		obs:   opts.Observer,
	}
	d.state.Store(int32(api.DrainUnknown))
	return d
}

// Run announces readiness to the peer and serves doorbells until the
// context ends. It owns the drain role; call it from exactly one
// goroutine.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.startedAt = time.Now()
	if err := d.ready(ctx); err != nil {
		d.state.Store(int32(api.DrainStopped))
		return err
	}
	d.log.Info("dispatcher ready, entering drain loop")
	defer d.state.Store(int32(api.DrainStopped))
	for {
		d.state.Store(int32(api.DrainWaiting))
		select {
		case <-ctx.Done():
			d.exec.Close()
			return ctx.Err()
		case <-d.inv.Doorbell():
			d.doorbells.Add(1)
		}
		d.state.Store(int32(api.DrainActive))
		if err := d.drain(ctx); err != nil {
			d.exec.Close()
			return err
		}
	}
}

// ready performs the one-time readiness handshake with a pooled
// descriptor.
func (d *Dispatcher) ready(ctx context.Context) error {
	slot, err := d.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer d.pool.Release(slot)
	slot.Phase = protocol.PhaseReady
	st, err := d.inv.Invoke(ctx, slot)
	if err != nil {
		return fmt.Errorf("ready handshake: %w", err)
	}
	if st != protocol.StatusOK {
		return fmt.Errorf("ready handshake: unexpected status %v", st)
	}
	return nil
}

// drain pulls pending operations until the peer reports none. Each
// fetched descriptor is handed to the worker pool and a fresh slot is
// acquired to keep pulling; spurious doorbells simply find nothing.
func (d *Dispatcher) drain(ctx context.Context) error {
	for {
		slot, err := d.pool.Acquire(ctx)
		if err != nil {
			return err
		}
		slot.Phase = protocol.PhaseGetOp
		st, err := d.inv.Invoke(ctx, slot)
		if err != nil {
			d.pool.Release(slot)
			return fmt.Errorf("get-op: %w", err)
		}
		switch st {
		case protocol.StatusNoPending:
			d.pool.Release(slot)
			return nil
		case protocol.StatusOK:
			d.opsFetched.Add(1)
			if err := d.exec.Submit(func() { d.execute(ctx, slot) }); err != nil {
				d.pool.Release(slot)
				return err
			}
		default:
			d.pool.Release(slot)
			return fmt.Errorf("get-op: unexpected status %v", st)
		}
	}
}

// execute runs one fetched operation on a worker. The slot is
// released here exactly once, on every path.
func (d *Dispatcher) execute(ctx context.Context, slot *protocol.Descriptor) {
	defer d.pool.Release(slot)

	plan, ok := PlanFor(slot.Op)
	handler := HandlerFunc(nil)
	if ok {
		handler = d.table[slot.Op]
	}
	if handler == nil {
		// Codes outside the table are dropped without an answer;
		// the peer owns the consequences of sending garbage.
		d.opsDropped.Add(1)
		d.log.WithField("op", slot.Op.String()).Warn("dropping unknown operation code")
		if d.obs.OnDrop != nil {
			d.obs.OnDrop(api.DropEvent{Op: slot.Op})
		}
		return
	}

	req := newRequest(d.inv, d.alloc, slot, plan)
	defer req.close()
	op := slot.Op
	handler(ctx, req)
	if req.err != nil {
		d.log.WithField("op", op.String()).WithError(req.err).Error("operation failed at the boundary")
		return
	}
	d.opsCompleted.Add(1)
	if d.obs.OnOp != nil {
		d.obs.OnOp(api.OpEvent{Op: op, Result: req.result})
	}
}

// State reports the drain loop's current state.
func (d *Dispatcher) State() api.DrainState {
	return api.DrainState(d.state.Load())
}

// Stats returns a snapshot of dispatcher counters.
func (d *Dispatcher) Stats() api.DispatcherStats {
	var inv uint64
	if c, ok := d.inv.(interface{ Invocations() uint64 }); ok {
		inv = c.Invocations()
	}
	return api.DispatcherStats{
		OpsFetched:   d.opsFetched.Load(),
		OpsCompleted: d.opsCompleted.Load(),
		OpsDropped:   d.opsDropped.Load(),
		Invocations:  inv,
		Doorbells:    d.doorbells.Load(),
		StartedAt:    d.startedAt,
	}
}

// Workers reports the executor pool size.
func (d *Dispatcher) Workers() int { return d.exec.NumWorkers() }
