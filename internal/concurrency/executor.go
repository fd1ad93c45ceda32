// File: internal/concurrency/executor.go
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor dispatches operation tasks across worker goroutines over one
// shared lock-free queue. Submit blocks while the queue is saturated so
// no accepted operation is ever dropped. Worker panics are not caught:
// a task that panics reports a broken boundary contract and must take
// the process down.

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/netskel/api"
)

type TaskFunc func()

const idleParkDelay = time.Millisecond

// Executor manages a pool of worker goroutines.
type Executor struct {
	queue  *LockFreeQueue[TaskFunc]
	closed atomic.Bool
	stopCh chan struct{}

	mu      sync.Mutex
	workers []*worker
	wg      sync.WaitGroup
}

var _ api.Executor = (*Executor)(nil)

// NewExecutor creates a new Executor with the given number of workers.
func NewExecutor(numWorkers int) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	e := &Executor{
		queue:  NewLockFreeQueue[TaskFunc](numWorkers * 64),
		stopCh: make(chan struct{}),
	}
	e.mu.Lock()
	for i := 0; i < numWorkers; i++ {
		e.spawnLocked(i)
	}
	e.mu.Unlock()
	return e
}

func (e *Executor) spawnLocked(id int) {
	w := &worker{
		id:        id,
		executor:  e,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
	e.workers = append(e.workers, w)
	e.wg.Add(1)
	go w.run(&e.wg)
}

// Submit enqueues a task, parking briefly while the queue is full.
// Returns an error only once the executor is closed.
func (e *Executor) Submit(task func()) error {
	for {
		if e.closed.Load() {
			return ErrExecutorClosed
		}
		if e.queue.Enqueue(task) {
			return nil
		}
		select {
		case <-e.stopCh:
			return ErrExecutorClosed
		case <-time.After(idleParkDelay):
		}
	}
}

// Resize dynamically scales the worker pool. Shrinking waits for the
// surplus workers to finish their current task and exit.
func (e *Executor) Resize(newCount int) {
	if newCount <= 0 {
		newCount = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		return
	}
	current := len(e.workers)
	for i := current; i < newCount; i++ {
		e.spawnLocked(i)
	}
	if newCount < current {
		for i := newCount; i < current; i++ {
			close(e.workers[i].stopCh)
		}
		for i := newCount; i < current; i++ {
			<-e.workers[i].stoppedCh
		}
		e.workers = e.workers[:newCount]
	}
}

// Close shuts down the executor, waiting for workers to finish their
// current task. Tasks still queued are discarded.
func (e *Executor) Close() {
	if e.closed.CompareAndSwap(false, true) {
		close(e.stopCh)
		e.mu.Lock()
		for _, w := range e.workers {
			close(w.stopCh)
		}
		e.mu.Unlock()
		e.wg.Wait()
	}
}

// NumWorkers returns active worker count.
func (e *Executor) NumWorkers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.workers)
}

type worker struct {
	id        int
	executor  *Executor
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer func() {
		wg.Done()
		close(w.stoppedCh)
	}()
	for {
		select {
		case <-w.stopCh:
			return
		default:
		}
		if task, ok := w.executor.queue.Dequeue(); ok {
			task()
			continue
		}
		select {
		case <-w.stopCh:
			return
		case <-time.After(idleParkDelay):
		}
	}
}
