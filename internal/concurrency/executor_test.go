package concurrency_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/netskel/internal/concurrency"
)

func TestExecutorRunsSubmittedTasks(t *testing.T) {
	e := concurrency.NewExecutor(2)
	defer e.Close()

	var n atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		if err := e.Submit(func() {
			n.Add(1)
			wg.Done()
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()
	if n.Load() != 100 {
		t.Fatalf("ran %d tasks, want 100", n.Load())
	}
}

func TestExecutorSubmitAfterClose(t *testing.T) {
	e := concurrency.NewExecutor(1)
	e.Close()
	if err := e.Submit(func() {}); err != concurrency.ErrExecutorClosed {
		t.Fatalf("Submit after Close: %v", err)
	}
}

func TestExecutorResize(t *testing.T) {
	e := concurrency.NewExecutor(1)
	defer e.Close()

	e.Resize(4)
	if n := e.NumWorkers(); n != 4 {
		t.Fatalf("workers after grow: %d", n)
	}
	e.Resize(2)
	if n := e.NumWorkers(); n != 2 {
		t.Fatalf("workers after shrink: %d", n)
	}

	// The shrunken pool must still run tasks.
	done := make(chan struct{})
	if err := e.Submit(func() { close(done) }); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run after shrink")
	}
}

func TestExecutorBlockingSubmitDrains(t *testing.T) {
	e := concurrency.NewExecutor(1)
	defer e.Close()

	// Saturate with slow tasks, then verify every submit lands.
	var n atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 256; i++ {
		wg.Add(1)
		if err := e.Submit(func() {
			time.Sleep(time.Microsecond)
			n.Add(1)
			wg.Done()
		}); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}
	wg.Wait()
	if n.Load() != 256 {
		t.Fatalf("ran %d tasks, want 256", n.Load())
	}
}

func TestLockFreeQueueOrderAndCapacity(t *testing.T) {
	q := concurrency.NewLockFreeQueue[int](4)
	for i := 0; i < 4; i++ {
		if !q.Enqueue(i) {
			t.Fatalf("Enqueue %d refused", i)
		}
	}
	if q.Enqueue(99) {
		t.Fatal("Enqueue into full queue succeeded")
	}
	for i := 0; i < 4; i++ {
		v, ok := q.Dequeue()
		if !ok || v != i {
			t.Fatalf("Dequeue = (%d, %v), want (%d, true)", v, ok, i)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue from empty queue succeeded")
	}
}

func TestLockFreeQueueConcurrent(t *testing.T) {
	q := concurrency.NewLockFreeQueue[int](1024)
	var produced, consumed atomic.Int64
	var wg sync.WaitGroup

	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				for !q.Enqueue(i) {
					time.Sleep(time.Microsecond)
				}
				produced.Add(1)
			}
		}()
	}
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for consumed.Load() < 4000 {
				if _, ok := q.Dequeue(); ok {
					consumed.Add(1)
				} else {
					time.Sleep(time.Microsecond)
				}
			}
		}()
	}
	wg.Wait()
	if produced.Load() != 4000 || consumed.Load() != 4000 {
		t.Fatalf("produced=%d consumed=%d", produced.Load(), consumed.Load())
	}
}
