package buffer

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorker_RunsJobsInOrder(t *testing.T) {
	w := newWorker(16)
	defer w.close()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		w.enqueue(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	w.flush()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 10 {
		t.Fatalf("ran %d jobs, want 10", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d: jobs must run in enqueue order", i, v)
		}
	}
}

func TestWorker_FullQueueEvictsOldest(t *testing.T) {
	w := newWorker(2)

	// Block the worker so jobs pile up in the queue.
	gate := make(chan struct{})
	started := make(chan struct{})
	w.enqueue(func() { close(started); <-gate })
	<-started

	var ran [4]atomic.Bool
	for i := 0; i < 4; i++ {
		i := i
		w.enqueue(func() { ran[i].Store(true) })
	}
	close(gate)
	w.close()

	// Queue depth 2: of the four jobs, the oldest two were evicted unrun.
	if ran[0].Load() || ran[1].Load() {
		t.Error("oldest pending jobs should have been evicted")
	}
	if !ran[2].Load() || !ran[3].Load() {
		t.Error("newest pending jobs should have run")
	}
}

func TestWorker_FlushWaitsForEarlierJobs(t *testing.T) {
	w := newWorker(16)
	defer w.close()

	var done atomic.Bool
	w.enqueue(func() { done.Store(true) })
	w.flush()

	if !done.Load() {
		t.Error("flush returned before an earlier job completed")
	}
}

func TestWorker_EnqueueAfterCloseRefused(t *testing.T) {
	w := newWorker(4)
	w.close()

	if w.enqueue(func() {}) {
		t.Error("enqueue after close: expected false")
	}
}

func TestWorker_FlushAfterCloseReturns(t *testing.T) {
	w := newWorker(4)
	w.enqueue(func() {})
	w.close()
	w.flush() // must not hang
}
