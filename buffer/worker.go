package buffer

import (
	"log/slog"
	"sync"
)

// worker is the single background goroutine that executes every queued
// transform+insert job for one Buffer. One worker per Buffer serializes
// insertion across all channels, which gives ReadLast a well-defined global
// insertion order to compare write times against.
//
// The job queue is bounded. When it is full, enqueue evicts the oldest
// pending job to make room for the newest, the same keep-the-freshest policy
// a full snapshot buffer uses. An evicted job never runs; its value is lost.
type worker struct {
	jobs chan func()
	wg   sync.WaitGroup

	mu        sync.Mutex
	cond      *sync.Cond
	closed    bool
	enqueued  uint64 // jobs accepted by enqueue
	completed uint64 // jobs run, panicked, or evicted unrun
}

func newWorker(depth int) *worker {
	w := &worker{jobs: make(chan func(), depth)}
	w.cond = sync.NewCond(&w.mu)
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *worker) run() {
	defer w.wg.Done()
	for job := range w.jobs {
		w.runOne(job)
		w.mu.Lock()
		w.completed++
		w.cond.Broadcast()
		w.mu.Unlock()
	}
}

// runOne isolates a job so a panicking transform cannot kill the worker;
// one failing job must not prevent subsequent jobs from running.
func (w *worker) runOne(job func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("buffer: insert job panicked, value dropped", "panic", r)
		}
	}()
	job()
}

// enqueue schedules a job and reports whether it was accepted. It never
// blocks the caller: a full queue evicts the oldest pending job instead.
// After close, jobs are refused and false is returned.
func (w *worker) enqueue(job func()) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}
	for {
		select {
		case w.jobs <- job:
			w.enqueued++
			return true
		default:
		}
		// Queue full. Evict the oldest pending job; it counts as completed
		// so drain barriers do not wait for it.
		select {
		case <-w.jobs:
			w.completed++
			w.cond.Broadcast()
			slog.Warn("buffer: job queue full, evicted oldest pending insert",
				"depth", cap(w.jobs))
		default:
			// The worker consumed a job between the two selects; retry.
		}
	}
}

// flush blocks until every job enqueued before the call has completed
// (run, panicked, or been evicted). It returns immediately on a closed,
// drained worker.
func (w *worker) flush() {
	w.mu.Lock()
	target := w.enqueued
	for w.completed < target {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

// close stops accepting jobs, lets the worker drain what is already queued,
// and blocks until the goroutine exits. Safe to call more than once.
func (w *worker) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.wg.Wait()
		return
	}
	w.closed = true
	close(w.jobs)
	w.mu.Unlock()
	w.wg.Wait()
}
