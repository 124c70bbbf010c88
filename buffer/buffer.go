package buffer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Defaults applied when the corresponding option is absent.
const (
	// DefaultCapacity is the number of entries each channel retains.
	DefaultCapacity = 8

	// DefaultQueueDepth is the number of pending insert jobs the worker
	// queue holds before evicting the oldest.
	DefaultQueueDepth = 64
)

// NoLimit disables the tolerance check on ReadLast and ReadAt.
const NoLimit = ^uint64(0)

// Result is the per-channel outcome of a joint read. OK false means the
// channel had no acceptable entry; that is expected, common output for
// consumers, not a failure.
type Result struct {
	// Value is the stored output value, nil when OK is false.
	Value any
	// Timestamp is the entry's payload timestamp, 0 when OK is false.
	Timestamp uint64
	// OK reports whether the channel produced a value for this read.
	OK bool
}

// Buffer is a thread-safe, multi-channel, time-synchronized circular buffer.
// N independent producers write timestamped values, each on its own typed
// channel, while consumers read (without consuming) the value nearest a
// requested timestamp, per channel or jointly across channels.
//
// One background worker per Buffer performs every transform+insert, so the
// global insertion order across channels is deterministic. Reads take a
// shared lock; they never wait on the worker or on pending inserts.
//
// All channel stores sit behind one lock, deliberately: ReadLast compares
// each channel's last write time against the global maximum, and that
// comparison is only meaningful inside a single atomic view of every
// channel. Per-channel locks would break it.
type Buffer struct {
	mu        sync.RWMutex
	slots     []slot
	lastWrite []int64 // write-clock nanos of each channel's latest insert

	hasData atomic.Bool // hint: at least one channel is non-empty
	sealed  atomic.Bool // set on first put/read; Attach refused afterwards

	capacity   int
	queueDepth int
	worker     *worker

	now func() time.Time // injectable for deterministic tests
}

// Option configures a Buffer under construction.
type Option func(*Buffer)

// WithCapacity sets the per-channel entry capacity, shared by all channels.
func WithCapacity(n int) Option {
	return func(b *Buffer) { b.capacity = n }
}

// WithQueueDepth sets how many insert jobs may be pending on the worker
// before the oldest pending job is evicted.
func WithQueueDepth(n int) Option {
	return func(b *Buffer) { b.queueDepth = n }
}

// New creates a Buffer with no channels. Channels are declared with Attach
// before the buffer is first used and live for the buffer's lifetime.
func New(opts ...Option) (*Buffer, error) {
	b := &Buffer{
		capacity:   DefaultCapacity,
		queueDepth: DefaultQueueDepth,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.capacity <= 0 {
		return nil, fmt.Errorf("buffer: %w: capacity must be positive, got %d",
			ErrConfiguration, b.capacity)
	}
	if b.queueDepth <= 0 {
		return nil, fmt.Errorf("buffer: %w: queue depth must be positive, got %d",
			ErrConfiguration, b.queueDepth)
	}
	b.worker = newWorker(b.queueDepth)
	return b, nil
}

// Close stops accepting new inserts, drains the jobs already queued, and
// blocks until the worker goroutine has exited. Put calls made after Close
// return false and insert nothing. Close is idempotent and never returns a
// non-nil error today.
func (b *Buffer) Close() error {
	b.worker.close()
	return nil
}

// Flush blocks until every insert enqueued before the call has been applied
// (or dropped by queue eviction). It is the drain barrier that makes a
// put-then-read sequence deterministic.
func (b *Buffer) Flush() {
	b.worker.flush()
}

// Channels returns the number of attached channels.
func (b *Buffer) Channels() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.slots)
}

// Len returns the number of entries currently retained by channel,
// or 0 for an out-of-range index.
func (b *Buffer) Len(channel int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if channel < 0 || channel >= len(b.slots) {
		return 0
	}
	return b.slots[channel].size()
}

// ReadFirst returns each selected channel's oldest retained entry, ignoring
// timestamps. No cross-channel consistency is guaranteed; channels may be
// out of phase. An empty channel list selects all channels. Entries are not
// consumed.
func (b *Buffer) ReadFirst(channels ...int) []Result {
	b.sealed.Store(true)
	idxs := b.indexes(channels)
	res := make([]Result, len(idxs))
	if !b.hasData.Load() {
		return res
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for i, idx := range idxs {
		if idx < 0 || idx >= len(b.slots) {
			continue
		}
		if v, ts, ok := b.slots[idx].first(); ok {
			res[i] = Result{Value: v, Timestamp: ts, OK: true}
		}
	}
	b.refreshHintLocked()
	return res
}

// ReadLast returns each selected channel's newest entry, gated by write-time
// recency: a channel qualifies only when globalMax - lastWrite[c] < maxDiff,
// where globalMax is the most recent write time across all channels (not
// just the selected ones). The comparison uses the internal write clock in
// nanoseconds, never payload timestamps, so a channel that has fallen stale
// relative to the most recently updated channel yields no value. Pass
// NoLimit to accept any non-empty channel.
func (b *Buffer) ReadLast(maxDiff uint64, channels ...int) []Result {
	b.sealed.Store(true)
	idxs := b.indexes(channels)
	res := make([]Result, len(idxs))
	if !b.hasData.Load() {
		return res
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	var globalMax int64
	for _, lw := range b.lastWrite {
		if lw > globalMax {
			globalMax = lw
		}
	}
	for i, idx := range idxs {
		if idx < 0 || idx >= len(b.slots) {
			continue
		}
		v, ts, ok := b.slots[idx].last()
		if ok && uint64(globalMax-b.lastWrite[idx]) < maxDiff {
			res[i] = Result{Value: v, Timestamp: ts, OK: true}
		}
	}
	b.refreshHintLocked()
	return res
}

// ReadAt returns, per selected channel, the entry whose payload timestamp is
// nearest to ts. The search minimizes the absolute distance, but the
// tolerance check is one-directional on purpose: the winner is accepted only
// when ts - entry.Timestamp <= maxDiff in unsigned arithmetic. An entry
// newer than ts makes that difference wrap enormous, so entries newer than
// the query are never accepted under a finite tolerance. This asymmetry is a
// documented contract, relied on by callers that must not see future data.
func (b *Buffer) ReadAt(ts, maxDiff uint64, channels ...int) []Result {
	b.sealed.Store(true)
	idxs := b.indexes(channels)
	res := make([]Result, len(idxs))
	if !b.hasData.Load() {
		return res
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for i, idx := range idxs {
		if idx < 0 || idx >= len(b.slots) {
			continue
		}
		v, ets, ok := b.slots[idx].nearest(ts)
		if ok && ts-ets <= maxDiff {
			res[i] = Result{Value: v, Timestamp: ets, OK: true}
		}
	}
	b.refreshHintLocked()
	return res
}

// indexes expands an empty selection to all channels.
func (b *Buffer) indexes(channels []int) []int {
	if len(channels) > 0 {
		return channels
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	all := make([]int, len(b.slots))
	for i := range all {
		all[i] = i
	}
	return all
}

// refreshHintLocked clears the has-data hint when every channel is empty.
// Callers hold at least the read lock, so a concurrent insert cannot be
// missed: inserts take the write lock and set the hint afterwards.
func (b *Buffer) refreshHintLocked() {
	for _, s := range b.slots {
		if !s.isEmpty() {
			return
		}
	}
	b.hasData.Store(false)
}
