package buffer

import (
	"fmt"
	"log/slog"
)

// Channel is a typed handle bound to one slot of a Buffer. It is the only
// way to write, and the convenient way to read a single channel without
// asserting types out of a Result.
//
// I is the producer's input type, O the stored output type. How I becomes O
// is settled when the channel is attached; see Attach.
type Channel[I, O any] struct {
	buf       *Buffer
	idx       int
	store     *store[O]
	tier      tier
	transform Transform[I, O]
}

// ChannelOption configures a channel at Attach time.
type ChannelOption[I, O any] func(*channelConfig[I, O])

type channelConfig[I, O any] struct {
	transform Transform[I, O]
}

// WithTransform supplies the conversion function for type pairs that cannot
// convert on their own. On pairs that convert implicitly (identical,
// assignable, or numeric types, and slices thereof) the function is ignored.
func WithTransform[I, O any](fn Transform[I, O]) ChannelOption[I, O] {
	return func(cfg *channelConfig[I, O]) { cfg.transform = fn }
}

// Attach declares a new channel on b and returns its typed handle. Channels
// are created before the buffer is first used and are never destroyed; an
// Attach after the first Put or read fails with ErrSealed.
//
// Attach resolves how I converts to O, in order: identity or implicit
// conversion; element-wise conversion for slice pairs with convertible
// element types; otherwise a WithTransform function is mandatory and its
// absence fails with ErrMissingTransform.
func Attach[I, O any](b *Buffer, opts ...ChannelOption[I, O]) (*Channel[I, O], error) {
	if b.sealed.Load() {
		return nil, fmt.Errorf("buffer: attach %s channel: %w",
			typeOf[O](), ErrSealed)
	}

	cfg := &channelConfig[I, O]{}
	for _, opt := range opts {
		opt(cfg)
	}

	t := resolveTier[I, O]()
	if t == tierFunc && cfg.transform == nil {
		return nil, fmt.Errorf("buffer: attach: no conversion from %s to %s: %w",
			typeOf[I](), typeOf[O](), ErrMissingTransform)
	}

	st := newStore[O](b.capacity)
	b.mu.Lock()
	idx := len(b.slots)
	b.slots = append(b.slots, st)
	b.lastWrite = append(b.lastWrite, 0)
	b.mu.Unlock()

	return &Channel[I, O]{
		buf:       b,
		idx:       idx,
		store:     st,
		tier:      t,
		transform: cfg.transform,
	}, nil
}

// Index returns the channel's position in the buffer, for use with the
// joint read methods' channel selections.
func (c *Channel[I, O]) Index() int { return c.idx }

// Put schedules (v, ts) for insertion and returns immediately. The
// transform and the insert run on the buffer's worker goroutine; the caller
// never contends on the buffer lock. The return value is true whenever the
// job was accepted, which today is always the case unless the buffer has
// been closed. Callers that only check truthiness stay compatible if the
// result ever grows richer.
func (c *Channel[I, O]) Put(v I, ts uint64) bool {
	return c.put(v, ts, c.transform)
}

// PutFunc is Put with a call-specific transform, which may close over state
// unique to this value. On channels whose types convert implicitly, fn is
// ignored, same as the Attach-time transform.
func (c *Channel[I, O]) PutFunc(v I, ts uint64, fn Transform[I, O]) bool {
	return c.put(v, ts, fn)
}

func (c *Channel[I, O]) put(v I, ts uint64, fn Transform[I, O]) bool {
	b := c.buf
	b.sealed.Store(true)
	return b.worker.enqueue(func() {
		out, err := convert(c.tier, v, fn)
		if err != nil {
			// The job is dropped; the worker moves on to the next one.
			slog.Warn("buffer: transform failed, value dropped",
				"channel", c.idx, "err", err)
			return
		}
		b.mu.Lock()
		b.lastWrite[c.idx] = b.now().UnixNano()
		c.store.insert(out, ts)
		b.hasData.Store(true)
		b.mu.Unlock()
	})
}

// First returns this channel's oldest retained entry. See Buffer.ReadFirst.
func (c *Channel[I, O]) First() (O, uint64, bool) {
	return typed[O](c.buf.ReadFirst(c.idx)[0])
}

// Last returns this channel's newest entry, gated by write-time recency
// against the buffer's most recently written channel. See Buffer.ReadLast.
func (c *Channel[I, O]) Last(maxDiff uint64) (O, uint64, bool) {
	return typed[O](c.buf.ReadLast(maxDiff, c.idx)[0])
}

// At returns this channel's entry nearest to ts within maxDiff.
// See Buffer.ReadAt for the tolerance asymmetry.
func (c *Channel[I, O]) At(ts, maxDiff uint64) (O, uint64, bool) {
	return typed[O](c.buf.ReadAt(ts, maxDiff, c.idx)[0])
}

func typed[O any](r Result) (O, uint64, bool) {
	if !r.OK {
		var zero O
		return zero, 0, false
	}
	return r.Value.(O), r.Timestamp, true
}
