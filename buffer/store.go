package buffer

import "fmt"

// entry is one stored (value, timestamp) pair. The timestamp is the
// caller-supplied payload timestamp, an opaque unit used only for distance
// comparisons. It is not required to be monotonic across entries.
type entry[O any] struct {
	value O
	ts    uint64
}

// slot is the type-erased read-side view of one channel's store. All methods
// must be called with the owning Buffer's lock held; the store itself holds
// no lock.
type slot interface {
	// first returns the oldest retained entry.
	first() (any, uint64, bool)
	// last returns the newest retained entry.
	last() (any, uint64, bool)
	// nearest returns the entry minimizing the absolute distance between
	// its payload timestamp and ts. Ties go to the earlier entry.
	nearest(ts uint64) (any, uint64, bool)
	// at returns the i-th oldest entry, for diagnostics.
	at(i int) (any, uint64, bool)
	size() int
	isEmpty() bool
}

// store is one channel's bounded ordered sequence of entries, oldest first.
// Insertion evicts the head when the store is at capacity: pure FIFO by
// insertion order, never by payload timestamp.
type store[O any] struct {
	entries []entry[O]
	max     int
}

func newStore[O any](capacity int) *store[O] {
	return &store[O]{
		entries: make([]entry[O], 0, capacity),
		max:     capacity,
	}
}

// insert appends (v, ts) at the tail, evicting the oldest entry first if the
// store is full.
func (s *store[O]) insert(v O, ts uint64) {
	if len(s.entries)+1 > s.max {
		s.entries = s.entries[1:]
	}
	s.entries = append(s.entries, entry[O]{value: v, ts: ts})
}

func (s *store[O]) first() (any, uint64, bool) {
	if len(s.entries) == 0 {
		return nil, 0, false
	}
	e := s.entries[0]
	return e.value, e.ts, true
}

func (s *store[O]) last() (any, uint64, bool) {
	if len(s.entries) == 0 {
		return nil, 0, false
	}
	e := s.entries[len(s.entries)-1]
	return e.value, e.ts, true
}

func (s *store[O]) nearest(ts uint64) (any, uint64, bool) {
	if len(s.entries) == 0 {
		return nil, 0, false
	}
	best := 0
	bestDiff := absDiff(s.entries[0].ts, ts)
	for i := 1; i < len(s.entries); i++ {
		if d := absDiff(s.entries[i].ts, ts); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	e := s.entries[best]
	return e.value, e.ts, true
}

func (s *store[O]) at(i int) (any, uint64, bool) {
	if i < 0 || i >= len(s.entries) {
		return nil, 0, false
	}
	e := s.entries[i]
	return e.value, e.ts, true
}

func (s *store[O]) size() int { return len(s.entries) }

func (s *store[O]) isEmpty() bool { return len(s.entries) == 0 }

// absDiff returns |a - b| without overflow for any pair of uint64 values.
func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

// compile-time interface check
var _ slot = (*store[int])(nil)

// formatValue renders a stored value for Dump output, truncating long values
// so one row stays one line.
func formatValue(v any) string {
	s := fmt.Sprintf("%v", v)
	const maxLen = 24
	if len(s) > maxLen {
		return s[:maxLen-1] + "…"
	}
	return s
}
