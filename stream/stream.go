package stream

import "sort"

// Stream is a sparse, total function ℕ → A with finite support: a time
// index with no value set is understood to hold the group's zero
// element.
type Stream[A any] struct {
	group   Group[A]
	entries map[int]A
}

// New returns the empty stream over group.
func New[A any](group Group[A]) *Stream[A] {
	return &Stream[A]{group: group, entries: make(map[int]A)}
}

// Group exposes the witness this stream was built with, so operators can
// build derived streams over the same group without the caller having to
// pass it again.
func (s *Stream[A]) Group() Group[A] { return s.group }

// At returns the value at time t, or the group's zero element if t has
// no explicit entry.
func (s *Stream[A]) At(t int) A {
	if v, ok := s.entries[t]; ok {
		return v
	}
	return s.group.Zero()
}

// Set assigns the value at time t. Times are expected to be set in
// non-decreasing order by the circuit driving the stream, but Set itself
// does not enforce that — it is a pure container operation.
func (s *Stream[A]) Set(t int, v A) {
	s.entries[t] = v
}

// CurrentTime returns one past the greatest time index with an explicit
// entry, or 0 for the empty stream: the index at which the next value
// would be set.
func (s *Stream[A]) CurrentTime() int {
	last := s.maxSetTime()
	if last < 0 {
		return 0
	}
	return last + 1
}

// maxSetTime returns the greatest time index with an explicit entry, or
// -1 for the empty stream. Unlike CurrentTime, this is the quantity
// Integrate/Differentiate need: the last index actually present, not one
// past it.
func (s *Stream[A]) maxSetTime() int {
	max := -1
	for t := range s.entries {
		if t > max {
			max = t
		}
	}
	return max
}

// Times returns every explicit time index in increasing order.
func (s *Stream[A]) Times() []int {
	ts := make([]int, 0, len(s.entries))
	for t := range s.entries {
		ts = append(ts, t)
	}
	sort.Ints(ts)
	return ts
}

// Entry is the public (time, value) view of one explicit stream entry.
type Entry[A any] struct {
	Time  int
	Value A
}

// Entries returns every explicit (time, value) entry, ordered by
// increasing time.
func (s *Stream[A]) Entries() []Entry[A] {
	out := make([]Entry[A], 0, len(s.entries))
	for _, t := range s.Times() {
		out = append(out, Entry[A]{Time: t, Value: s.entries[t]})
	}
	return out
}
