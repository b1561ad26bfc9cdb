// Package topk implements a stateful top-K operator: an ordered sequence
// of the current positively-weighted records backed by
// github.com/google/btree, a key→position lookup for O(log n) update,
// and a previously-emitted snapshot so ProcessIncrement can emit exactly
// new_topK − previous_topK rather than the whole top-K on every call.
package topk

import (
	"sort"

	"github.com/google/btree"

	"github.com/streamhouse/dbsp/internal/telemetry"
	"github.com/streamhouse/dbsp/zset"
)

type item[T any] struct {
	key    string
	value  T
	weight int64
	seq    int64
}

// StatefulTopK maintains the top [offset, offset+limit) records of a
// stream of upserts/retractions under a total order, emitting the delta
// between consecutive top-K snapshots.
type StatefulTopK[T any] struct {
	less   func(a, b T) bool
	zkeyFn zset.KeyFunc[T]

	tree  *btree.BTreeG[item[T]]
	byKey map[string]item[T]
	seq   int64

	offset, limit int

	previousEmitted *zset.ZSet[T]

	log telemetry.Logger
}

// New builds a StatefulTopK ranking records with less (true when a
// should rank ahead of b) and returning the records in [offset,
// offset+limit). Ties break by stable insertion order, matching
// sort.SliceStable semantics.
func New[T any](less func(a, b T) bool, zkeyFn zset.KeyFunc[T], offset, limit int, log telemetry.Logger) *StatefulTopK[T] {
	if log == nil {
		log = telemetry.NewNop()
	}
	k := &StatefulTopK[T]{
		less:            less,
		zkeyFn:          zkeyFn,
		byKey:           make(map[string]item[T]),
		offset:          offset,
		limit:           limit,
		previousEmitted: zset.New(zkeyFn),
		log:             log,
	}
	k.tree = btree.NewG(32, k.treeLess)
	return k
}

func (k *StatefulTopK[T]) treeLess(a, b item[T]) bool {
	if k.less(a.value, b.value) {
		return true
	}
	if k.less(b.value, a.value) {
		return false
	}
	return a.seq < b.seq
}

// ProcessIncrement applies delta to the maintained state (insertions,
// weight updates, and retractions) and returns new_topK − previous_topK:
//  1. fold delta into the ordered sequence and the key→item index
//  2. walk the sequence to gather the current [offset, offset+limit) window
//  3. canonicalize that window into a weight-1 Z-set
//  4. emit the difference against the previously emitted window
func (k *StatefulTopK[T]) ProcessIncrement(delta *zset.ZSet[T]) (*zset.ZSet[T], error) {
	// Step 1.
	for _, e := range delta.Entries() {
		if err := k.applyOne(e.Value, e.Weight); err != nil {
			return nil, err
		}
	}

	return k.emitWindow()
}

// ProcessInitial is the bulk-init fast path: rather than folding each
// record of a large initial load in one at a time (each an O(log n) tree
// insert against a growing tree), it sorts the whole batch once and
// bulk-loads the btree in a single ascending pass. Used when the operator
// is being seeded from a full snapshot rather than an incremental delta.
func (k *StatefulTopK[T]) ProcessInitial(initial *zset.ZSet[T]) (*zset.ZSet[T], error) {
	k.Reset()

	entries := initial.Entries()
	sorted := make([]item[T], 0, len(entries))
	for _, e := range entries {
		if e.Weight <= 0 {
			continue
		}
		k.seq++
		sorted = append(sorted, item[T]{key: k.zkeyFn(e.Value), value: e.Value, weight: e.Weight, seq: k.seq})
	}
	sort.SliceStable(sorted, func(i, j int) bool { return k.treeLess(sorted[i], sorted[j]) })

	for _, it := range sorted {
		k.tree.ReplaceOrInsert(it)
		k.byKey[it.key] = it
	}

	return k.emitWindow()
}

func (k *StatefulTopK[T]) applyOne(value T, weight int64) error {
	key := k.zkeyFn(value)
	existing, ok := k.byKey[key]

	if !ok {
		if weight <= 0 {
			return nil
		}
		k.seq++
		it := item[T]{key: key, value: value, weight: weight, seq: k.seq}
		k.tree.ReplaceOrInsert(it)
		k.byKey[key] = it
		return nil
	}

	k.tree.Delete(existing)
	newWeight := existing.weight + weight
	if newWeight <= 0 {
		delete(k.byKey, key)
		return nil
	}
	updated := item[T]{key: key, value: value, weight: newWeight, seq: existing.seq}
	k.tree.ReplaceOrInsert(updated)
	k.byKey[key] = updated
	return nil
}

func (k *StatefulTopK[T]) emitWindow() (*zset.ZSet[T], error) {
	window := zset.New[T](k.zkeyFn)
	i := 0
	k.tree.Ascend(func(it item[T]) bool {
		if it.weight <= 0 {
			i++
			return true
		}
		if i >= k.offset && i < k.offset+k.limit {
			window.ForceSet(it.value, 1)
		}
		i++
		return i < k.offset+k.limit
	})

	delta, err := window.Subtract(k.previousEmitted)
	if err != nil {
		return nil, err
	}
	k.previousEmitted = window
	return delta, nil
}

// GetCurrentWindow returns the currently emitted top-K snapshot (not a
// delta).
func (k *StatefulTopK[T]) GetCurrentWindow() *zset.ZSet[T] {
	return k.previousEmitted.Clone()
}

// Reset clears all maintained state, returning the operator to its
// initial condition.
func (k *StatefulTopK[T]) Reset() {
	k.tree = btree.NewG(32, k.treeLess)
	k.byKey = make(map[string]item[T])
	k.seq = 0
	k.previousEmitted = zset.New(k.zkeyFn)
	k.log.Info("top-k reset")
}
