// Package join implements a stateful equi-join: two persistent hash
// indexes keyed on the join key, maintained incrementally so that
// processing a pair of deltas costs O(|Δ| · k̄) — proportional to the
// delta size and the average number of matches per join key — rather
// than a full O(n·m) rescan on every timestep.
package join

import (
	"github.com/streamhouse/dbsp/internal/dbsperrors"
	"github.com/streamhouse/dbsp/internal/telemetry"
	"github.com/streamhouse/dbsp/zset"
)

// side is one persistent hash index: join key → (record key → weighted
// value), matching the index_A / index_B structure of a two-sided
// hash join.
type side[T any] struct {
	byJoinKey map[string]map[string]zset.Entry[T]
}

func newSide[T any]() *side[T] {
	return &side[T]{byJoinKey: make(map[string]map[string]zset.Entry[T])}
}

func (s *side[T]) bucket(joinKey string) map[string]zset.Entry[T] {
	return s.byJoinKey[joinKey]
}

// apply folds one delta entry into the index, pruning the bucket (and
// the outer map entry) when a weight reaches zero.
func (s *side[T]) apply(joinKey, recordKey string, e zset.Entry[T]) error {
	bucket, ok := s.byJoinKey[joinKey]
	if !ok {
		bucket = make(map[string]zset.Entry[T])
		s.byJoinKey[joinKey] = bucket
	}
	existing, ok := bucket[recordKey]
	if !ok {
		bucket[recordKey] = e
	} else {
		sum, err := dbsperrors.AddWeights("join.index", existing.Weight, e.Weight)
		if err != nil {
			return err
		}
		if sum == 0 {
			delete(bucket, recordKey)
		} else {
			bucket[recordKey] = zset.Entry[T]{Value: e.Value, Weight: sum}
		}
	}
	if len(s.byJoinKey[joinKey]) == 0 {
		delete(s.byJoinKey, joinKey)
	}
	return nil
}

// StatefulJoin maintains the persistent indexes and materialized view for
// an incremental equi-join between a stream of T records and a stream of
// U records sharing a join key K.
type StatefulJoin[T, U any, K comparable] struct {
	keyA func(T) K
	keyB func(U) K
	joinKeyStr func(K) string

	zkeyA   zset.KeyFunc[T]
	zkeyB   zset.KeyFunc[U]
	pairKey zset.KeyFunc[zset.Pair[T, U]]

	indexA *side[T]
	indexB *side[U]
	view   *zset.ZSet[zset.Pair[T, U]]

	log telemetry.Logger
}

// New builds a StatefulJoin. keyA/keyB extract the join key from each
// side; joinKeyStr renders K as a canonical string for indexing (pass a
// plain identity function when K is already string-like).
func New[T, U any, K comparable](
	keyA func(T) K, keyB func(U) K, joinKeyStr func(K) string,
	zkeyA zset.KeyFunc[T], zkeyB zset.KeyFunc[U], pairKey zset.KeyFunc[zset.Pair[T, U]],
	log telemetry.Logger,
) *StatefulJoin[T, U, K] {
	if log == nil {
		log = telemetry.NewNop()
	}
	return &StatefulJoin[T, U, K]{
		keyA:       keyA,
		keyB:       keyB,
		joinKeyStr: joinKeyStr,
		zkeyA:      zkeyA,
		zkeyB:      zkeyB,
		pairKey:    pairKey,
		indexA:     newSide[T](),
		indexB:     newSide[U](),
		view:       zset.New(pairKey),
		log:        log,
	}
}

// ProcessIncrement applies one pair of incoming deltas and returns the
// resulting delta to the join's output:
//  1. ΔA ⋈ index_B(before update) contributes ΔA⋈I(B)
//  2. index_A is updated with ΔA
//  3. index_A(updated) ⋈ ΔB contributes I(A)⋈ΔB + ΔA⋈ΔB in one pass,
//     since index_A already includes ΔA at this point
//  4. index_B is updated with ΔB
//  5. the two contributions are merged and canonicalized
//  6. the materialized view is advanced by the merged delta
//  7. the delta is returned to the caller
func (j *StatefulJoin[T, U, K]) ProcessIncrement(deltaA *zset.ZSet[T], deltaB *zset.ZSet[U]) (*zset.ZSet[zset.Pair[T, U]], error) {
	var pairs []zset.Pair[T, U]
	var weights []int64

	emit := func(ea zset.Entry[T], eb zset.Entry[U]) error {
		weight, err := multiplyWeights(ea.Weight, eb.Weight)
		if err != nil {
			return err
		}
		if weight == 0 {
			return nil
		}
		pairs = append(pairs, zset.Pair[T, U]{Left: ea.Value, Right: eb.Value})
		weights = append(weights, weight)
		return nil
	}

	// Step 1: ΔA against the index_B state from before this increment.
	for _, ea := range deltaA.Entries() {
		jk := j.joinKeyStr(j.keyA(ea.Value))
		for _, eb := range j.indexB.bucket(jk) {
			if err := emit(ea, eb); err != nil {
				return nil, err
			}
		}
	}

	// Step 2: fold ΔA into index_A.
	for _, ea := range deltaA.Entries() {
		jk := j.joinKeyStr(j.keyA(ea.Value))
		if err := j.indexA.apply(jk, j.zkeyA(ea.Value), ea); err != nil {
			return nil, err
		}
	}

	// Step 3: ΔB against the now-updated index_A (covers I(A)⋈ΔB and
	// ΔA⋈ΔB together, since index_A already reflects ΔA).
	for _, eb := range deltaB.Entries() {
		jk := j.joinKeyStr(j.keyB(eb.Value))
		for _, ea := range j.indexA.bucket(jk) {
			if err := emit(ea, eb); err != nil {
				return nil, err
			}
		}
	}

	// Step 4: fold ΔB into index_B.
	for _, eb := range deltaB.Entries() {
		jk := j.joinKeyStr(j.keyB(eb.Value))
		if err := j.indexB.apply(jk, j.zkeyB(eb.Value), eb); err != nil {
			return nil, err
		}
	}

	// Step 5: canonicalize the collected contributions into one delta.
	result, err := zset.FromRecords(j.pairKey, pairs, weights)
	if err != nil {
		return nil, err
	}

	// Step 6: advance the materialized view by the merged, canonical
	// delta.
	view, err := j.view.Add(result)
	if err != nil {
		return nil, err
	}
	j.view = view

	// Step 7: return the delta.
	return result, nil
}

func multiplyWeights(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/b != a {
		return 0, dbsperrors.NewOverflow("join.multiply", a, b)
	}
	return product, nil
}

// GetMaterializedView returns the join's current cumulative output
// (I applied to the output delta stream).
func (j *StatefulJoin[T, U, K]) GetMaterializedView() *zset.ZSet[zset.Pair[T, U]] {
	return j.view.Clone()
}

// GetIndexSizes reports the number of distinct join-key buckets currently
// held by each side, for diagnostics and tests.
func (j *StatefulJoin[T, U, K]) GetIndexSizes() (a, b int) {
	return len(j.indexA.byJoinKey), len(j.indexB.byJoinKey)
}

// Reset clears both indexes and the materialized view, returning the
// join to its initial state.
func (j *StatefulJoin[T, U, K]) Reset() {
	j.indexA = newSide[T]()
	j.indexB = newSide[U]()
	j.view = zset.New(j.pairKey)
	j.log.Info("join reset")
}
