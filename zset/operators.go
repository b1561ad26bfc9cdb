package zset

import (
	"sort"

	"github.com/streamhouse/dbsp/internal/dbsperrors"
)

// Filter returns {(a, w) : (a, w) ∈ z, pred(a)} — a linear, time-invariant
// operator since filtering distributes over addition.
func Filter[T any](z *ZSet[T], pred func(T) bool) *ZSet[T] {
	result := New(z.keyFn)
	for k, r := range z.entries {
		if pred(r.value) {
			result.entries[k] = r
		}
	}
	return result
}

// Project maps every record through proj and re-canonicalizes the result
// under keyFn, summing weights for records that collide under the new
// key. Linear.
func Project[T, R any](z *ZSet[T], proj func(T) R, keyFn KeyFunc[R]) (*ZSet[R], error) {
	result := New(keyFn)
	for _, r := range z.entries {
		if err := result.appendMutate(proj(r.value), r.weight); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Pair is the element type produced by CartesianProduct and EquiJoin.
type Pair[A, B any] struct {
	Left  A
	Right B
}

// CartesianProduct returns the bilinear cross product of a and b: weight
// of (x, y) is weight(x) * weight(y). keyFn canonicalizes the pair
// domain.
func CartesianProduct[A, B any](a *ZSet[A], b *ZSet[B], keyFn KeyFunc[Pair[A, B]]) (*ZSet[Pair[A, B]], error) {
	result := New(keyFn)
	for _, ra := range a.entries {
		for _, rb := range b.entries {
			weight, err := multiplyWeights(ra.weight, rb.weight)
			if err != nil {
				return nil, err
			}
			if err := result.appendMutate(Pair[A, B]{Left: ra.value, Right: rb.value}, weight); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// EquiJoin performs a stateless equi-join using a temporary hash index
// over b, keyed on the join key. This is the batch/snapshot counterpart
// to join.StatefulJoin: it recomputes its index on every call, so it is
// appropriate only for one-off snapshot joins, never per-increment
// processing in a circuit.
func EquiJoin[A, B, J any](
	a *ZSet[A], b *ZSet[B],
	keyA func(A) J, keyB func(B) J, joinKey KeyFunc[J],
	pairKey KeyFunc[Pair[A, B]],
) (*ZSet[Pair[A, B]], error) {
	index := make(map[string][]record[B])
	for _, rb := range b.entries {
		jk := joinKey(keyB(rb.value))
		index[jk] = append(index[jk], rb)
	}

	result := New(pairKey)
	for _, ra := range a.entries {
		jk := joinKey(keyA(ra.value))
		for _, rb := range index[jk] {
			weight, err := multiplyWeights(ra.weight, rb.weight)
			if err != nil {
				return nil, err
			}
			if err := result.appendMutate(Pair[A, B]{Left: ra.value, Right: rb.value}, weight); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// Intersect returns the multiset intersection a ∩ b: weight(x) =
// min(weight_a(x), weight_b(x)) for x present in both, 0 otherwise.
// Because it takes the minimum of the two weights rather than their
// product, it is not bilinear.
func Intersect[T any](a, b *ZSet[T]) *ZSet[T] {
	result := New(a.keyFn)
	for k, ra := range a.entries {
		rb, ok := b.entries[k]
		if !ok {
			continue
		}
		w := ra.weight
		if rb.weight < w {
			w = rb.weight
		}
		if w != 0 {
			result.entries[k] = record[T]{value: ra.value, weight: w}
		}
	}
	return result
}

// Distinct returns {(a, 1) : (a, w) ∈ z, w > 0} — the non-linear set
// projection (the naive, non-incremental version; the optimized
// incremental form lives in circuit's differential update).
func Distinct[T any](z *ZSet[T]) *ZSet[T] {
	result := New(z.keyFn)
	for k, r := range z.entries {
		if r.weight > 0 {
			result.entries[k] = record[T]{value: r.value, weight: 1}
		}
	}
	return result
}

// Union returns the set union of a and b (Distinct(a + b)).
func Union[T any](a, b *ZSet[T]) (*ZSet[T], error) {
	sum, err := a.Add(b)
	if err != nil {
		return nil, err
	}
	return Distinct(sum), nil
}

// Difference returns the set difference a \ b as Distinct(a - b): every
// record whose weight in a exceeds its weight in b, at weight 1.
func Difference[T any](a, b *ZSet[T]) *ZSet[T] {
	result := New(a.keyFn)
	for k, ra := range a.entries {
		if ra.weight > b.entries[k].weight {
			result.entries[k] = record[T]{value: ra.value, weight: 1}
		}
	}
	for k, rb := range b.entries {
		if _, inA := a.entries[k]; !inA && rb.weight < 0 {
			result.entries[k] = record[T]{value: rb.value, weight: 1}
		}
	}
	return result
}

// Count returns the number of distinct, positively-weighted records —
// the cardinality aggregate.
func Count[T any](z *ZSet[T]) int64 {
	var n int64
	for _, r := range z.entries {
		if r.weight > 0 {
			n++
		}
	}
	return n
}

// Sum returns Σ f(value) * weight over z's records.
func Sum[T any](z *ZSet[T], f func(T) float64) float64 {
	var total float64
	for _, r := range z.entries {
		total += f(r.value) * float64(r.weight)
	}
	return total
}

// Average returns Sum(z, f) / weighted cardinality, and false if z has
// zero total weight (average of an empty multiset is undefined).
func Average[T any](z *ZSet[T], f func(T) float64) (float64, bool) {
	var total float64
	var count int64
	for _, r := range z.entries {
		total += f(r.value) * float64(r.weight)
		count += r.weight
	}
	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}

// GroupBy partitions z's records, with their weights, by groupKey,
// returning one Z-set per group using z's own KeyFunc for the
// within-group canonicalization.
func GroupBy[T any, G comparable](z *ZSet[T], groupKey func(T) G) map[G]*ZSet[T] {
	groups := make(map[G]*ZSet[T])
	for _, r := range z.entries {
		g := groupKey(r.value)
		zg, ok := groups[g]
		if !ok {
			zg = New(z.keyFn)
			groups[g] = zg
		}
		zg.entries[z.keyFn(r.value)] = r
	}
	return groups
}

// TopK returns the k highest records under less (a strict "a sorts
// before b" comparator), after skipping the first offset, breaking ties
// by stable insertion order of z.Entries() (itself canonical-key order).
// Non-positive-weight records are dropped before sorting, and every
// survivor is emitted at weight 1, matching Distinct's set semantics.
// This is the stateless, batch counterpart to topk.StatefulTopK.
func TopK[T any](z *ZSet[T], less func(a, b T) bool, offset, k int) *ZSet[T] {
	entries := z.Entries()
	positive := entries[:0:0]
	for _, e := range entries {
		if e.Weight > 0 {
			positive = append(positive, e)
		}
	}
	sort.SliceStable(positive, func(i, j int) bool {
		return less(positive[i].Value, positive[j].Value)
	})
	result := New(z.keyFn)
	end := offset + k
	if end > len(positive) {
		end = len(positive)
	}
	if offset > len(positive) {
		offset = len(positive)
	}
	for _, e := range positive[offset:end] {
		result.entries[result.keyFn(e.Value)] = record[T]{value: e.Value, weight: 1}
	}
	return result
}

func multiplyWeights(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	product := a * b
	if product/b != a {
		return 0, dbsperrors.NewOverflow("zset.multiply", a, b)
	}
	return product, nil
}
