package circuit

import (
	"github.com/streamhouse/dbsp/internal/dbsperrors"
	"github.com/streamhouse/dbsp/zset"
)

// Distinct builds the optimized incremental set-projection node. Rather
// than recomputing Distinct over the full integrated state on
// every timestep (the D∘Distinct∘I sandwich a naive implementation would
// use), it tracks each key's cumulative weight and emits a ±1 only for
// the keys whose membership (weight > 0) actually flips this timestep —
// O(|Δ|) instead of O(|cumulative state|).
func Distinct[T any](keyFn zset.KeyFunc[T]) *Circuit[*zset.ZSet[T], *zset.ZSet[T]] {
	totalWeight := make(map[string]int64)
	totalValue := make(map[string]T)
	isMember := make(map[string]bool)

	process := func(delta *zset.ZSet[T]) (*zset.ZSet[T], error) {
		var values []T
		var weights []int64

		for _, e := range delta.Entries() {
			k := keyFn(e.Value)
			newWeight, err := dbsperrors.AddWeights("circuit.distinct", totalWeight[k], e.Weight)
			if err != nil {
				return nil, err
			}

			if newWeight == 0 {
				delete(totalWeight, k)
				delete(totalValue, k)
			} else {
				totalWeight[k] = newWeight
				totalValue[k] = e.Value
			}

			wasMember := isMember[k]
			nowMember := newWeight > 0
			if wasMember == nowMember {
				continue
			}
			isMember[k] = nowMember
			if nowMember {
				values = append(values, e.Value)
				weights = append(weights, 1)
			} else {
				values = append(values, e.Value)
				weights = append(weights, -1)
			}
		}

		return zset.FromRecords(keyFn, values, weights)
	}

	reset := func() {
		totalWeight = make(map[string]int64)
		totalValue = make(map[string]T)
		isMember = make(map[string]bool)
	}

	return &Circuit[*zset.ZSet[T], *zset.ZSet[T]]{process: process, reset: reset}
}
