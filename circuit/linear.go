package circuit

import "github.com/streamhouse/dbsp/zset"

// Filter builds the circuit node for the linear, time-invariant
// selection operator: since filter distributes over addition (Q^Δ = Q),
// it needs no internal state at all.
func Filter[T any](pred func(T) bool) *Circuit[*zset.ZSet[T], *zset.ZSet[T]] {
	return &Circuit[*zset.ZSet[T], *zset.ZSet[T]]{
		process: func(delta *zset.ZSet[T]) (*zset.ZSet[T], error) {
			return zset.Filter(delta, pred), nil
		},
	}
}

// Project builds the circuit node for the linear projection operator,
// re-canonicalizing under keyFn.
func Project[T, R any](proj func(T) R, keyFn zset.KeyFunc[R]) *Circuit[*zset.ZSet[T], *zset.ZSet[R]] {
	return &Circuit[*zset.ZSet[T], *zset.ZSet[R]]{
		process: func(delta *zset.ZSet[T]) (*zset.ZSet[R], error) {
			return zset.Project(delta, proj, keyFn)
		},
	}
}

// GroupBy builds the circuit node for the linear group-by partitioning
// operator: each timestep's delta is independently partitioned by
// groupKey, with no state carried across timesteps (downstream
// aggregation over a group's history is the caller's responsibility,
// typically via a per-group Circuit of its own).
func GroupBy[T any, G comparable](groupKey func(T) G) *Circuit[*zset.ZSet[T], map[G]*zset.ZSet[T]] {
	return &Circuit[*zset.ZSet[T], map[G]*zset.ZSet[T]]{
		process: func(delta *zset.ZSet[T]) (map[G]*zset.ZSet[T], error) {
			return zset.GroupBy(delta, groupKey), nil
		},
	}
}

// Add builds the circuit node for the abelian group's binary addition —
// the linear half of the union/difference decomposition.
func Add[T any]() *Circuit2[*zset.ZSet[T], *zset.ZSet[T], *zset.ZSet[T]] {
	return &Circuit2[*zset.ZSet[T], *zset.ZSet[T], *zset.ZSet[T]]{
		process: func(a, b *zset.ZSet[T]) (*zset.ZSet[T], error) { return a.Add(b) },
	}
}

// Negate builds the circuit node for the group inverse.
func Negate[T any]() *Circuit[*zset.ZSet[T], *zset.ZSet[T]] {
	return &Circuit[*zset.ZSet[T], *zset.ZSet[T]]{
		process: func(delta *zset.ZSet[T]) (*zset.ZSet[T], error) { return delta.Negate(), nil },
	}
}
