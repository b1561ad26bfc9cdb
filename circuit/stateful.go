package circuit

import (
	"github.com/streamhouse/dbsp/internal/telemetry"
	"github.com/streamhouse/dbsp/join"
	"github.com/streamhouse/dbsp/topk"
	"github.com/streamhouse/dbsp/zset"
)

// Join builds the circuit node binding join.StatefulJoin as a two-input,
// stateful pipeline stage — the O(|Δ|·k̄) indexed join, never the naive
// bilinear sandwich, since the shared join key gives it a hash index to
// exploit.
func Join[T, U any, K comparable](
	keyA func(T) K, keyB func(U) K, joinKeyStr func(K) string,
	zkeyA zset.KeyFunc[T], zkeyB zset.KeyFunc[U], pairKey zset.KeyFunc[zset.Pair[T, U]],
	log telemetry.Logger,
) *Circuit2[*zset.ZSet[T], *zset.ZSet[U], *zset.ZSet[zset.Pair[T, U]]] {
	j := join.New(keyA, keyB, joinKeyStr, zkeyA, zkeyB, pairKey, log)
	return &Circuit2[*zset.ZSet[T], *zset.ZSet[U], *zset.ZSet[zset.Pair[T, U]]]{
		process: j.ProcessIncrement,
		reset:   j.Reset,
	}
}

// TopK builds the circuit node binding topk.StatefulTopK as a
// single-input, stateful pipeline stage.
func TopK[T any](less func(a, b T) bool, keyFn zset.KeyFunc[T], offset, limit int, log telemetry.Logger) *Circuit[*zset.ZSet[T], *zset.ZSet[T]] {
	k := topk.New(less, keyFn, offset, limit, log)
	return &Circuit[*zset.ZSet[T], *zset.ZSet[T]]{
		process: k.ProcessIncrement,
		reset:   k.Reset,
	}
}

// Union builds the union circuit node by decomposing it into its linear
// half (Add) followed by the optimized Distinct node: union(a, b) =
// distinct(a + b).
func Union[T any](keyFn zset.KeyFunc[T]) *Circuit2[*zset.ZSet[T], *zset.ZSet[T], *zset.ZSet[T]] {
	add := Add[T]()
	distinct := Distinct[T](keyFn)
	return &Circuit2[*zset.ZSet[T], *zset.ZSet[T], *zset.ZSet[T]]{
		process: func(a, b *zset.ZSet[T]) (*zset.ZSet[T], error) {
			sum, err := add.Execute(a, b)
			if err != nil {
				return nil, err
			}
			return distinct.Execute(sum)
		},
		reset: func() { distinct.Reset() },
	}
}

// Difference builds the incremental set-difference circuit node a \ b.
// It maintains the full cumulative state of both operands and
// recomputes zset.Difference over the cumulative snapshots each timestep, emitting the delta against the
// previously emitted snapshot.
func Difference[T any](keyFn zset.KeyFunc[T]) *Circuit2[*zset.ZSet[T], *zset.ZSet[T], *zset.ZSet[T]] {
	cumA := zset.New(keyFn)
	cumB := zset.New(keyFn)
	previous := zset.New(keyFn)

	process := func(deltaA, deltaB *zset.ZSet[T]) (*zset.ZSet[T], error) {
		var err error
		cumA, err = cumA.Add(deltaA)
		if err != nil {
			return nil, err
		}
		cumB, err = cumB.Add(deltaB)
		if err != nil {
			return nil, err
		}

		snapshot := zset.Difference(cumA, cumB)
		delta, err := snapshot.Subtract(previous)
		if err != nil {
			return nil, err
		}
		previous = snapshot
		return delta, nil
	}

	reset := func() {
		cumA = zset.New(keyFn)
		cumB = zset.New(keyFn)
		previous = zset.New(keyFn)
	}

	return &Circuit2[*zset.ZSet[T], *zset.ZSet[T], *zset.ZSet[T]]{process: process, reset: reset}
}
