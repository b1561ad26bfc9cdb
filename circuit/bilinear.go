package circuit

import "github.com/streamhouse/dbsp/zset"

// Bilinear builds the circuit node for any bilinear stateless Z-set
// operator (such as cartesian product) using the incremental
// three-term delta formula:
//
//	(a × b)^Δ = Δa×Δb + Δa×I(b) + I(a)×Δb
//
// It maintains the two cumulative operands (I(a), I(b)) internally and
// recombines them against each new pair of deltas, trading the full
// O(n·m) snapshot recomputation of the corpus's BinaryJoinOp for three
// combine calls against the (much smaller) delta on at least one side.
// combine must itself be bilinear (distribute over + on both arguments);
// zset.CartesianProduct qualifies; zset.Intersect, which takes the
// minimum of the two weights, does not.
func Bilinear[A, B, C any](
	combine func(a *zset.ZSet[A], b *zset.ZSet[B]) (*zset.ZSet[C], error),
) *Circuit2[*zset.ZSet[A], *zset.ZSet[B], *zset.ZSet[C]] {
	var cumA *zset.ZSet[A]
	var cumB *zset.ZSet[B]

	process := func(deltaA *zset.ZSet[A], deltaB *zset.ZSet[B]) (*zset.ZSet[C], error) {
		if cumA == nil {
			cumA = zset.New(deltaA.KeyFunc())
		}
		if cumB == nil {
			cumB = zset.New(deltaB.KeyFunc())
		}

		term1, err := combine(deltaA, deltaB) // ΔA × ΔB
		if err != nil {
			return nil, err
		}
		term2, err := combine(deltaA, cumB) // ΔA × I(B)_prev
		if err != nil {
			return nil, err
		}
		term3, err := combine(cumA, deltaB) // I(A)_prev × ΔB
		if err != nil {
			return nil, err
		}

		sum, err := term1.Add(term2)
		if err != nil {
			return nil, err
		}
		sum, err = sum.Add(term3)
		if err != nil {
			return nil, err
		}

		cumA, err = cumA.Add(deltaA)
		if err != nil {
			return nil, err
		}
		cumB, err = cumB.Add(deltaB)
		if err != nil {
			return nil, err
		}

		return sum, nil
	}

	reset := func() {
		cumA = nil
		cumB = nil
	}

	return &Circuit2[*zset.ZSet[A], *zset.ZSet[B], *zset.ZSet[C]]{process: process, reset: reset}
}
