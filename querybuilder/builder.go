// Package querybuilder is a thin, out-of-core collaborator: a fluent
// Select/Project/Join/Distinct/TopK/GroupBy builder that accumulates
// stage descriptors and compiles them into a circuit.Circuit on
// Build(). It performs no optimization or rewriting of the assembled
// pipeline — it is only a convenience for assembling the static circuit
// constructors without hand-wiring Compose calls.
package querybuilder

import (
	"github.com/streamhouse/dbsp/circuit"
	"github.com/streamhouse/dbsp/internal/telemetry"
	"github.com/streamhouse/dbsp/zset"
)

// Builder accumulates single-input stages (filter, distinct, top-K) over
// a fixed element type T.
type Builder[T any] struct {
	keyFn zset.KeyFunc[T]
	stage *circuit.Circuit[*zset.ZSet[T], *zset.ZSet[T]]
}

// New starts a builder over T, canonicalized by keyFn.
func New[T any](keyFn zset.KeyFunc[T]) *Builder[T] {
	return &Builder[T]{
		keyFn: keyFn,
		stage: circuit.NewCircuit(func(d *zset.ZSet[T]) (*zset.ZSet[T], error) { return d, nil }, nil),
	}
}

// Select appends a filter stage (the query-builder verb for the
// selection operator).
func (b *Builder[T]) Select(pred func(T) bool) *Builder[T] {
	return &Builder[T]{keyFn: b.keyFn, stage: circuit.Compose(b.stage, circuit.Filter(pred))}
}

// Distinct appends the optimized incremental distinct stage.
func (b *Builder[T]) Distinct() *Builder[T] {
	return &Builder[T]{keyFn: b.keyFn, stage: circuit.Compose(b.stage, circuit.Distinct(b.keyFn))}
}

// TopK appends the stateful top-K stage.
func (b *Builder[T]) TopK(less func(a, b T) bool, offset, limit int, log telemetry.Logger) *Builder[T] {
	return &Builder[T]{keyFn: b.keyFn, stage: circuit.Compose(b.stage, circuit.TopK(less, b.keyFn, offset, limit, log))}
}

// Build returns the assembled circuit.
func (b *Builder[T]) Build() *circuit.Circuit[*zset.ZSet[T], *zset.ZSet[T]] {
	return b.stage
}

// Project appends the linear projection operator, changing the
// builder's element type from T to R. It is a free function rather than
// a method because Go methods cannot introduce new type parameters.
func Project[T, R any](b *Builder[T], proj func(T) R, keyFn zset.KeyFunc[R]) *Builder[R] {
	return &Builder[R]{keyFn: keyFn, stage: circuit.Compose(b.stage, circuit.Project(proj, keyFn))}
}

// GroupBy appends the linear group-by partitioning operator. It is a
// terminal stage: a map of per-group Z-sets is not itself a
// chainable single Z-set builder, so the compiled circuit is returned
// directly rather than wrapped back in a Builder.
func GroupBy[T any, G comparable](b *Builder[T], groupKey func(T) G) *circuit.Circuit[*zset.ZSet[T], map[G]*zset.ZSet[T]] {
	return circuit.Compose(b.stage, circuit.GroupBy(groupKey))
}

// Join binds the stateful equi-join between two builders' accumulated
// stages, returning a new Builder over the resulting pairs.
// Each side's accumulated single-input stages run first against that
// side's incoming delta, and only then are the two transformed deltas
// fed into the join.
func Join[T, U any, K comparable](
	left *Builder[T], right *Builder[U],
	keyA func(T) K, keyB func(U) K, joinKeyStr func(K) string,
	pairKey zset.KeyFunc[zset.Pair[T, U]],
	log telemetry.Logger,
) *Joined[T, U] {
	joinNode := circuit.Join[T, U, K](keyA, keyB, joinKeyStr, left.keyFn, right.keyFn, pairKey, log)

	combined := circuit.NewCircuit2(
		func(deltaA *zset.ZSet[T], deltaB *zset.ZSet[U]) (*zset.ZSet[zset.Pair[T, U]], error) {
			midA, err := left.stage.Execute(deltaA)
			if err != nil {
				return nil, err
			}
			midB, err := right.stage.Execute(deltaB)
			if err != nil {
				return nil, err
			}
			return joinNode.Execute(midA, midB)
		},
		func() {
			left.stage.Reset()
			right.stage.Reset()
			joinNode.Reset()
		},
	)

	return &Joined[T, U]{pairKey: pairKey, circuit2: combined}
}

// Joined is the result of Join: a two-input stage that can still be
// extended with single-input stages over the joined pair type via Then,
// or compiled directly with Build.
type Joined[T, U any] struct {
	pairKey  zset.KeyFunc[zset.Pair[T, U]]
	circuit2 *circuit.Circuit2[*zset.ZSet[T], *zset.ZSet[U], *zset.ZSet[zset.Pair[T, U]]]
}

// Then appends a single-input Builder stage (built against the joined
// Pair[T, U] type) after the join.
func (j *Joined[T, U]) Then(tail *Builder[zset.Pair[T, U]]) *circuit.Circuit2[*zset.ZSet[T], *zset.ZSet[U], *zset.ZSet[zset.Pair[T, U]]] {
	return circuit.NewCircuit2(
		func(deltaA *zset.ZSet[T], deltaB *zset.ZSet[U]) (*zset.ZSet[zset.Pair[T, U]], error) {
			mid, err := j.circuit2.Execute(deltaA, deltaB)
			if err != nil {
				return nil, err
			}
			return tail.stage.Execute(mid)
		},
		func() {
			j.circuit2.Reset()
			tail.stage.Reset()
		},
	)
}

// Build compiles the joined stage without any further single-input
// tail.
func (j *Joined[T, U]) Build() *circuit.Circuit2[*zset.ZSet[T], *zset.ZSet[U], *zset.ZSet[zset.Pair[T, U]]] {
	return j.circuit2
}
