// Package circuit implements a typed, composable pipeline: a Circuit
// wires lifted stateless operators together with the stateful bilinear,
// distinct, join, and top-K nodes into a single per-timestep
// delta-in, delta-out unit, replacing a string-keyed dispatch graph with
// typed Go generics.
package circuit

// Circuit is a single-input, single-output incremental pipeline stage:
// Execute consumes one timestep's input delta and produces that
// timestep's output delta. Stateful nodes (distinct, top-K) close over
// their own state rather than expose it on Circuit itself.
type Circuit[A, B any] struct {
	process func(delta A) (B, error)
	reset   func()
}

// NewCircuit builds a Circuit from a raw process/reset pair, for
// collaborators (querybuilder, reactivetable) that need a custom stage
// not covered by the static constructors in this package.
func NewCircuit[A, B any](process func(A) (B, error), reset func()) *Circuit[A, B] {
	return &Circuit[A, B]{process: process, reset: reset}
}

// Execute runs one timestep of the circuit.
func (c *Circuit[A, B]) Execute(delta A) (B, error) { return c.process(delta) }

// Reset returns every stateful node in the circuit to its initial state.
func (c *Circuit[A, B]) Reset() {
	if c.reset != nil {
		c.reset()
	}
}

// Compose wires first's output into second's input, producing a circuit
// from first's input type to second's output type: the composition of
// two incremental circuits is itself incremental.
func Compose[A, B, C any](first *Circuit[A, B], second *Circuit[B, C]) *Circuit[A, C] {
	return &Circuit[A, C]{
		process: func(delta A) (C, error) {
			mid, err := first.process(delta)
			if err != nil {
				var zero C
				return zero, err
			}
			return second.process(mid)
		},
		reset: func() {
			first.Reset()
			second.Reset()
		},
	}
}

// Circuit2 is the two-input counterpart used by bilinear and stateful
// join nodes, which must see both operands' deltas for the same
// timestep simultaneously.
type Circuit2[A, B, C any] struct {
	process func(deltaA A, deltaB B) (C, error)
	reset   func()
}

// NewCircuit2 builds a Circuit2 from a raw process/reset pair, for
// collaborators that need a custom two-input stage.
func NewCircuit2[A, B, C any](process func(A, B) (C, error), reset func()) *Circuit2[A, B, C] {
	return &Circuit2[A, B, C]{process: process, reset: reset}
}

// Execute runs one timestep of the circuit against both input deltas.
func (c *Circuit2[A, B, C]) Execute(deltaA A, deltaB B) (C, error) {
	return c.process(deltaA, deltaB)
}

// Reset returns every stateful node in the circuit to its initial state.
func (c *Circuit2[A, B, C]) Reset() {
	if c.reset != nil {
		c.reset()
	}
}

// Lift1 adapts a Circuit2 to a Circuit by fixing its second input to
// always be the zero/no-op delta, for composing a two-input node into an
// otherwise single-input pipeline that never feeds its second operand.
func Lift1[A, B, C any](c2 *Circuit2[A, B, C], zeroB func() B) *Circuit[A, C] {
	return &Circuit[A, C]{
		process: func(deltaA A) (C, error) { return c2.process(deltaA, zeroB()) },
		reset:   c2.Reset,
	}
}
