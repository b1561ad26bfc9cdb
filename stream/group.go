// Package stream implements the stream calculus: Stream[A] is a sparse,
// time-indexed container over any abelian group A, with the lift,
// delay, integrate, differentiate and incrementalize operators.
package stream

// Group witnesses that A forms an abelian group under Add, with identity
// Zero and inverse Negate, and lets the stream operators test for the
// identity element without requiring A to be Go-comparable. Every type
// plugged into a Stream[A] must supply one of these.
type Group[A any] interface {
	Zero() A
	Add(x, y A) (A, error)
	Negate(x A) A
	IsZero(x A) bool
}
