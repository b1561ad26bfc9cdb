// Package dbsperrors defines the error taxonomy shared by every core
// package: invariant violations, weight overflow, and the plain wrapped
// errors used for everything else (arity mismatches, missing keys,
// collaborator-contract violations).
package dbsperrors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// InvariantViolation marks an error as a broken data-structure invariant:
// a non-canonical Z-set handed to an operator that requires canonical
// form, or a top-K/join internal invariant found broken at runtime. It is
// fatal for the operator that raised it — the caller must Reset() before
// feeding it further increments.
type InvariantViolation struct {
	Op      string
	Detail  string
	wrapped error
}

func (e *InvariantViolation) Error() string {
	if e.wrapped != nil {
		return e.Op + ": invariant violated: " + e.Detail + ": " + e.wrapped.Error()
	}
	return e.Op + ": invariant violated: " + e.Detail
}

func (e *InvariantViolation) Unwrap() error { return e.wrapped }

// NewInvariantViolation builds an InvariantViolation with a stack trace
// attached via cockroachdb/errors.
func NewInvariantViolation(op, detail string) error {
	return errors.WithStack(&InvariantViolation{Op: op, Detail: detail})
}

// WrapInvariantViolation attaches invariant-violation semantics to an
// existing error without discarding it.
func WrapInvariantViolation(op, detail string, cause error) error {
	return errors.WithStack(&InvariantViolation{Op: op, Detail: detail, wrapped: cause})
}

// Overflow marks an error as int64 weight arithmetic that would overflow.
// The operator aborts the record update that triggered it rather than
// silently wrapping around.
type Overflow struct {
	Op   string
	A, B int64
}

func (e *Overflow) Error() string {
	return fmt.Sprintf("%s: weight overflow combining %d and %d", e.Op, e.A, e.B)
}

// NewOverflow builds an Overflow error with a stack trace attached.
func NewOverflow(op string, a, b int64) error {
	return errors.WithStack(&Overflow{Op: op, A: a, B: b})
}

// IsInvariantViolation reports whether err (or any error in its chain) is
// an InvariantViolation.
func IsInvariantViolation(err error) bool {
	var target *InvariantViolation
	return errors.As(err, &target)
}

// IsOverflow reports whether err (or any error in its chain) is an
// Overflow.
func IsOverflow(err error) bool {
	var target *Overflow
	return errors.As(err, &target)
}

// AddWeights adds two signed multiplicities, returning an Overflow error
// instead of wrapping around on int64 overflow.
func AddWeights(op string, a, b int64) (int64, error) {
	sum := a + b
	// Overflow can only happen when both operands share a sign and the
	// result's sign disagrees with theirs.
	if (a > 0 && b > 0 && sum <= 0) || (a < 0 && b < 0 && sum >= 0) {
		return 0, NewOverflow(op, a, b)
	}
	return sum, nil
}

// Wrap is a thin re-export of cockroachdb/errors.Wrapf for the plain
// wrapped-error case (arity mismatches, missing keys, and the like).
func Wrap(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New is a thin re-export of cockroachdb/errors.Newf.
func New(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}
