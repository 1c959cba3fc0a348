package numethods

import (
	"errors"
	"fmt"

	"github.com/njchilds90/numethods/num"
)

var (
	// ErrInvalidInterval is returned when a > b and Options.Swap is off.
	ErrInvalidInterval = errors.New("numethods: a is greater than b")

	// ErrSameSign is returned when f(a)*f(b) > 0, before any iteration.
	ErrSameSign = errors.New("numethods: f(a) and f(b) have the same sign")

	// ErrInfiniteIteration is returned when no convergence test passed by
	// iteration MaxIterations. No root accompanies it.
	ErrInfiniteIteration = errors.New("numethods: iteration assumed indefinite")

	// ErrInvalidTolerance is returned by bisection for a negative tolerance.
	ErrInvalidTolerance = errors.New("numethods: error tolerance is negative")

	// ErrPrecisionLimit is returned when an exact estimate outgrows
	// Options.MaxBits.
	ErrPrecisionLimit = errors.New("numethods: rational precision limit exceeded")
)

// SameSignError names the endpoints and function values that failed the
// bracket check.
type SameSignError struct {
	A, B   num.Value
	FA, FB num.Value
}

func (e *SameSignError) Error() string {
	return fmt.Sprintf("numethods: f(%s) = %s and f(%s) = %s have the same sign", e.A, e.FA, e.B, e.FB)
}

func (e *SameSignError) Unwrap() error { return ErrSameSign }

// IterationLimitError reports a method that ran out of iterations.
type IterationLimitError struct {
	Method     string
	Iterations int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("numethods: %s did not converge after %d iterations", e.Method, e.Iterations)
}

func (e *IterationLimitError) Unwrap() error { return ErrInfiniteIteration }
