package numethods

import (
	"go.uber.org/zap"

	"github.com/njchilds90/numethods/expr"
	"github.com/njchilds90/numethods/num"
)

// FixedPointStep is one application of the rearranged formula.
// PercentError is nil on the first iteration.
type FixedPointStep struct {
	Xn           num.Value  `json:"xn" yaml:"xn"`
	PercentError *num.Value `json:"error,omitempty" yaml:"error,omitempty"`
}

// FixedPoint iterates n := f(n) from the starting estimate, where formula
// is already rearranged into the form x = f(x). It stops when the percent
// error is zero to a relative tolerance of 1e-4 or when two successive
// estimates are within 1e-4 of each other (1e-9 relative for large
// estimates), and fails with *IterationLimitError after iteration
// MaxIterations.
func FixedPoint(formula string, n num.Value, opts Options) (Result[FixedPointStep], error) {
	f, err := compile(formula)
	if err != nil {
		return Result[FixedPointStep]{}, err
	}
	return FixedPointExpr(f, n, opts)
}

// FixedPointExpr is FixedPoint on a parsed expression.
func FixedPointExpr(f expr.Expr, n num.Value, opts Options) (Result[FixedPointStep], error) {
	if err := checkVariable(f); err != nil {
		return Result[FixedPointStep]{}, err
	}
	m := opts.mode()
	n = n.Convert(m)
	prev := num.Zero(m)
	zero := num.Zero(m)

	log := opts.logger("fixed point")
	res := Result[FixedPointStep]{}
	for i := 0; ; i++ {
		var pct *num.Value
		if i > 0 {
			e, err := percentError(n, prev)
			if err != nil {
				return Result[FixedPointStep]{}, err
			}
			pct = &e
		}

		res.Iterations = i + 1
		if opts.Trace {
			res.Steps = append(res.Steps, FixedPointStep{Xn: n, PercentError: pct})
		}
		log.Debug("iteration", zap.Int("i", i), zap.Stringer("xn", n), percentField(pct))

		prev = n
		next, err := eval(f, prev)
		if err != nil {
			return Result[FixedPointStep]{}, err
		}
		if err := opts.checkBits(next); err != nil {
			return Result[FixedPointStep]{}, err
		}
		n = next

		if pct != nil && num.IsClose(*pct, zero, closeTol, 0) {
			break
		}
		if num.IsClose(prev, n, 1e-9, closeTol) {
			break
		}
		if i >= MaxIterations {
			return Result[FixedPointStep]{}, &IterationLimitError{Method: "fixed point", Iterations: i + 1}
		}
	}
	res.Root = n
	return res, nil
}
