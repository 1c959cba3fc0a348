package numethods

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/njchilds90/numethods/expr"
	"github.com/njchilds90/numethods/num"
)

// NewtonStep is one tangent-line update. PercentError is nil on the first
// iteration.
type NewtonStep struct {
	Xn           num.Value  `json:"xn" yaml:"xn"`
	FX           num.Value  `json:"fx" yaml:"fx"`
	FPX          num.Value  `json:"fpx" yaml:"fpx"`
	PercentError *num.Value `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewtonRaphson iterates n := n - f(n)/f'(n) with f' derived once up front.
// It stops when the percent error rounds to zero at four decimals or when
// f' at the new estimate agrees with f' at the old one to a relative
// tolerance of 1e-4. A zero derivative fails with num.ErrDivisionByZero.
func NewtonRaphson(formula string, n num.Value, opts Options) (Result[NewtonStep], error) {
	f, err := compile(formula)
	if err != nil {
		return Result[NewtonStep]{}, err
	}
	return NewtonRaphsonExpr(f, n, opts)
}

// NewtonRaphsonExpr is NewtonRaphson on a parsed expression.
func NewtonRaphsonExpr(f expr.Expr, n num.Value, opts Options) (Result[NewtonStep], error) {
	if err := checkVariable(f); err != nil {
		return Result[NewtonStep]{}, err
	}
	fp := expr.Diff(f, Variable)
	m := opts.mode()
	n = n.Convert(m)
	prev := num.Zero(m)
	zero := num.Zero(m)

	log := opts.logger("newton-raphson").With(zap.Stringer("derivative", fp))
	res := Result[NewtonStep]{}
	for i := 0; ; i++ {
		fx, err := eval(f, n)
		if err != nil {
			return Result[NewtonStep]{}, err
		}
		fpx, err := eval(fp, n)
		if err != nil {
			return Result[NewtonStep]{}, err
		}
		var pct *num.Value
		if i > 0 {
			e, err := percentError(n, prev)
			if err != nil {
				return Result[NewtonStep]{}, err
			}
			pct = &e
		}

		res.Iterations = i + 1
		if opts.Trace {
			res.Steps = append(res.Steps, NewtonStep{Xn: n, FX: fx, FPX: fpx, PercentError: pct})
		}
		log.Debug("iteration",
			zap.Int("i", i),
			zap.Stringer("xn", n),
			zap.Stringer("fx", fx),
			zap.Stringer("fpx", fpx),
			percentField(pct))

		prev = n
		step, err := fx.Quo(fpx)
		if err != nil {
			return Result[NewtonStep]{}, fmt.Errorf("f'(%s) = 0: %w", n, err)
		}
		n = n.Sub(step)
		if err := opts.checkBits(n); err != nil {
			return Result[NewtonStep]{}, err
		}
		fpNext, err := eval(fp, n)
		if err != nil {
			return Result[NewtonStep]{}, err
		}

		if pct != nil && num.IsClose(pct.Round(roundPlaces), zero, closeTol, 0) {
			break
		}
		if num.IsClose(fpx, fpNext, closeTol, 0) {
			break
		}
		if i >= MaxIterations {
			return Result[NewtonStep]{}, &IterationLimitError{Method: "newton-raphson", Iterations: i + 1}
		}
	}
	res.Root = n
	return res, nil
}
