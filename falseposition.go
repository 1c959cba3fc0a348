package numethods

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/njchilds90/numethods/expr"
	"github.com/njchilds90/numethods/num"
)

// FalsePositionStep is one secant interpolation inside the bracket.
type FalsePositionStep struct {
	A      num.Value `json:"a" yaml:"a"`
	B      num.Value `json:"b" yaml:"b"`
	FA     num.Value `json:"fa" yaml:"fa"`
	FB     num.Value `json:"fb" yaml:"fb"`
	C      num.Value `json:"c" yaml:"c"`
	FC     num.Value `json:"fc" yaml:"fc"`
	Branch Branch    `json:"cos" yaml:"cos"`
}

// FalsePosition replaces one endpoint per iteration with the x-intercept
// c = (a*f(b) - b*f(a)) / (f(b) - f(a)) and stops once b and c agree to a
// relative tolerance of 1e-4. A flat secant (f(a) == f(b)) fails with
// num.ErrDivisionByZero.
func FalsePosition(formula string, a, b num.Value, opts Options) (Result[FalsePositionStep], error) {
	f, err := compile(formula)
	if err != nil {
		return Result[FalsePositionStep]{}, err
	}
	return FalsePositionExpr(f, a, b, opts)
}

// FalsePositionExpr is FalsePosition on a parsed expression.
func FalsePositionExpr(f expr.Expr, a, b num.Value, opts Options) (Result[FalsePositionStep], error) {
	if err := checkVariable(f); err != nil {
		return Result[FalsePositionStep]{}, err
	}
	m := opts.mode()
	a, b, err := CheckBracket(f, a.Convert(m), b.Convert(m), opts.Swap)
	if err != nil {
		return Result[FalsePositionStep]{}, err
	}

	log := opts.logger("false position")
	res := Result[FalsePositionStep]{Base: 1}
	for i := 1; ; i++ {
		fa, err := eval(f, a)
		if err != nil {
			return Result[FalsePositionStep]{}, err
		}
		fb, err := eval(f, b)
		if err != nil {
			return Result[FalsePositionStep]{}, err
		}
		c, err := a.Mul(fb).Sub(b.Mul(fa)).Quo(fb.Sub(fa))
		if err != nil {
			return Result[FalsePositionStep]{}, fmt.Errorf("secant through f(%s) = f(%s) = %s: %w", a, b, fa, err)
		}
		if err := opts.checkBits(c); err != nil {
			return Result[FalsePositionStep]{}, err
		}
		fc, err := eval(f, c)
		if err != nil {
			return Result[FalsePositionStep]{}, err
		}
		branch := branchFor(fa, fc)

		res.Iterations = i
		if opts.Trace {
			res.Steps = append(res.Steps, FalsePositionStep{A: a, B: b, FA: fa, FB: fb, C: c, FC: fc, Branch: branch})
		}
		log.Debug("iteration",
			zap.Int("i", i),
			zap.Stringer("c", c),
			zap.Stringer("fc", fc),
			zap.String("cos", branch.Sign()))

		if num.IsClose(b, c, closeTol, 0) {
			res.Root = c
			return res, nil
		}
		if i >= MaxIterations {
			return Result[FalsePositionStep]{}, &IterationLimitError{Method: "false position", Iterations: i}
		}
		if branch == ReplaceB {
			b = c
		} else {
			a = c
		}
	}
}
