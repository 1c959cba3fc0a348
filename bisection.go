package numethods

import (
	"math"

	"go.uber.org/zap"

	"github.com/njchilds90/numethods/expr"
	"github.com/njchilds90/numethods/num"
)

// BisectionStep is one halving of the bracket.
type BisectionStep struct {
	A      num.Value `json:"a" yaml:"a"`
	B      num.Value `json:"b" yaml:"b"`
	C      num.Value `json:"c" yaml:"c"`
	FA     num.Value `json:"fa" yaml:"fa"`
	FC     num.Value `json:"fc" yaml:"fc"`
	BC     num.Value `json:"bc" yaml:"bc"`
	Branch Branch    `json:"swap" yaml:"swap"`
}

// Bisection halves [a, b] until b - c, or b - c rounded to four decimals,
// is at most tol. The root is the last midpoint.
func Bisection(formula string, a, b, tol num.Value, opts Options) (Result[BisectionStep], error) {
	f, err := compile(formula)
	if err != nil {
		return Result[BisectionStep]{}, err
	}
	return BisectionExpr(f, a, b, tol, opts)
}

// BisectionExpr is Bisection on a parsed expression.
func BisectionExpr(f expr.Expr, a, b, tol num.Value, opts Options) (Result[BisectionStep], error) {
	if err := checkVariable(f); err != nil {
		return Result[BisectionStep]{}, err
	}
	m := opts.mode()
	a, b, tol = a.Convert(m), b.Convert(m), tol.Convert(m)
	if tol.Sign() < 0 {
		return Result[BisectionStep]{}, ErrInvalidTolerance
	}
	a, b, err := CheckBracket(f, a, b, opts.Swap)
	if err != nil {
		return Result[BisectionStep]{}, err
	}

	log := opts.logger("bisection")
	two := num.Int(2).Convert(m)
	res := Result[BisectionStep]{Base: 1}
	for i := 1; ; i++ {
		c, err := a.Add(b).Quo(two)
		if err != nil {
			return Result[BisectionStep]{}, err
		}
		if err := opts.checkBits(c); err != nil {
			return Result[BisectionStep]{}, err
		}
		fa, err := eval(f, a)
		if err != nil {
			return Result[BisectionStep]{}, err
		}
		fc, err := eval(f, c)
		if err != nil {
			return Result[BisectionStep]{}, err
		}
		bc := b.Sub(c)
		branch := branchFor(fa, fc)

		res.Iterations = i
		if opts.Trace {
			res.Steps = append(res.Steps, BisectionStep{A: a, B: b, C: c, FA: fa, FC: fc, BC: bc, Branch: branch})
		}
		log.Debug("iteration",
			zap.Int("i", i),
			zap.Stringer("c", c),
			zap.Stringer("fc", fc),
			zap.Stringer("bc", bc),
			zap.Stringer("branch", branch))

		if bc.Cmp(tol) <= 0 || bc.Round(roundPlaces).Cmp(tol) <= 0 {
			res.Root = c
			return res, nil
		}
		if branch == ReplaceB {
			b = c
		} else {
			a = c
		}
	}
}

// EstimateBisectionIterations returns ceil(log2((b-a)/tol)), the number of
// halvings needed for the bracket width to reach tol. It returns 0 when tol
// is not positive or the interval is already narrower than tol.
func EstimateBisectionIterations(a, b, tol num.Value) int {
	width := b.Sub(a).Abs().Float64()
	t := tol.Float64()
	if t <= 0 || width <= t {
		return 0
	}
	return int(math.Ceil(math.Log2(width / t)))
}
