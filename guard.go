package numethods

import (
	"fmt"

	"github.com/njchilds90/numethods/expr"
	"github.com/njchilds90/numethods/num"
)

// CheckBracket validates the endpoints of a bracketing method. A reversed
// interval is swapped when swap is set and rejected with ErrInvalidInterval
// otherwise. A strictly positive f(a)*f(b) fails with *SameSignError; a zero
// product means an endpoint is already a root and is accepted.
func CheckBracket(f expr.Expr, a, b num.Value, swap bool) (num.Value, num.Value, error) {
	if a.Cmp(b) > 0 {
		if !swap {
			return a, b, fmt.Errorf("%w: a = %s, b = %s", ErrInvalidInterval, a, b)
		}
		a, b = b, a
	}
	fa, err := eval(f, a)
	if err != nil {
		return a, b, err
	}
	fb, err := eval(f, b)
	if err != nil {
		return a, b, err
	}
	if fa.Mul(fb).Sign() > 0 {
		return a, b, &SameSignError{A: a, B: b, FA: fa, FB: fb}
	}
	return a, b, nil
}
