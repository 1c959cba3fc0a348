// Package numethods finds real roots of single-variable functions with four
// classical iterative methods: bisection, false position, fixed-point
// iteration and Newton-Raphson.
//
// Each solver takes formula text in the variable x (see expr.Parse), runs in
// exact rational or float64 arithmetic and can return the full iteration
// trace:
//
//	res, err := numethods.Bisection("x^2-8x+11", num.Int(1), num.Int(2), num.MustParse("0.001"), numethods.Options{Trace: true})
//
// The *Expr variants accept an already parsed expression.
package numethods

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/njchilds90/numethods/expr"
	"github.com/njchilds90/numethods/num"
)

// Variable is the only free symbol a formula may contain.
const Variable = "x"

// MaxIterations is the last iteration counter an open method (and false
// position) may reach before the sequence is assumed indefinite.
const MaxIterations = 99

const (
	closeTol    = 1e-4
	roundPlaces = 4
)

// Options are shared by all four solvers.
type Options struct {
	// Rational keeps every intermediate value an exact fraction.
	Rational bool
	// Swap allows a bracketing method to reorder a > b instead of failing.
	// Open methods ignore it.
	Swap bool
	// Trace collects one step record per iteration in Result.Steps.
	Trace bool
	// Logger receives one Debug entry per iteration. Nil disables logging.
	Logger *zap.Logger
	// MaxBits caps the size of each new rational estimate (see
	// num.Value.BitLen). Zero leaves exact arithmetic unbounded.
	MaxBits int
}

func (o Options) mode() num.Mode {
	if o.Rational {
		return num.ModeRational
	}
	return num.ModeFloat
}

func (o Options) checkBits(v num.Value) error {
	if o.MaxBits > 0 && v.BitLen() > o.MaxBits {
		return fmt.Errorf("%w: estimate needs %d bits, limit is %d", ErrPrecisionLimit, v.BitLen(), o.MaxBits)
	}
	return nil
}

func (o Options) logger(method string) *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger.With(zap.String("method", method))
}

// Result is the outcome of a solver call. Steps is nil unless Options.Trace
// was set; Iterations is always the number of iterations performed.
type Result[S any] struct {
	Root       num.Value `json:"root" yaml:"root"`
	Iterations int       `json:"iterations" yaml:"iterations"`
	// Base is the counter of the first iteration: 1 for bracketing methods,
	// 0 for open methods.
	Base  int `json:"base" yaml:"base"`
	Steps []S `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// Counter returns the iteration counter of Steps[i].
func (r Result[S]) Counter(i int) int { return r.Base + i }

// Branch records which bracket endpoint a bracketing step replaces.
type Branch int

const (
	// ReplaceB means b := c, taken whenever f(a)*f(c) <= 0.
	ReplaceB Branch = iota
	// ReplaceA means a := c.
	ReplaceA
)

func branchFor(fa, fc num.Value) Branch {
	if fa.Mul(fc).Sign() <= 0 {
		return ReplaceB
	}
	return ReplaceA
}

func (b Branch) String() string {
	if b == ReplaceA {
		return "a = c"
	}
	return "b = c"
}

// Sign is the change-of-sign marker: "-" when b is replaced, "+" when a is.
func (b Branch) Sign() string {
	if b == ReplaceA {
		return "+"
	}
	return "-"
}

func (b Branch) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// compile parses formula and checks that x is its only free symbol.
func compile(formula string) (expr.Expr, error) {
	f, err := expr.Parse(formula)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", formula, err)
	}
	return f, checkVariable(f)
}

func checkVariable(f expr.Expr) error {
	for _, name := range expr.FreeSymbols(f) {
		if name != Variable {
			return fmt.Errorf("formula %s: %w %q (only %s is allowed)", f, expr.ErrUnboundSymbol, name, Variable)
		}
	}
	return nil
}

func eval(f expr.Expr, at num.Value) (num.Value, error) {
	v, err := expr.Eval(f, Variable, at)
	if err != nil {
		return num.Value{}, fmt.Errorf("evaluate %s at x = %s: %w", f, at, err)
	}
	return v, nil
}

// percentError is |((n - prev) / n) * 100|.
func percentError(n, prev num.Value) (num.Value, error) {
	q, err := n.Sub(prev).Quo(n)
	if err != nil {
		return num.Value{}, fmt.Errorf("percent error at Xn = %s: %w", n, err)
	}
	return q.Mul(num.Int(100).Like(n)).Abs(), nil
}

func percentField(p *num.Value) zap.Field {
	if p == nil {
		return zap.Skip()
	}
	return zap.Stringer("error", *p)
}
