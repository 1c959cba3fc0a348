package expr_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/njchilds90/numethods/expr"
	"github.com/njchilds90/numethods/num"
)

var x = expr.S("x")

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := expr.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := expr.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	n := expr.F(2, 5)
	if n.LaTeX() != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", n.LaTeX())
	}
}

func TestNum_EvalJoinsMode(t *testing.T) {
	v, err := expr.F(1, 4).Eval("x", num.Float(7))
	if err != nil {
		t.Fatal(err)
	}
	if v.Mode() != num.ModeFloat || v.Float64() != 0.25 {
		t.Errorf("want float 0.25, got %s", v)
	}
	v, _ = expr.F(1, 4).Eval("x", num.Int(7))
	if v.String() != "1/4" {
		t.Errorf("want 1/4, got %s", v)
	}
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Diff(t *testing.T) {
	if got := expr.String(x.Diff("x")); got != "1" {
		t.Errorf("d/dx(x): want 1, got %s", got)
	}
	if got := expr.String(expr.S("y").Diff("x")); got != "0" {
		t.Errorf("d/dx(y): want 0, got %s", got)
	}
}

func TestSym_EvalUnbound(t *testing.T) {
	_, err := expr.S("y").Eval("x", num.Int(1))
	if !errors.Is(err, expr.ErrUnboundSymbol) {
		t.Errorf("want ErrUnboundSymbol, got %v", err)
	}
}

// ============================================================
// Add / Mul / Pow tests
// ============================================================

func TestAdd_LikeTerms(t *testing.T) {
	if got := expr.AddOf(x, x).String(); got != "2*x" {
		t.Errorf("want 2*x, got %s", got)
	}
}

func TestAdd_CollapseToZero(t *testing.T) {
	if got := expr.AddOf(x, expr.MulOf(expr.N(-1), x)).String(); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestAdd_PrintsSubtraction(t *testing.T) {
	e := expr.AddOf(expr.PowOf(x, expr.N(2)), expr.MulOf(expr.N(-8), x), expr.N(11))
	if got := e.String(); got != "x^2 - 8*x + 11" {
		t.Errorf("want x^2 - 8*x + 11, got %s", got)
	}
}

func TestMul_MergesPowers(t *testing.T) {
	if got := expr.MulOf(x, x).String(); got != "x^2" {
		t.Errorf("want x^2, got %s", got)
	}
	if got := expr.MulOf(x, expr.PowOf(x, expr.N(-1))).String(); got != "1" {
		t.Errorf("want 1, got %s", got)
	}
}

func TestMul_ZeroCollapse(t *testing.T) {
	if got := expr.MulOf(expr.N(0), x).String(); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestPow_FoldsNumbers(t *testing.T) {
	if got := expr.PowOf(expr.F(2, 3), expr.N(-2)).String(); got != "9/4" {
		t.Errorf("want 9/4, got %s", got)
	}
}

func TestPow_Diff_PowerRule(t *testing.T) {
	got := expr.Diff(expr.PowOf(x, expr.N(3)), "x")
	if got.String() != "3*x^2" {
		t.Errorf("want 3*x^2, got %s", got)
	}
}

func TestPow_LaTeX(t *testing.T) {
	got := expr.PowOf(expr.AddOf(x, expr.N(1)), expr.N(2)).LaTeX()
	if got != `\left(x + 1\right)^{2}` {
		t.Errorf("unexpected LaTeX %s", got)
	}
}

// ============================================================
// Func tests
// ============================================================

func TestFunc_Diff(t *testing.T) {
	tests := []struct {
		in   expr.Expr
		want string
	}{
		{expr.SinOf(x), "cos(x)"},
		{expr.CosOf(x), "-sin(x)"},
		{expr.ExpOf(x), "exp(x)"},
		{expr.LnOf(x), "x^(-1)"},
	}
	for _, tt := range tests {
		if got := expr.Diff(tt.in, "x").String(); got != tt.want {
			t.Errorf("d/dx %s: want %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestFunc_Simplify(t *testing.T) {
	if got := expr.LnOf(expr.ExpOf(x)).String(); got != "x" {
		t.Errorf("want x, got %s", got)
	}
	if got := expr.CosOf(expr.N(0)).String(); got != "1" {
		t.Errorf("want 1, got %s", got)
	}
}

func TestFunc_EvalDomain(t *testing.T) {
	_, err := expr.LnOf(x).Eval("x", num.Float(-1))
	if !errors.Is(err, expr.ErrDomain) {
		t.Errorf("want ErrDomain, got %v", err)
	}
}

func TestFunc_AbsStaysExact(t *testing.T) {
	v, err := expr.AbsOf(x).Eval("x", num.Frac(-7, 3))
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "7/3" {
		t.Errorf("want 7/3, got %s", v)
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFreeSymbols(t *testing.T) {
	got := expr.FreeSymbols(expr.MustParse("x*y + sin(z) + pi"))
	want := []string{"x", "y", "z"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("want %v, got %v", want, got)
		}
	}
}

func TestEqual_CrossType(t *testing.T) {
	if expr.N(1).Equal(x) {
		t.Error("Num should not equal Sym")
	}
	if !expr.Pi.Equal(expr.MustParse("pi")) {
		t.Error("pi should equal the parsed constant")
	}
}

// ============================================================
// JSON
// ============================================================

func TestJSON_RoundTrip(t *testing.T) {
	for _, src := range []string{"x^2 - 8x + 11", "(8x - 11)/x", "sin(x)^2 + E", "sqrt(abs(x))"} {
		e := expr.MustParse(src)
		text, err := expr.ToJSON(e)
		if err != nil {
			t.Fatal(err)
		}
		var tree map[string]interface{}
		if err := json.Unmarshal([]byte(text), &tree); err != nil {
			t.Fatal(err)
		}
		back, err := expr.FromJSON(tree)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		if !back.Equal(e) {
			t.Errorf("%s: want %s, got %s", src, e, back)
		}
	}
}

func TestFromJSON_Errors(t *testing.T) {
	bad := []map[string]interface{}{
		nil,
		{"type": "num"},
		{"type": "num", "value": "abc"},
		{"type": "func", "name": "gamma", "arg": map[string]interface{}{"type": "sym", "name": "x"}},
		{"type": "add", "terms": []interface{}{}},
		{"type": "const", "name": "tau"},
		{"type": "matrix"},
	}
	for _, data := range bad {
		if _, err := expr.FromJSON(data); err == nil {
			t.Errorf("want error for %v", data)
		}
	}
}

// ============================================================
// Evaluation
// ============================================================

func TestEval_RationalIsExact(t *testing.T) {
	f := expr.MustParse("x^2 - 8x + 11")
	v, err := expr.Eval(f, "x", num.Frac(3, 2))
	if err != nil {
		t.Fatal(err)
	}
	// 9/4 - 12 + 11
	if v.String() != "5/4" {
		t.Errorf("want 5/4, got %s", v)
	}
}

func TestEval_TranscendentalInRationalMode(t *testing.T) {
	v, err := expr.Eval(expr.MustParse("cos(x)"), "x", num.Int(0))
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsRational() || v.String() != "1" {
		t.Errorf("want rational 1, got %s", v)
	}
	v, err = expr.Eval(expr.MustParse("sin(x) + 0"), "x", num.Int(1))
	if err != nil {
		t.Fatal(err)
	}
	if !v.IsRational() || math.Abs(v.Float64()-math.Sin(1)) > 1e-15 {
		t.Errorf("want rational sin(1), got %s", v)
	}
}

func TestEval_DivisionByZero(t *testing.T) {
	_, err := expr.Eval(expr.MustParse("1/x"), "x", num.Int(0))
	if !errors.Is(err, num.ErrDivisionByZero) {
		t.Errorf("want ErrDivisionByZero, got %v", err)
	}
}

func TestDeterminism(t *testing.T) {
	a := expr.MustParse("z*y + x*sin(x) + 3")
	b := expr.MustParse("z*y + x*sin(x) + 3")
	if a.String() != b.String() {
		t.Errorf("non-deterministic output: %s vs %s", a, b)
	}
}
