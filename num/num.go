// Package num provides the numeric value used throughout the root finders.
//
// A Value is either an exact rational (math/big.Rat) or a float64
// approximation. The representation is picked once per computation and every
// intermediate value keeps it; binary operations on mixed modes fall back to
// float arithmetic.
package num

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Mode selects the representation of a Value.
type Mode int

const (
	ModeFloat Mode = iota
	ModeRational
)

func (m Mode) String() string {
	if m == ModeRational {
		return "rational"
	}
	return "float"
}

// ErrDivisionByZero is returned by Quo and PowInt when the divisor is zero.
var ErrDivisionByZero = errors.New("num: division by zero")

// Value is an immutable rational or float number. The zero Value is float 0.
type Value struct {
	r *big.Rat // non-nil in rational mode
	f float64
}

// ============================================================
// Constructors
// ============================================================

// Int returns the exact rational n.
func Int(n int64) Value { return Value{r: new(big.Rat).SetInt64(n)} }

// Frac returns the exact rational p/q. It panics if q is zero.
func Frac(p, q int64) Value {
	if q == 0 {
		panic("num: denominator is zero")
	}
	return Value{r: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// Float returns the float value f.
func Float(f float64) Value { return Value{f: f} }

// Rat returns an exact rational holding a copy of r.
func Rat(r *big.Rat) Value { return Value{r: new(big.Rat).Set(r)} }

// Zero returns 0 in mode m.
func Zero(m Mode) Value { return Int(0).Convert(m) }

// Parse reads an integer, decimal, exponent or p/q literal. Decimal text is
// read exactly, so "0.1" is 1/10 in rational mode.
func Parse(s string, m Mode) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, fmt.Errorf("num: empty number")
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Value{}, fmt.Errorf("num: invalid number %q", s)
	}
	return Value{r: r}.Convert(m), nil
}

// MustParse is Parse in rational mode that panics on malformed input.
func MustParse(s string) Value {
	v, err := Parse(s, ModeRational)
	if err != nil {
		panic(err)
	}
	return v
}

// ============================================================
// Mode handling
// ============================================================

func (v Value) Mode() Mode {
	if v.r != nil {
		return ModeRational
	}
	return ModeFloat
}

func (v Value) IsRational() bool { return v.r != nil }

// Convert returns v in mode m. Rational to float rounds to the nearest
// float64; float to rational is the exact binary value. NaN and ±Inf have
// no rational form and stay float.
func (v Value) Convert(m Mode) Value {
	switch {
	case m == ModeFloat && v.r != nil:
		return Value{f: v.Float64()}
	case m == ModeRational && v.r == nil:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return v
		}
		return Value{r: new(big.Rat).SetFloat64(v.f)}
	}
	return v
}

// Like returns v converted to the mode of o.
func (v Value) Like(o Value) Value { return v.Convert(o.Mode()) }

func (v Value) Float64() float64 {
	if v.r != nil {
		f, _ := v.r.Float64()
		return f
	}
	return v.f
}

// BitLen is the combined bit length of numerator and denominator. Floats
// report 0.
func (v Value) BitLen() int {
	if v.r == nil {
		return 0
	}
	return v.r.Num().BitLen() + v.r.Denom().BitLen()
}

// Rat returns a copy of the rational value, or the exact value of the
// float. It returns nil for NaN and ±Inf.
func (v Value) Rat() *big.Rat {
	if v.r != nil {
		return new(big.Rat).Set(v.r)
	}
	if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
		return nil
	}
	return new(big.Rat).SetFloat64(v.f)
}

func (v Value) IsFinite() bool {
	return v.r != nil || !(math.IsNaN(v.f) || math.IsInf(v.f, 0))
}

// ============================================================
// Arithmetic
// ============================================================

func (v Value) Add(o Value) Value {
	if v.r != nil && o.r != nil {
		return Value{r: new(big.Rat).Add(v.r, o.r)}
	}
	return Value{f: v.Float64() + o.Float64()}
}

func (v Value) Sub(o Value) Value {
	if v.r != nil && o.r != nil {
		return Value{r: new(big.Rat).Sub(v.r, o.r)}
	}
	return Value{f: v.Float64() - o.Float64()}
}

func (v Value) Mul(o Value) Value {
	if v.r != nil && o.r != nil {
		return Value{r: new(big.Rat).Mul(v.r, o.r)}
	}
	return Value{f: v.Float64() * o.Float64()}
}

// Quo returns v/o, or ErrDivisionByZero when o is zero in either mode.
func (v Value) Quo(o Value) (Value, error) {
	if o.IsZero() {
		return Value{}, ErrDivisionByZero
	}
	if v.r != nil && o.r != nil {
		return Value{r: new(big.Rat).Quo(v.r, o.r)}, nil
	}
	return Value{f: v.Float64() / o.Float64()}, nil
}

func (v Value) Neg() Value {
	if v.r != nil {
		return Value{r: new(big.Rat).Neg(v.r)}
	}
	return Value{f: -v.f}
}

func (v Value) Abs() Value {
	if v.r != nil {
		return Value{r: new(big.Rat).Abs(v.r)}
	}
	return Value{f: math.Abs(v.f)}
}

// PowInt returns v^n. Rational powers are exact.
func (v Value) PowInt(n int64) (Value, error) {
	if n < 0 && v.IsZero() {
		return Value{}, ErrDivisionByZero
	}
	if v.r == nil {
		return Value{f: math.Pow(v.f, float64(n))}, nil
	}
	e := n
	if e < 0 {
		e = -e
	}
	exp := big.NewInt(e)
	num := new(big.Int).Exp(v.r.Num(), exp, nil)
	den := new(big.Int).Exp(v.r.Denom(), exp, nil)
	if n < 0 {
		num, den = den, num
	}
	return Value{r: new(big.Rat).SetFrac(num, den)}, nil
}

// ============================================================
// Comparison
// ============================================================

func (v Value) Cmp(o Value) int {
	if v.r != nil && o.r != nil {
		return v.r.Cmp(o.r)
	}
	a, b := v.Float64(), o.Float64()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (v Value) Sign() int {
	if v.r != nil {
		return v.r.Sign()
	}
	switch {
	case v.f < 0:
		return -1
	case v.f > 0:
		return 1
	}
	return 0
}

func (v Value) IsZero() bool { return v.Sign() == 0 && !math.IsNaN(v.f) }

// IsInt reports whether v is a finite whole number.
func (v Value) IsInt() bool {
	if v.r != nil {
		return v.r.IsInt()
	}
	return !math.IsInf(v.f, 0) && v.f == math.Trunc(v.f)
}

// Int64 returns v as an int64 when it is a whole number that fits.
func (v Value) Int64() (int64, bool) {
	if !v.IsInt() {
		return 0, false
	}
	if v.r != nil {
		n := v.r.Num()
		if !n.IsInt64() {
			return 0, false
		}
		return n.Int64(), true
	}
	if math.Abs(v.f) > 1<<62 {
		return 0, false
	}
	return int64(v.f), true
}

// Equal reports whether v and o have the same mode and value.
func (v Value) Equal(o Value) bool {
	if v.Mode() != o.Mode() {
		return false
	}
	if v.r != nil {
		return v.r.Cmp(o.r) == 0
	}
	return v.f == o.f
}

// Round rounds v to places decimal digits. Ties go to the even digit, and a
// float is rounded by its exact binary value, so Float(0.03125).Round(4) is
// 0.0312.
func (v Value) Round(places int) Value {
	if v.r == nil {
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return v
		}
		f, _ := roundHalfEven(new(big.Rat).SetFloat64(v.f), places).Float64()
		return Value{f: f}
	}
	return Value{r: roundHalfEven(v.r, places)}
}

func roundHalfEven(x *big.Rat, places int) *big.Rat {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	s := new(big.Rat).Mul(x, new(big.Rat).SetInt(scale))
	q, rem := new(big.Int).QuoRem(s.Num(), s.Denom(), new(big.Int))
	twice := rem.Abs(rem)
	twice.Lsh(twice, 1)
	if c := twice.Cmp(s.Denom()); c > 0 || (c == 0 && q.Bit(0) == 1) {
		if s.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return new(big.Rat).SetFrac(q, scale)
}

// IsClose reports whether |a-b| <= max(rel*max(|a|,|b|), abs). Both
// tolerances are read as their shortest decimal text, so 1e-4 is exactly
// 1/10000 when a and b are rational.
func IsClose(a, b Value, rel, abs float64) bool {
	if a.r != nil && b.r != nil {
		diff := new(big.Rat).Sub(a.r, b.r)
		diff.Abs(diff)
		larger := new(big.Rat).Abs(a.r)
		if bb := new(big.Rat).Abs(b.r); bb.Cmp(larger) > 0 {
			larger = bb
		}
		tol := new(big.Rat).Mul(decimalRat(rel), larger)
		if at := decimalRat(abs); at.Cmp(tol) > 0 {
			tol = at
		}
		return diff.Cmp(tol) <= 0
	}
	x, y := a.Float64(), b.Float64()
	if x == y {
		return true
	}
	if math.IsInf(x, 0) || math.IsInf(y, 0) {
		return false
	}
	diff := math.Abs(x - y)
	return diff <= math.Max(rel*math.Max(math.Abs(x), math.Abs(y)), abs)
}

func decimalRat(f float64) *big.Rat {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		return new(big.Rat)
	}
	return r
}

// ============================================================
// Formatting
// ============================================================

// String renders rationals as "p/q" (or "p" for integers) and floats in
// their shortest form with a decimal point, so the text parses back into the
// same mode.
func (v Value) String() string {
	if v.r != nil {
		if v.r.IsInt() {
			return v.r.Num().String()
		}
		return v.r.RatString()
	}
	s := strconv.FormatFloat(v.f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

// Format renders v with a fixed number of decimals.
func (v Value) Format(precision int) string {
	if v.r != nil {
		return v.r.FloatString(precision)
	}
	return strconv.FormatFloat(v.f, 'f', precision, 64)
}

func (v Value) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText reads fractions and integers as rationals and anything with
// a decimal point or exponent as a float.
func (v *Value) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	mode := ModeRational
	if strings.ContainsAny(s, ".eE") {
		mode = ModeFloat
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && (math.IsInf(f, 0) || math.IsNaN(f)) {
		*v = Float(f)
		return nil
	}
	parsed, err := Parse(s, mode)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
