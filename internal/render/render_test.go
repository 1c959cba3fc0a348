package render

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/numethods"
	"github.com/njchilds90/numethods/expr"
	"github.com/njchilds90/numethods/num"
)

const quadratic = "x^2 - 8x + 11"

func printer(opts Options) (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	if opts.Color == "" {
		opts.Color = "never"
	}
	if opts.Precision == 0 {
		opts.Precision = 4
	}
	return New(&buf, opts), &buf
}

func bisect(t *testing.T, rational bool) (num.Value, numethods.Result[numethods.BisectionStep]) {
	t.Helper()
	tol := num.MustParse("0.001")
	res, err := numethods.Bisection(quadratic, num.Int(1), num.Int(2), tol, numethods.Options{Rational: rational, Trace: true})
	require.NoError(t, err)
	return tol, res
}

func TestBisectionTable(t *testing.T) {
	tol, res := bisect(t, false)
	p, buf := printer(Options{})
	require.NoError(t, p.Bisection(quadratic, tol, res, 0))

	out := buf.String()
	for _, want := range []string{
		"Expected iterations: 10",
		"ITERATION:",
		"[I]", "f(a)", "(b-c)", "swap",
		"b = c", "a = c",
		"Since 0.0010 <= 0.0010, c is the root.",
		"The root is: 1.7646",
		"Iterations: 10",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[", "color must be off")
	assert.NotContains(t, out, "Computation took")
}

func TestBisectionExact(t *testing.T) {
	tol, res := bisect(t, true)
	p, buf := printer(Options{Exact: true})
	require.NoError(t, p.Bisection(quadratic, tol, res, 0))
	assert.Contains(t, buf.String(), "The root is: 1807/1024")
	assert.Contains(t, buf.String(), "1/1024 <= 1/1000")
}

func TestNoTraceSkipsTable(t *testing.T) {
	res, err := numethods.Bisection(quadratic, num.Int(1), num.Int(2), num.MustParse("0.001"), numethods.Options{})
	require.NoError(t, err)
	p, buf := printer(Options{})
	require.NoError(t, p.Bisection(quadratic, num.MustParse("0.001"), res, 0))
	assert.NotContains(t, buf.String(), "ITERATION:")
	assert.Contains(t, buf.String(), "The root is: 1.7646")
}

func TestFalsePositionTable(t *testing.T) {
	res, err := numethods.FalsePosition(quadratic, num.Int(1), num.Int(2), numethods.Options{Trace: true})
	require.NoError(t, err)
	p, buf := printer(Options{})
	require.NoError(t, p.FalsePosition(quadratic, res, 0))

	out := buf.String()
	assert.Contains(t, out, "CoS")
	assert.Contains(t, out, "f(b)")
	assert.Contains(t, out, "c is the root.")
	assert.Contains(t, out, "The root is: 1.7639")
	assert.Contains(t, out, "Iterations: 5")
}

func TestOpenMethodTables(t *testing.T) {
	fp, err := numethods.FixedPoint("(x^2+11)/8", num.Int(3), numethods.Options{Trace: true})
	require.NoError(t, err)
	p, buf := printer(Options{})
	require.NoError(t, p.FixedPoint("(x^2+11)/8", fp, 0))
	assert.Contains(t, buf.String(), "e%")
	assert.Contains(t, buf.String(), " - ", "first row has no percent error")
	assert.Contains(t, buf.String(), "Xn is the root.")
	assert.Contains(t, buf.String(), "Iterations: 13")

	nr, err := numethods.NewtonRaphson(quadratic, num.Int(1), numethods.Options{Trace: true})
	require.NoError(t, err)
	p, buf = printer(Options{Precision: 6})
	require.NoError(t, p.NewtonRaphson(quadratic, nr, 0))
	assert.Contains(t, buf.String(), "f'(Xn)")
	assert.Contains(t, buf.String(), "Xn is the root.")
	assert.Contains(t, buf.String(), "The root is: 1.763932")
}

func TestTiming(t *testing.T) {
	nr, err := numethods.NewtonRaphson(quadratic, num.Int(1), numethods.Options{})
	require.NoError(t, err)
	p, buf := printer(Options{Timing: true})
	require.NoError(t, p.NewtonRaphson(quadratic, nr, 2500*time.Microsecond))
	assert.Contains(t, buf.String(), "Computation took 2.500 ms")
}

func TestJSONReport(t *testing.T) {
	tol, res := bisect(t, true)
	p, buf := printer(Options{Format: FormatJSON})
	require.NoError(t, p.Bisection(quadratic, tol, res, 0))

	var report struct {
		Method     string              `json:"method"`
		Formula    string              `json:"formula"`
		Root       string              `json:"root"`
		Iterations int                 `json:"iterations"`
		Tolerance  string              `json:"tolerance"`
		Steps      []map[string]string `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "bisection", report.Method)
	assert.Equal(t, quadratic, report.Formula)
	assert.Equal(t, "1807/1024", report.Root)
	assert.Equal(t, 10, report.Iterations)
	assert.Equal(t, "1/1000", report.Tolerance)
	require.Len(t, report.Steps, 10)
	assert.Equal(t, "3/2", report.Steps[0]["c"])
}

func TestYAMLReport(t *testing.T) {
	res, err := numethods.NewtonRaphson("x^3 - 3x + 1", num.Int(0), numethods.Options{Rational: true, Trace: true})
	require.NoError(t, err)
	p, buf := printer(Options{Format: FormatYAML})
	require.NoError(t, p.NewtonRaphson("x^3 - 3x + 1", res, 0))

	var report struct {
		Method     string `yaml:"method"`
		Root       string `yaml:"root"`
		Iterations int    `yaml:"iterations"`
		Steps      []struct {
			Xn    string `yaml:"xn"`
			Error string `yaml:"error"`
		} `yaml:"steps"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &report), buf.String())
	assert.Equal(t, "newton_raphson", report.Method)
	assert.Equal(t, "170999/492372", report.Root)
	assert.Equal(t, 3, report.Iterations)
	require.Len(t, report.Steps, 3)
	assert.Equal(t, "0", report.Steps[0].Xn)
	assert.Empty(t, report.Steps[0].Error)
	assert.Equal(t, "1/3", report.Steps[1].Xn)
}

func TestFailure(t *testing.T) {
	_, sameSign := numethods.Bisection(quadratic, num.Int(2), num.Int(3), num.MustParse("0.1"), numethods.Options{})
	_, reversed := numethods.Bisection(quadratic, num.Int(2), num.Int(1), num.MustParse("0.1"), numethods.Options{})
	_, diverges := numethods.FixedPoint("8x - 11", num.Int(3), numethods.Options{})
	_, syntax := numethods.NewtonRaphson("x +", num.Int(1), numethods.Options{})

	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"same sign", sameSign, []string{"f(a) = -1.0000, f(b) = -4.0000", "should have different signs"}},
		{"reversed", reversed, []string{"a must not be greater than b", "--swap"}},
		{"diverges", diverges, []string{"Since I[99] >= 99", "indefinite function", "after 100 iterations"}},
		{"syntax", syntax, []string{"Syntax error at column"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			p, buf := printer(Options{})
			require.NoError(t, p.Failure(tt.err))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}

	p, buf := printer(Options{Format: FormatJSON})
	require.NoError(t, p.Failure(diverges))
	var body map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &body))
	assert.Contains(t, body["error"], "did not converge")
}

func TestExpression(t *testing.T) {
	f := expr.MustParse("x^2-8x+11")
	p, buf := printer(Options{})
	require.NoError(t, p.Expression(f, "x"))
	assert.Contains(t, buf.String(), "x^2 - 8*x + 11")
	assert.Contains(t, buf.String(), "x^{2} - 8 x + 11")
	assert.Contains(t, buf.String(), "2*x - 8")

	p, buf = printer(Options{Format: FormatJSON})
	require.NoError(t, p.Expression(f, "x"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &body))
	assert.Equal(t, "2*x - 8", body["derivative"])
	assert.Equal(t, "add", body["tree"].(map[string]interface{})["type"])
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, ColorEnabled("always", &buf))
	assert.False(t, ColorEnabled("never", &buf))
	assert.False(t, ColorEnabled("auto", &buf), "a buffer is not a terminal")

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled("auto", &buf))

	nr, err := numethods.NewtonRaphson(quadratic, num.Int(1), numethods.Options{})
	require.NoError(t, err)
	p, out := printer(Options{Color: "always"})
	require.NoError(t, p.NewtonRaphson(quadratic, nr, 0))
	assert.Contains(t, out.String(), "\x1b[")
}
