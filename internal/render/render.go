// Package render prints solver results to a terminal as trace tables and
// summary lines, or encodes them as JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/njchilds90/numethods"
	"github.com/njchilds90/numethods/expr"
	"github.com/njchilds90/numethods/num"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Options controls presentation.
type Options struct {
	Format    string
	Precision int
	// Exact prints rational values as fractions instead of decimals.
	Exact bool
	// Color is "auto", "always" or "never".
	Color  string
	Timing bool
}

// Printer writes results to one writer.
type Printer struct {
	w     io.Writer
	opts  Options
	re    *lipgloss.Renderer
	color bool

	title *color.Color
	good  *color.Color
	note  *color.Color
	bad   *color.Color
	faint *color.Color
}

// New returns a Printer for w.
func New(w io.Writer, opts Options) *Printer {
	if opts.Format == "" {
		opts.Format = FormatTable
	}
	p := &Printer{
		w:     w,
		opts:  opts,
		re:    lipgloss.NewRenderer(w),
		color: ColorEnabled(opts.Color, w),
		title: color.New(color.Bold),
		good:  color.New(color.FgGreen, color.Bold),
		note:  color.New(color.FgCyan),
		bad:   color.New(color.FgRed),
		faint: color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.title, p.good, p.note, p.bad, p.faint} {
		if p.color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	if p.color {
		p.re.SetColorProfile(termenv.ANSI256)
	} else {
		p.re.SetColorProfile(termenv.Ascii)
	}
	return p
}

// ColorEnabled decides whether output to w is colored. In auto mode color
// needs a terminal and no NO_COLOR in the environment.
func ColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if termenv.EnvNoColor() {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Report is the machine-readable form of one solver run.
type Report struct {
	Method     string      `json:"method" yaml:"method"`
	Formula    string      `json:"formula" yaml:"formula"`
	Root       num.Value   `json:"root" yaml:"root"`
	Iterations int         `json:"iterations" yaml:"iterations"`
	Tolerance  *num.Value  `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`
	ElapsedMS  float64     `json:"elapsed_ms,omitempty" yaml:"elapsed_ms,omitempty"`
	Steps      interface{} `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// NewReport builds a Report from a solver result.
func NewReport[S any](method, formula string, res numethods.Result[S]) Report {
	r := Report{Method: method, Formula: formula, Root: res.Root, Iterations: res.Iterations}
	if len(res.Steps) > 0 {
		r.Steps = res.Steps
	}
	return r
}

func (p *Printer) encode(v interface{}) error {
	switch p.opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = p.w.Write(out)
		return err
	}
	return fmt.Errorf("unknown output format %q", p.opts.Format)
}

func (p *Printer) report(r Report, elapsed time.Duration) error {
	if p.opts.Timing {
		r.ElapsedMS = float64(elapsed.Microseconds()) / 1000
	}
	return p.encode(r)
}

func (p *Printer) val(v num.Value) string {
	if p.opts.Exact && v.IsRational() {
		return v.String()
	}
	return v.Format(p.opts.Precision)
}

func (p *Printer) percent(v *num.Value) string {
	if v == nil {
		return "-"
	}
	return p.val(*v)
}

func (p *Printer) table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.re.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := p.re.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true).Foreground(lipgloss.Color("75"))
			}
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	return t.String()
}

func (p *Printer) printTrace(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(p.w, p.title.Sprint("ITERATION:"))
	fmt.Fprintln(p.w, p.table(headers, rows))
	fmt.Fprintln(p.w)
}

func (p *Printer) finish(conclusion string, root num.Value, iterations int, elapsed time.Duration) {
	if conclusion != "" {
		fmt.Fprintln(p.w, p.note.Sprint(conclusion))
	}
	fmt.Fprintf(p.w, "The root is: %s\n", p.good.Sprint(p.val(root)))
	fmt.Fprintf(p.w, "Iterations: %d\n", iterations)
	if p.opts.Timing {
		fmt.Fprintln(p.w, p.faint.Sprintf("Computation took %.3f ms", float64(elapsed.Microseconds())/1000))
	}
}

func counter(i int) string { return fmt.Sprintf("%2d", i) }

// Bisection prints a bisection result.
func (p *Printer) Bisection(formula string, tol num.Value, res numethods.Result[numethods.BisectionStep], elapsed time.Duration) error {
	if p.opts.Format != FormatTable {
		r := NewReport("bisection", formula, res)
		r.Tolerance = &tol
		return p.report(r, elapsed)
	}

	rows := make([][]string, len(res.Steps))
	for i, s := range res.Steps {
		rows[i] = []string{counter(res.Counter(i)), p.val(s.A), p.val(s.B), p.val(s.C), p.val(s.FA), p.val(s.FC), p.val(s.BC), s.Branch.String()}
	}
	var conclusion string
	if n := len(res.Steps); n > 0 {
		first, last := res.Steps[0], res.Steps[n-1]
		if est := numethods.EstimateBisectionIterations(first.A, first.B, tol); est > 0 {
			fmt.Fprintf(p.w, "Expected iterations: %d\n\n", est)
		}
		conclusion = fmt.Sprintf("Since %s <= %s, c is the root.", p.val(last.BC), p.val(tol))
	}
	p.printTrace([]string{"[I]", "a", "b", "c", "f(a)", "f(c)", "(b-c)", "swap"}, rows)
	p.finish(conclusion, res.Root, res.Iterations, elapsed)
	return nil
}

// FalsePosition prints a false-position result.
func (p *Printer) FalsePosition(formula string, res numethods.Result[numethods.FalsePositionStep], elapsed time.Duration) error {
	if p.opts.Format != FormatTable {
		return p.report(NewReport("false_position", formula, res), elapsed)
	}

	rows := make([][]string, len(res.Steps))
	for i, s := range res.Steps {
		rows[i] = []string{counter(res.Counter(i)), p.val(s.A), p.val(s.B), p.val(s.FA), p.val(s.FB), p.val(s.C), p.val(s.FC), s.Branch.Sign()}
	}
	var conclusion string
	if n := len(res.Steps); n > 0 {
		last := res.Steps[n-1]
		conclusion = fmt.Sprintf("Since %s is converging with %s, c is the root.", p.val(last.B), p.val(last.C))
	}
	p.printTrace([]string{"[I]", "a", "b", "f(a)", "f(b)", "c", "f(c)", "CoS"}, rows)
	p.finish(conclusion, res.Root, res.Iterations, elapsed)
	return nil
}

// FixedPoint prints a fixed-point result.
func (p *Printer) FixedPoint(formula string, res numethods.Result[numethods.FixedPointStep], elapsed time.Duration) error {
	if p.opts.Format != FormatTable {
		return p.report(NewReport("fixed_point", formula, res), elapsed)
	}

	rows := make([][]string, len(res.Steps))
	for i, s := range res.Steps {
		rows[i] = []string{counter(res.Counter(i)), p.val(s.Xn), p.percent(s.PercentError)}
	}
	var conclusion string
	if n := len(res.Steps); n > 0 {
		last := res.Steps[n-1]
		switch {
		case zeroPercent(last.PercentError):
			conclusion = fmt.Sprintf("Since %s%% = 0%%, Xn is the root.", p.val(*last.PercentError))
		case n > 1:
			conclusion = fmt.Sprintf("Since %s is converging with %s, Xn is the root.", p.val(res.Steps[n-2].Xn), p.val(last.Xn))
		}
	}
	p.printTrace([]string{"[I]", "Xn", "e%"}, rows)
	p.finish(conclusion, res.Root, res.Iterations, elapsed)
	return nil
}

// NewtonRaphson prints a Newton-Raphson result.
func (p *Printer) NewtonRaphson(formula string, res numethods.Result[numethods.NewtonStep], elapsed time.Duration) error {
	if p.opts.Format != FormatTable {
		return p.report(NewReport("newton_raphson", formula, res), elapsed)
	}

	rows := make([][]string, len(res.Steps))
	for i, s := range res.Steps {
		rows[i] = []string{counter(res.Counter(i)), p.val(s.Xn), p.val(s.FX), p.val(s.FPX), p.percent(s.PercentError)}
	}
	var conclusion string
	if n := len(res.Steps); n > 0 {
		last := res.Steps[n-1]
		if zeroPercent(last.PercentError) {
			conclusion = fmt.Sprintf("Since %s%% = 0%%, Xn is the root.", p.val(*last.PercentError))
		} else {
			conclusion = fmt.Sprintf("Since %s is converging, Xn is the root.", p.val(last.FPX))
		}
	}
	p.printTrace([]string{"[I]", "Xn", "f(Xn)", "f'(Xn)", "e%"}, rows)
	p.finish(conclusion, res.Root, res.Iterations, elapsed)
	return nil
}

func zeroPercent(v *num.Value) bool {
	return v != nil && v.Round(4).IsZero()
}

// Expression is the machine-readable form of a parsed formula.
type Expression struct {
	String     string      `json:"string" yaml:"string"`
	LaTeX      string      `json:"latex" yaml:"latex"`
	Derivative string      `json:"derivative" yaml:"derivative"`
	Tree       interface{} `json:"tree" yaml:"tree"`
}

// Expression prints the canonical form, LaTeX and derivative of f.
func (p *Printer) Expression(f expr.Expr, variable string) error {
	d := expr.Diff(f, variable)
	if p.opts.Format != FormatTable {
		return p.encode(Expression{String: f.String(), LaTeX: f.LaTeX(), Derivative: d.String(), Tree: expr.Tree(f)})
	}
	rows := [][]string{
		{"f(" + variable + ")", f.String()},
		{"LaTeX", f.LaTeX()},
		{"f'(" + variable + ")", d.String()},
	}
	fmt.Fprintln(p.w, p.table(nil, rows))
	return nil
}
