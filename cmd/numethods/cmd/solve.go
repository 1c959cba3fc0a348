package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/njchilds90/numethods"
	"github.com/njchilds90/numethods/internal/render"
	"github.com/njchilds90/numethods/num"
)

// solveFlags are shared by the four method subcommands. Unset flags fall
// back to the configuration file.
type solveFlags struct {
	rational  bool
	swap      bool
	trace     bool
	exact     bool
	timing    bool
	tol       string
	output    string
	precision int
}

// method describes one solver for the command line and the interactive
// prompt.
type method struct {
	name    string
	short   string
	bracket bool
	// params are the interactive prompts for the numeric arguments, in
	// order.
	params []string
	solve  func(p *render.Printer, formula string, v []num.Value, tol num.Value, opts numethods.Options) error
}

var methods = []method{
	{
		name:    "bisection",
		short:   "Bisection method on [a, b]",
		bracket: true,
		params:  []string{"a", "b"},
		solve: func(p *render.Printer, formula string, v []num.Value, tol num.Value, opts numethods.Options) error {
			start := time.Now()
			res, err := numethods.Bisection(formula, v[0], v[1], tol, opts)
			if err != nil {
				return err
			}
			return p.Bisection(formula, tol, res, time.Since(start))
		},
	},
	{
		name:    "false-position",
		short:   "False-position (regula falsi) method on [a, b]",
		bracket: true,
		params:  []string{"a", "b"},
		solve: func(p *render.Printer, formula string, v []num.Value, _ num.Value, opts numethods.Options) error {
			start := time.Now()
			res, err := numethods.FalsePosition(formula, v[0], v[1], opts)
			if err != nil {
				return err
			}
			return p.FalsePosition(formula, res, time.Since(start))
		},
	},
	{
		name:   "fixed-point",
		short:  "Fixed-point iteration x = f(x) from Xn",
		params: []string{"Xn"},
		solve: func(p *render.Printer, formula string, v []num.Value, _ num.Value, opts numethods.Options) error {
			start := time.Now()
			res, err := numethods.FixedPoint(formula, v[0], opts)
			if err != nil {
				return err
			}
			return p.FixedPoint(formula, res, time.Since(start))
		},
	},
	{
		name:   "newton-raphson",
		short:  "Newton-Raphson method from Xn",
		params: []string{"Xn"},
		solve: func(p *render.Printer, formula string, v []num.Value, _ num.Value, opts numethods.Options) error {
			start := time.Now()
			res, err := numethods.NewtonRaphson(formula, v[0], opts)
			if err != nil {
				return err
			}
			return p.NewtonRaphson(formula, res, time.Since(start))
		},
	},
}

func findMethod(name string) (method, bool) {
	for _, m := range methods {
		if m.name == name {
			return m, true
		}
	}
	return method{}, false
}

func (m method) usesTolerance() bool { return m.name == "bisection" }

func newSolveCmd(a *app, m method) *cobra.Command {
	use := m.name + " <formula> <a> <b>"
	example := fmt.Sprintf("  numethods %s \"x^2 - 8x + 11\" 1 2 --trace", m.name)
	if !m.bracket {
		use = m.name + " <formula> <Xn>"
		example = fmt.Sprintf("  numethods %s \"x^2 - 8x + 11\" 1 --trace", m.name)
		if m.name == "fixed-point" {
			example = "  numethods fixed-point \"(x^2 + 11)/8\" 3 --trace"
		}
	}

	cmd := &cobra.Command{
		Use:     use,
		Short:   m.short,
		Example: example,
		Args:    cobra.ExactArgs(1 + len(m.params)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSolve(cmd, m, args)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&a.solve.rational, "rational", false, "exact rational arithmetic")
	f.BoolVar(&a.solve.trace, "trace", false, "print every iteration")
	f.BoolVar(&a.solve.exact, "exact", false, "print rational values as fractions")
	f.BoolVar(&a.solve.timing, "timing", false, "print computation time")
	f.StringVarP(&a.solve.output, "output", "o", "", "output format: table, json, yaml")
	f.IntVar(&a.solve.precision, "precision", 4, "decimals shown in tables")
	if m.bracket {
		f.BoolVar(&a.solve.swap, "swap", false, "reorder a > b instead of failing")
	}
	if m.usesTolerance() {
		f.StringVar(&a.solve.tol, "tol", "", "error tolerance (default from config, 0.001)")
	}
	return cmd
}

// options merges changed flags over the configuration.
func (a *app) options(cmd *cobra.Command) (numethods.Options, render.Options) {
	sc, oc := a.cfg.Solver, a.cfg.Output
	flags := cmd.Flags()
	if flags.Changed("rational") {
		sc.Rational = a.solve.rational
	}
	if flags.Changed("swap") {
		sc.Swap = a.solve.swap
	}
	if flags.Changed("trace") {
		sc.Trace = a.solve.trace
	}
	if flags.Changed("timing") {
		oc.Timing = a.solve.timing
	}
	if flags.Changed("output") {
		oc.Format = a.solve.output
	}
	if flags.Changed("precision") {
		oc.Precision = a.solve.precision
	}
	if flags.Changed("tol") {
		sc.Tolerance = a.solve.tol
	}
	a.cfg.Solver = sc

	solver := numethods.Options{Rational: sc.Rational, Swap: sc.Swap, Trace: sc.Trace, Logger: a.log}
	out := render.Options{
		Format:    oc.Format,
		Precision: oc.Precision,
		Exact:     a.solve.exact,
		Color:     oc.Color,
		Timing:    oc.Timing,
	}
	return solver, out
}

func (a *app) runSolve(cmd *cobra.Command, m method, args []string) error {
	opts, ro := a.options(cmd)
	switch ro.Format {
	case render.FormatTable, render.FormatJSON, render.FormatYAML:
	default:
		return fmt.Errorf("unknown output format %q", ro.Format)
	}
	p := render.New(cmd.OutOrStdout(), ro)

	mode := num.ModeFloat
	if opts.Rational {
		mode = num.ModeRational
	}
	values := make([]num.Value, len(m.params))
	for i, name := range m.params {
		v, err := num.Parse(args[i+1], mode)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		values[i] = v
	}
	var tol num.Value
	if m.usesTolerance() {
		var err error
		if tol, err = a.cfg.Tolerance(mode); err != nil {
			return fmt.Errorf("tolerance: %w", err)
		}
	}

	if err := m.solve(p, args[0], values, tol, opts); err != nil {
		if perr := p.Failure(err); perr != nil {
			return perr
		}
		return errReported
	}
	return nil
}
