package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/numethods"
	"github.com/njchilds90/numethods/internal/render"
	"github.com/njchilds90/numethods/num"
)

// prompter reads one line per prompt. *liner.State implements it.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

const separator = "-----------------------------------------------------------------"

func newInteractiveCmd(a *app) *cobra.Command {
	var noTrace bool

	cmd := &cobra.Command{
		Use:       "interactive <method>",
		Aliases:   []string{"repl"},
		Short:     "Prompt for formulas and values until exit",
		Example:   "  numethods interactive bisection",
		ValidArgs: []string{"bisection", "false-position", "fixed-point", "newton-raphson"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _ := findMethod(args[0])
			opts, ro := a.options(cmd)
			opts.Trace = !noTrace
			ro.Format = render.FormatTable

			line := liner.NewLiner()
			line.SetCtrlCAborts(true)

			s := newSession(m, line, cmd.OutOrStdout(), ro, opts, a.cfg.Solver.Tolerance, a.log)
			return s.run()
		},
	}
	f := cmd.Flags()
	f.BoolVar(&a.solve.rational, "rational", false, "exact rational arithmetic")
	f.BoolVar(&a.solve.swap, "swap", false, "reorder a > b instead of failing")
	f.BoolVar(&a.solve.exact, "exact", false, "print rational values as fractions")
	f.BoolVar(&a.solve.timing, "timing", false, "print computation time")
	f.IntVar(&a.solve.precision, "precision", 4, "decimals shown in tables")
	f.BoolVar(&noTrace, "no-trace", false, "print only the root")
	return cmd
}

// session is one interactive loop for a single method.
type session struct {
	method method
	in     prompter
	out    io.Writer
	p      *render.Printer
	opts   numethods.Options
	tol    string
	log    *zap.Logger
}

func newSession(m method, in prompter, out io.Writer, ro render.Options, opts numethods.Options, tol string, log *zap.Logger) *session {
	return &session{method: m, in: in, out: out, p: render.New(out, ro), opts: opts, tol: tol, log: log}
}

// run loops until exit, EOF or Ctrl-C. Bad input is reported and the loop
// starts over.
func (s *session) run() error {
	defer s.in.Close()

	for {
		formula, ok := s.ask("Formula >> ")
		if !ok {
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}
		if formula == "" {
			continue
		}

		values := make([]num.Value, len(s.method.params))
		for i, name := range s.method.params {
			v, ok := s.number(name + " Value >> ")
			if !ok {
				fmt.Fprintln(s.out, "Exiting...")
				return nil
			}
			values[i] = v
		}
		var tol num.Value
		if s.method.usesTolerance() {
			text, ok := s.ask(fmt.Sprintf("Error Value [%s] >> ", s.tol))
			if !ok {
				fmt.Fprintln(s.out, "Exiting...")
				return nil
			}
			if text == "" {
				text = s.tol
			}
			var err error
			if tol, err = num.Parse(text, s.mode()); err != nil {
				s.fail(fmt.Errorf("error value: %w", err))
				continue
			}
		}

		fmt.Fprintln(s.out)
		if err := s.method.solve(s.p, formula, values, tol, s.opts); err != nil {
			s.fail(err)
		}
		fmt.Fprintln(s.out, separator)
		fmt.Fprintln(s.out)
	}
}

func (s *session) mode() num.Mode {
	if s.opts.Rational {
		return num.ModeRational
	}
	return num.ModeFloat
}

// number prompts until the reply parses or the user leaves.
func (s *session) number(prompt string) (num.Value, bool) {
	for {
		text, ok := s.ask(prompt)
		if !ok {
			return num.Value{}, false
		}
		v, err := num.Parse(text, s.mode())
		if err == nil {
			return v, true
		}
		fmt.Fprintf(s.out, "Not a number: %q\n", text)
	}
}

func (s *session) fail(err error) {
	if perr := s.p.Failure(err); perr != nil {
		s.log.Warn("print failure", zap.Error(perr))
	}
}

func (s *session) ask(prompt string) (string, bool) {
	text, err := s.in.Prompt(prompt)
	if err != nil {
		if !errors.Is(err, io.EOF) && !errors.Is(err, liner.ErrPromptAborted) {
			s.log.Warn("prompt failed", zap.Error(err))
		}
		fmt.Fprintln(s.out)
		return "", false
	}
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, "exit") {
		return "", false
	}
	if text != "" {
		s.in.AppendHistory(text)
	}
	return text, true
}
