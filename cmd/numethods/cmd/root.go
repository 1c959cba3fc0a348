package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/numethods/internal/config"
	"github.com/njchilds90/numethods/internal/logging"
)

// errReported is returned after the failure has already been printed.
var errReported = errors.New("error already reported")

// app is the state shared by every subcommand of one invocation.
type app struct {
	cfgFile   string
	logLevel  string
	logFormat string
	color     string

	cfg *config.Config
	log *zap.Logger

	solve solveFlags
}

// Execute runs the command line.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError(os.Stderr, err)
	}
	return err
}

// NewRootCmd builds the numethods command tree.
func NewRootCmd() *cobra.Command {
	a := &app{cfg: config.Default(), log: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "numethods",
		Short: "Numerical root finding",
		Long: `numethods finds real roots of f(x) with four iterative methods:

  bisection       - halve a bracket [a, b] until b - c <= tolerance
  false-position  - regula falsi on a bracket [a, b]
  fixed-point     - iterate x = f(x) from a starting estimate
  newton-raphson  - Newton's method with the symbolic derivative

Formulas use x as the variable: x^2 - 8x + 11, sin(x) - x/2, exp(-x) - x.
Put -- before negative numbers: numethods bisection "x^3+1" -- -2 0`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: ./numethods.toml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: console, json")
	rootCmd.PersistentFlags().StringVar(&a.color, "color", "", "color output: auto, always, never")

	for _, m := range methods {
		rootCmd.AddCommand(newSolveCmd(a, m))
	}
	rootCmd.AddCommand(
		newEstimateCmd(a),
		newParseCmd(a),
		newInteractiveCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup loads configuration and builds the logger. Flags override the
// file.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, path, err := config.Discover(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.color != "" {
		cfg.Output.Color = a.color
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Name:   "numethods",
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, logger
	if path != "" {
		a.log.Debug("config loaded", zap.String("path", path))
	}
	return nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}
