package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/numethods"
	"github.com/njchilds90/numethods/num"
)

func newEstimateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate <a> <b> [tolerance]",
		Short: "Bisection iterations needed to reach the tolerance",
		Long: `Prints ceil(log2(|b - a| / tolerance)), the number of halvings bisection
needs on [a, b]. The tolerance defaults to the configured one.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var vals [3]num.Value
			for i, arg := range args {
				v, err := num.Parse(arg, num.ModeRational)
				if err != nil {
					return fmt.Errorf("argument %d: %w", i+1, err)
				}
				vals[i] = v
			}
			tol := vals[2]
			if len(args) == 2 {
				var err error
				if tol, err = a.cfg.Tolerance(num.ModeRational); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expected iterations: %d\n", numethods.EstimateBisectionIterations(vals[0], vals[1], tol))
			return nil
		},
	}
}
