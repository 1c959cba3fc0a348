package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/numethods"
	"github.com/njchilds90/numethods/expr"
	"github.com/njchilds90/numethods/internal/render"
)

func newParseCmd(a *app) *cobra.Command {
	var output, variable string

	cmd := &cobra.Command{
		Use:   "parse <formula>",
		Short: "Show the canonical form, LaTeX and derivative of a formula",
		Example: `  numethods parse "x^2 - 8x + 11"
  numethods parse "sin^2(x) + 2pi" -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := a.cfg.Output.Format
			if cmd.Flags().Changed("output") {
				format = output
			}
			p := render.New(cmd.OutOrStdout(), render.Options{Format: format, Color: a.cfg.Output.Color})

			f, err := expr.Parse(args[0])
			if err != nil {
				if perr := p.Failure(err); perr != nil {
					return perr
				}
				return errReported
			}
			if err := p.Expression(f, variable); err != nil {
				return fmt.Errorf("print expression: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: table, json, yaml")
	cmd.Flags().StringVar(&variable, "var", numethods.Variable, "variable to differentiate by")
	return cmd
}
