package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/exactmass/pkg/core"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check FORMULA...",
		Short: "Validate formulas",
		Long: `Check that each formula is made of element symbols with optional counts
and that every symbol is a known element. Exits non-zero if any formula is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newRenderer(cmd.OutOrStdout(), a.cfg.Output)

			invalid := 0
			rows := make([][]string, 0, len(args))
			for _, formula := range args {
				c := core.NewCompound(formula)
				if err := c.Err(); err != nil {
					invalid++
					rows = append(rows, []string{formula, r.style(errStyle, "invalid"), err.Error()})
					continue
				}
				rows = append(rows, []string{formula, r.style(okStyle, "valid"), c.Formula()})
			}

			if err := r.render([]string{"formula", "status", "detail"}, rows); err != nil {
				return fmt.Errorf("failed to render: %w", err)
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d formulas are invalid", invalid, len(args))
			}
			return nil
		},
	}
}
