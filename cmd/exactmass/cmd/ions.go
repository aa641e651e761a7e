package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/exactmass/pkg/calc"
	"github.com/ChrisMcGann/exactmass/pkg/core"
)

func newIonsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ions FORMULA",
		Short: "Calculate every configured ion of a formula",
		Long: `Calculate the masses of all ion columns for one formula. Columns come from
the ions list of the config file, or default to neutral, [M-H]-, [M+H]+,
[M+Na]+ and [M+K]+. Ions that cannot be formed show N/A or ---.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, err := a.cfg.IonColumns()
			if err != nil {
				return err
			}

			compound := core.NewCompound(args[0])
			if err := compound.Err(); err != nil {
				return err
			}

			table := core.NewTable(columns)
			row := table.AddRow("", compound.Formula())
			cfg := &calc.Config{Precision: a.cfg.MassPrecision(), Logger: a.logger}
			if _, err := cfg.Apply(cmd.Context(), table); err != nil {
				return err
			}

			r := newRenderer(cmd.OutOrStdout(), a.cfg.Output)
			rows := make([][]string, 0, len(columns))
			for i, col := range columns {
				if col.RetentionTime {
					continue
				}
				cell := row.Cells[i]
				switch cell {
				case calc.NotAvailable:
					cell = r.style(mutedStyle, cell)
				case calc.Failed:
					cell = r.style(warningStyle, cell)
				}
				rows = append(rows, []string{col.Name, cell})
			}

			if err := r.render([]string{"ion", "mass"}, rows); err != nil {
				return fmt.Errorf("failed to render: %w", err)
			}
			return nil
		},
	}
}
