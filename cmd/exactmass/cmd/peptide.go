package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/exactmass/pkg/core"
)

func newPeptideCmd(a *app) *cobra.Command {
	var (
		charge int
		adduct string
	)

	cmd := &cobra.Command{
		Use:   "peptide SEQUENCE...",
		Short: "Calculate formula and mass of linear peptides",
		Long: `Build the formula of each peptide from its one-letter amino acid sequence
and calculate its exact mass, or its m/z when a charge is given.`,
		Example: `  exactmass peptide PEPTIDE
  exactmass peptide GA GAA --charge 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			precision := a.cfg.MassPrecision()

			rows := make([][]string, 0, len(args))
			for _, seq := range args {
				c, err := core.NewPeptide(seq)
				if err != nil {
					return err
				}
				c.Charge = charge
				c.Adduct = adduct

				mass, err := c.CalcMass(precision)
				if err != nil {
					return fmt.Errorf("%s: %w", seq, err)
				}
				rows = append(rows, []string{seq, c.Formula(), strconv.Itoa(charge), core.FormatMass(mass, precision)})
			}

			header := []string{"sequence", "formula", "charge", "mass"}
			if err := newRenderer(cmd.OutOrStdout(), a.cfg.Output).render(header, rows); err != nil {
				return fmt.Errorf("failed to render: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&charge, "charge", "z", 0, "Charge state (0 = neutral)")
	cmd.Flags().StringVar(&adduct, "adduct", "", "Ionizing element for positive charges (default H)")

	return cmd
}
