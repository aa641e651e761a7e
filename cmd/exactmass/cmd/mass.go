package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/exactmass/pkg/core"
)

func newMassCmd(a *app) *cobra.Command {
	var (
		charge int
		adduct string
		add    string
		del    string
	)

	cmd := &cobra.Command{
		Use:   "mass FORMULA",
		Short: "Calculate the exact mass or m/z of a formula",
		Long: `Calculate the monoisotopic exact mass of a formula, or the m/z of its ion
when a charge is given. Atoms are deleted before they are added.`,
		Example: `  # Neutral water
  exactmass mass H2O

  # Sodium adduct, six decimal places
  exactmass mass H2O --charge 1 --adduct Na --precision 6

  # Glucose after losing water, protonated
  exactmass mass C6H12O6 --delete H2O --charge 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			precision := a.cfg.MassPrecision()

			c := core.NewIon(args[0], charge, adduct)
			if _, err := c.DelElements(del); err != nil {
				return err
			}
			if _, err := c.AddElements(add); err != nil {
				return err
			}
			mass, err := c.CalcMass(precision)
			if err != nil {
				return err
			}

			header := []string{"formula", "charge", "adduct", "mass"}
			row := []string{c.Formula(), strconv.Itoa(c.Charge), c.Adduct, core.FormatMass(mass, precision)}
			if err := newRenderer(cmd.OutOrStdout(), a.cfg.Output).render(header, [][]string{row}); err != nil {
				return fmt.Errorf("failed to render: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&charge, "charge", "z", 0, "Charge state (0 = neutral)")
	cmd.Flags().StringVar(&adduct, "adduct", "", "Ionizing element for positive charges (default H)")
	cmd.Flags().StringVar(&add, "add", "", "Formula to add")
	cmd.Flags().StringVar(&del, "delete", "", "Formula to delete")

	return cmd
}
