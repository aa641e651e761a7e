package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/exactmass/pkg/core"
)

func newElementsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "elements",
		Short: "List supported elements and their exact masses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			symbols := core.Symbols()
			rows := make([][]string, 0, len(symbols))
			for _, s := range symbols {
				m, _ := core.MassOf(s)
				rows = append(rows, []string{s, m.String()})
			}
			return newRenderer(cmd.OutOrStdout(), a.cfg.Output).render([]string{"symbol", "mass"}, rows)
		},
	}
}
