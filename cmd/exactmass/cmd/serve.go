package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/exactmass/pkg/api"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve mass calculations over HTTP",
		Long: `Start a JSON API with the routes:

  GET  /elements   supported elements and exact masses
  POST /mass       mass or m/z of one formula
  POST /ions       every configured ion of one formula
  POST /combine    condense, split or multiply compounds

The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			columns, err := a.cfg.IonColumns()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(api.Config{
				Columns:     columns,
				Precision:   a.cfg.MassPrecision(),
				Elimination: a.cfg.Elimination,
				Logger:      a.logger,
			})
			return srv.Serve(ctx, a.cfg.Addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")

	return cmd
}
