// Package cmd provides CLI command implementations
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/exactmass/internal/config"
)

// Version is set at build time
var Version = "1.0.0"

// app carries what every command needs once flags are parsed
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCmd creates the exactmass command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "exactmass",
		Short: "ExactMass - chemical formula and exact mass calculator",
		Long: `ExactMass parses molecular formulas, calculates monoisotopic exact masses
and m/z values of ions, and combines compounds by condensation.

Mass tables are CSV files with a name and formula per row and one column
per ion type; calculate fills them in and can store the result in SQLite.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)

			if cfg.FileUsed != "" {
				a.logger.Debug("using config file", "path", cfg.FileUsed)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default: ./exactmass.yaml)")
	rootCmd.PersistentFlags().Int("precision", config.DefaultPrecision, "Decimal places of reported masses")
	rootCmd.PersistentFlags().String("elimination", config.DefaultElimination, "Molecule released by each condensation (empty for none)")
	rootCmd.PersistentFlags().Int("threads", config.DefaultThreads, "Rows calculated in parallel")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", config.DefaultOutput, "Output format (table|json|csv|markdown)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.OutputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newMassCmd(a))
	rootCmd.AddCommand(newCheckCmd(a))
	rootCmd.AddCommand(newIonsCmd(a))
	rootCmd.AddCommand(newPeptideCmd(a))
	rootCmd.AddCommand(newElementsCmd(a))
	rootCmd.AddCommand(newCalculateCmd(a))
	rootCmd.AddCommand(newBuildCmd(a))
	rootCmd.AddCommand(newServeCmd(a))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
