package cmd

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/exactmass/pkg/calc"
	"github.com/ChrisMcGann/exactmass/pkg/core"
	reader "github.com/ChrisMcGann/exactmass/pkg/reader/table"
	"github.com/ChrisMcGann/exactmass/pkg/writer/sqlite"
	writer "github.com/ChrisMcGann/exactmass/pkg/writer/table"
)

const watchDebounce = 100 * time.Millisecond

type calculateOptions struct {
	in     string
	out    string
	watch  bool
	addIon []string

	columns []core.IonColumn // parsed from addIon
}

func newCalculateCmd(a *app) *cobra.Command {
	opts := &calculateOptions{}

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Fill in the masses of a CSV mass table",
		Long: `Calculate every ion column of every row of a mass table.

Rows with an invalid formula get empty cells and are reported. A column whose
modifications cannot be applied shows N/A; a charge state the ion cannot
carry shows ---. Retention time columns are left as they are.

The result is written back to the input, to another CSV file, or, for a .db
output, appended to a SQLite database as a new calculation run.`,
		Example: `  # Recalculate in place
  exactmass calculate --in masses.csv

  # Store the run in SQLite
  exactmass calculate --in masses.csv --out masses.db

  # Recalculate whenever the table is saved
  exactmass calculate --in masses.csv --watch

  # Add a doubly protonated column and a water loss column
  exactmass calculate --in masses.csv --add-ion charge=2+ --add-ion modify=-H2O,charge=+`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.out == "" {
				opts.out = opts.in
			}
			for _, def := range opts.addIon {
				col, err := parseIonFlag(def)
				if err != nil {
					return err
				}
				opts.columns = append(opts.columns, col)
			}
			if opts.watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return watchTable(ctx, cmd, a, opts)
			}
			_, err := calculateTable(cmd, a, opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "Input CSV table (required)")
	cmd.Flags().StringVar(&opts.out, "out", "", "Output .csv or .db file (default: overwrite input)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Recalculate whenever the input changes")
	cmd.Flags().StringArrayVar(&opts.addIon, "add-ion", nil,
		"Append an ion column, e.g. name=X,modify=-H2O,adduct=Na,charge=2+ (repeatable)")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

// calculateTable reads, calculates and writes the table once. It returns the
// CSV bytes written back to the input, if any, so the watcher can ignore its own write.
func calculateTable(cmd *cobra.Command, a *app, opts *calculateOptions) ([]byte, error) {
	table, err := reader.ReadFile(opts.in)
	if err != nil {
		return nil, err
	}
	if err := addColumns(table, opts.columns, a.logger); err != nil {
		return nil, err
	}

	cfg := &calc.Config{
		Precision: a.cfg.MassPrecision(),
		Threads:   a.cfg.Threads,
		Logger:    a.logger,
	}
	summary, err := cfg.Apply(cmd.Context(), table)
	if err != nil {
		return nil, err
	}

	r := newRenderer(cmd.ErrOrStderr(), "table")
	for i, row := range table.Rows {
		if row.Invalid {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s row %d %s: invalid formula %q\n",
				r.style(warningStyle, "Warning:"), i+1, row.Name, row.Formula)
		}
	}

	var written []byte
	if strings.EqualFold(filepath.Ext(opts.out), ".db") {
		if err := writeDatabase(opts.out, a, table); err != nil {
			return nil, err
		}
	} else {
		var buf bytes.Buffer
		if err := writer.WriteTable(&buf, table); err != nil {
			return nil, err
		}
		if err := writer.WriteFile(opts.out, table); err != nil {
			return nil, err
		}
		if opts.out == opts.in {
			written = buf.Bytes()
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Calculated %d rows: %d masses, %d invalid rows, %d unavailable cells\n",
		summary.Rows, summary.Computed, summary.InvalidRows, summary.FailedCells)
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", opts.out)

	return written, nil
}

// parseIonFlag builds an ion column from a comma separated list of
// name, modify, adduct and charge assignments.
func parseIonFlag(def string) (core.IonColumn, error) {
	var name, modify, adduct, charge string
	for _, field := range strings.Split(def, ",") {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return core.IonColumn{}, fmt.Errorf("--add-ion %q: expected key=value, got %q", def, field)
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "name":
			name = value
		case "modify":
			modify = value
		case "adduct":
			adduct = value
		case "charge":
			charge = value
		default:
			return core.IonColumn{}, fmt.Errorf("--add-ion %q: unknown key %q", def, key)
		}
	}

	col, err := core.NewIonColumn(name, modify, adduct, charge)
	if err != nil {
		return core.IonColumn{}, fmt.Errorf("--add-ion %q: %w", def, err)
	}
	return col, nil
}

// addColumns appends the columns the table does not have yet. Columns are
// matched by name, so a recalculated table is not extended twice.
func addColumns(table *core.Table, columns []core.IonColumn, logger *slog.Logger) error {
	existing := make(map[string]bool, len(table.Columns))
	for _, col := range table.Columns {
		existing[col.Name] = true
	}
	for _, col := range columns {
		if existing[col.Name] {
			logger.Debug("ion column already present", "column", col.Name)
			continue
		}
		if err := table.AddColumn(col); err != nil {
			return err
		}
		existing[col.Name] = true
		logger.Info("added ion column", "column", col.Name)
	}
	return nil
}

func writeDatabase(path string, a *app, table *core.Table) error {
	w, err := sqlite.NewWriter(path, sqlite.RunInfo{
		Precision:   a.cfg.MassPrecision(),
		Elimination: a.cfg.Elimination,
		SourceFile:  table.SourceFile,
	})
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}
	defer w.Close()

	if err := w.WriteTable(table); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	if err := w.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}
	a.logger.Debug("stored calculation run", "run_id", w.RunID(), "path", path)
	return nil
}

// watchTable recalculates the table each time its file is written, until ctx ends.
// The directory is watched rather than the file, since editors often replace files.
func watchTable(ctx context.Context, cmd *cobra.Command, a *app, opts *calculateOptions) error {
	last, err := calculateTable(cmd, a, opts)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target, err := filepath.Abs(opts.in)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.in, err)
	}
	a.logger.Info("watching for changes", "file", opts.in)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if name, err := filepath.Abs(event.Name); err != nil || name != target {
				continue
			}
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			content, err := os.ReadFile(opts.in)
			if err != nil {
				a.logger.Warn("failed to read table", "error", err)
				continue
			}
			if last != nil && bytes.Equal(content, last) {
				continue
			}

			a.logger.Debug("table changed, recalculating", "file", opts.in)
			written, err := calculateTable(cmd, a, opts)
			if err != nil {
				a.logger.Error("calculation failed", "error", err)
				continue
			}
			last = written

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("watcher error", "error", err)
		}
	}
}
