// Package calc fills the mass cells of a table
package calc

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ChrisMcGann/exactmass/pkg/core"
)

// Cell markers written in place of a mass
const (
	// NotAvailable marks a column whose modifications fail or leave no atoms.
	NotAvailable = "N/A"
	// Failed marks a column whose mass could not be calculated, e.g. a charge state
	// that needs hydrogen the ion does not have.
	Failed = "---"
)

// DefaultPrecision is the number of decimal places written when none is configured
const DefaultPrecision = 4

// Config holds calculation settings
type Config struct {
	Precision int32        // decimal places of every mass cell
	Threads   int          // rows calculated in parallel (<1 = 1)
	Logger    *slog.Logger // nil = discard
}

// Summary counts what a calculation did
type Summary struct {
	Rows        int // rows with a formula
	Computed    int // cells holding a mass
	InvalidRows int // rows whose formula did not parse
	FailedCells int // cells set to N/A or ---
}

// Apply recalculates every computed cell of the table in place.
//
// A row with an invalid formula gets empty cells and is flagged Invalid.
// Retention time cells are never touched.
func (c *Config) Apply(ctx context.Context, table *core.Table) (Summary, error) {
	if err := table.Validate(); err != nil {
		return Summary{}, err
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	threads := c.Threads
	if threads < 1 {
		threads = 1
	}

	results := make([]Summary, len(table.Rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)

	for i, row := range table.Rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.calculateRow(logger, table.Columns, i+1, row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("calculation interrupted: %w", err)
	}

	var total Summary
	for _, r := range results {
		total.Rows += r.Rows
		total.Computed += r.Computed
		total.InvalidRows += r.InvalidRows
		total.FailedCells += r.FailedCells
	}

	logger.Debug("table calculated",
		slog.Int("rows", total.Rows),
		slog.Int("computed", total.Computed),
		slog.Int("invalid_rows", total.InvalidRows),
		slog.Int("failed_cells", total.FailedCells))

	return total, nil
}

// calculateRow fills one row. Only the row itself is written, so rows can run concurrently.
func (c *Config) calculateRow(logger *slog.Logger, columns []core.IonColumn, n int, row *core.Row) Summary {
	var s Summary
	row.Invalid = false

	if row.Formula == "" {
		clearComputed(columns, row)
		return s
	}
	s.Rows = 1

	if err := core.ValidateFormula(row.Formula); err != nil {
		logger.Warn("invalid formula", slog.Int("row", n), slog.String("name", row.Name), slog.Any("error", err))
		clearComputed(columns, row)
		row.Invalid = true
		s.InvalidRows = 1
		return s
	}

	for j, col := range columns {
		if col.RetentionTime {
			continue
		}

		ion, err := col.Ion(row.Formula)
		if err == nil && ion.Elements().Len() == 0 {
			err = fmt.Errorf("%s leaves no atoms", col.Name)
		}
		if err != nil {
			logger.Debug("ion not available", slog.Int("row", n), slog.String("column", col.Name), slog.Any("error", err))
			row.Cells[j] = NotAvailable
			s.FailedCells++
			continue
		}

		mass, err := ion.CalcMass(c.Precision)
		if err != nil {
			logger.Debug("mass failed", slog.Int("row", n), slog.String("column", col.Name), slog.Any("error", err))
			row.Cells[j] = Failed
			s.FailedCells++
			continue
		}

		row.Cells[j] = core.FormatMass(mass, c.Precision)
		s.Computed++
	}
	return s
}

func clearComputed(columns []core.IonColumn, row *core.Row) {
	for j, col := range columns {
		if !col.RetentionTime {
			row.Cells[j] = ""
		}
	}
}
