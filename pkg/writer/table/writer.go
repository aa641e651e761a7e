// Package table provides CSV writing for mass tables
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ChrisMcGann/exactmass/pkg/core"
)

// Writer writes a mass table as CSV, header first
type Writer struct {
	csv     *csv.Writer
	columns int
}

// NewWriter creates a CSV writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row of table
func (w *Writer) WriteHeader(table *core.Table) error {
	w.columns = len(table.Columns)
	if err := w.csv.Write(table.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// WriteRow writes a single row
func (w *Writer) WriteRow(row *core.Row) error {
	if len(row.Cells) != w.columns {
		return fmt.Errorf("row %q has %d cells, header has %d", row.Label(), len(row.Cells), w.columns)
	}

	record := make([]string, 0, len(row.Cells)+2)
	record = append(record, row.Name, row.Formula)
	record = append(record, row.Cells...)
	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("failed to write row %q: %w", row.Label(), err)
	}
	return nil
}

// Close flushes buffered rows
func (w *Writer) Close() error {
	w.csv.Flush()
	return w.csv.Error()
}

// WriteTable writes header and rows of table
func WriteTable(w io.Writer, table *core.Table) error {
	tw := NewWriter(w)
	if err := tw.WriteHeader(table); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := tw.WriteRow(row); err != nil {
			return err
		}
	}
	return tw.Close()
}

// Permissions of a table file that did not exist before
const newFileMode os.FileMode = 0o644

// WriteFile replaces path with the CSV form of table. The table is written to
// a temporary file in the same directory first, so readers never see a partial table.
// An existing file keeps its permissions.
func WriteFile(path string, table *core.Table) error {
	mode := newFileMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set output file mode: %w", err)
	}

	if err := WriteTable(tmp, table); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
