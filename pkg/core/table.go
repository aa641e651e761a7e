package core

import (
	"fmt"
	"strings"
)

// Fixed leading headers of a mass table
const (
	NameHeader     = "name"
	CompoundHeader = "compound"
)

// Table is a mass table: named compounds and one cell per ion column.
// The first column is conventionally the neutral mass.
type Table struct {
	Columns []IonColumn
	Rows    []*Row

	// Internal tracking
	SourceFile string
}

// Row is one compound of a table.
type Row struct {
	Name    string
	Formula string
	Cells   []string // one per column; retention time cells hold user values
	Invalid bool     // set when the formula failed validation in the last calculation
}

// ValidationError represents an error found during table validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// NewTable creates an empty table with the given columns.
func NewTable(columns []IonColumn) *Table {
	cols := make([]IonColumn, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// AddRow appends a row with empty cells and returns it.
func (t *Table) AddRow(name, formula string) *Row {
	row := &Row{
		Name:    name,
		Formula: formula,
		Cells:   make([]string, len(t.Columns)),
	}
	t.Rows = append(t.Rows, row)
	return row
}

// InsertCompound stores a compound in the first row with neither name nor
// formula, appending a row if there is none. It returns the 1-based row number.
func (t *Table) InsertCompound(name, formula string) int {
	for i, row := range t.Rows {
		if row.Name == "" && row.Formula == "" {
			row.Name = name
			row.Formula = formula
			for j := range row.Cells {
				row.Cells[j] = ""
			}
			return i + 1
		}
	}
	t.AddRow(name, formula)
	return len(t.Rows)
}

// AddColumn appends a column and an empty cell to every row.
func (t *Table) AddColumn(col IonColumn) error {
	if err := col.Validate(); err != nil {
		return err
	}
	for _, existing := range t.Columns {
		if existing.Name == col.Name {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidIonColumn, col.Name)
		}
	}
	t.Columns = append(t.Columns, col)
	for _, row := range t.Rows {
		row.Cells = append(row.Cells, "")
	}
	return nil
}

// Lookup returns the name and formula of a 1-based row.
func (t *Table) Lookup(row int) (name, formula string, ok bool) {
	if row < 1 || row > len(t.Rows) {
		return "", "", false
	}
	r := t.Rows[row-1]
	return r.Name, r.Formula, true
}

// Header returns the table header. The first column is written under its
// plain name; the others use the encoded ion column header.
func (t *Table) Header() []string {
	header := []string{NameHeader, CompoundHeader}
	for i, col := range t.Columns {
		if i == 0 {
			header = append(header, col.Name)
			continue
		}
		header = append(header, col.Header())
	}
	return header
}

// Validate checks that the table is consistent.
func (t *Table) Validate() error {
	var errs []string

	if len(t.Columns) == 0 {
		errs = append(errs, "at least one column is required")
	} else if first := t.Columns[0]; first.Charge != 0 || first.Add != "" || first.Delete != "" || first.Adduct != "" || first.RetentionTime {
		errs = append(errs, fmt.Sprintf("first column %q must be the neutral mass", first.Name))
	}

	seen := make(map[string]bool)
	for i, col := range t.Columns {
		if err := col.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("column %d: %v", i, err))
		}
		if seen[col.Name] {
			errs = append(errs, fmt.Sprintf("column %d: duplicate name %q", i, col.Name))
		}
		seen[col.Name] = true
	}

	for i, row := range t.Rows {
		if len(row.Cells) != len(t.Columns) {
			errs = append(errs, fmt.Sprintf("row %d has %d cells, expected %d", i+1, len(row.Cells), len(t.Columns)))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Table",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// Label returns the row name, or its formula when unnamed.
func (r *Row) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Formula
}
