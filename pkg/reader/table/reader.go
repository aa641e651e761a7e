// Package table provides a streaming reader for mass tables stored as CSV
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ChrisMcGann/exactmass/pkg/core"
)

// Reader provides streaming access to the rows of a CSV mass table.
// The header is read by NewReader; Next then yields one row at a time.
type Reader struct {
	csv        *csv.Reader
	columns    []core.IonColumn
	lineNum    int
	currentRow *core.Row
	err        error
}

// NewReader reads the header of a CSV mass table.
//
// The header is name, compound, then one cell per ion column. The first ion
// column may be a plain name and is read as the neutral mass; every other
// column must use the encoded name#add#delete#adduct#charge#rt form.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rd := &Reader{csv: cr}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty table: missing header")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	rd.lineNum = 1

	columns, err := parseHeader(header)
	if err != nil {
		return nil, fmt.Errorf("line 1: %w", err)
	}
	rd.columns = columns

	return rd, nil
}

// Columns returns the ion columns declared by the header
func (r *Reader) Columns() []core.IonColumn {
	return r.columns
}

// Next advances to the next row. Returns false when no more rows or error.
func (r *Reader) Next() bool {
	r.currentRow = nil

	record, err := r.csv.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			r.err = err
		}
		return false
	}
	r.lineNum, _ = r.csv.FieldPos(0)

	row, err := r.parseRow(record)
	if err != nil {
		r.err = fmt.Errorf("line %d: %w", r.lineNum, err)
		return false
	}

	r.currentRow = row
	return true
}

// Row returns the current row
func (r *Reader) Row() *core.Row {
	return r.currentRow
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// parseRow maps a record onto the header. Missing trailing cells are empty.
func (r *Reader) parseRow(record []string) (*core.Row, error) {
	width := len(r.columns) + 2
	if len(record) > width {
		return nil, fmt.Errorf("row has %d fields, header has %d", len(record), width)
	}
	for len(record) < width {
		record = append(record, "")
	}

	row := &core.Row{
		Name:    strings.TrimSpace(record[0]),
		Formula: strings.TrimSpace(record[1]),
		Cells:   make([]string, len(r.columns)),
	}
	for i := range r.columns {
		row.Cells[i] = strings.TrimSpace(record[i+2])
	}
	return row, nil
}

func parseHeader(header []string) ([]core.IonColumn, error) {
	if len(header) < 3 {
		return nil, fmt.Errorf("header needs %s, %s and at least one ion column", core.NameHeader, core.CompoundHeader)
	}
	if !strings.EqualFold(strings.TrimSpace(header[0]), core.NameHeader) ||
		!strings.EqualFold(strings.TrimSpace(header[1]), core.CompoundHeader) {
		return nil, fmt.Errorf("header must start with %s,%s, got %s,%s", core.NameHeader, core.CompoundHeader, header[0], header[1])
	}

	columns := make([]core.IonColumn, 0, len(header)-2)
	for i, cell := range header[2:] {
		cell = strings.TrimSpace(cell)
		if i == 0 && !strings.Contains(cell, "#") {
			columns = append(columns, core.IonColumn{Name: cell})
			continue
		}
		col, err := core.ParseIonHeader(cell)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+3, err)
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// ReadTable reads a whole CSV mass table and validates it
func ReadTable(r io.Reader) (*core.Table, error) {
	rd, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	table := core.NewTable(rd.Columns())
	for rd.Next() {
		table.Rows = append(table.Rows, rd.Row())
	}
	if err := rd.Err(); err != nil {
		return nil, err
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// ReadFile reads a CSV mass table from path
func ReadFile(path string) (*core.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close()

	table, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	table.SourceFile = path
	return table, nil
}
