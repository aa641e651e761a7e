package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Status styles, only applied to table output
var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderer writes rows of string cells in the configured output format
type renderer struct {
	w      io.Writer
	format string
}

func newRenderer(w io.Writer, format string) *renderer {
	return &renderer{w: w, format: format}
}

// styled reports whether cells may carry terminal styling
func (r *renderer) styled() bool {
	return r.format == "table"
}

// style renders s with st in table output and leaves it plain otherwise
func (r *renderer) style(st lipgloss.Style, s string) string {
	if !r.styled() || s == "" {
		return s
	}
	return st.Render(s)
}

func (r *renderer) render(header []string, rows [][]string) error {
	if r.format == "json" {
		return r.renderJSON(header, rows)
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	switch r.format {
	case "csv":
		t.RenderCSV()
	case "markdown":
		t.RenderMarkdown()
	default:
		if len(rows) == 0 {
			_, _ = fmt.Fprintln(r.w, "(0 rows)")
			return nil
		}
		t.Render()
	}
	return nil
}

// renderJSON writes one object per row keyed by the header
func (r *renderer) renderJSON(header []string, rows [][]string) error {
	results := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				obj[h] = row[i]
			}
		}
		results = append(results, obj)
	}

	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
