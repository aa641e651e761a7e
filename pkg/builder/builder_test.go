package builder

import (
	"testing"

	"github.com/ChrisMcGann/exactmass/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T) *core.Table {
	t.Helper()
	table := core.NewTable(core.DefaultIonColumns())
	table.AddRow("Gly", "C2H5NO2")
	table.AddRow("Ala", "C3H7NO2")
	table.AddRow("water", "H2O")
	table.AddRow("", "C6H12O6")
	table.AddRow("broken", "h2o")
	table.AddRow("empty", "")
	return table
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr string
		want []Term
	}{
		{"1", []Term{{Row: 1, Multiplier: 1}}},
		{"1+2", []Term{{Row: 1, Multiplier: 1}, {Row: 2, Multiplier: 1}}},
		{"1+2*3-4", []Term{
			{Row: 1, Multiplier: 1},
			{Row: 2, Multiplier: 3},
			{Row: 4, Multiplier: 1, Negative: true},
		}},
		{" 12 - 3*2 ", []Term{{Row: 12, Multiplier: 1}, {Row: 3, Multiplier: 2, Negative: true}}},
		{"+1", []Term{{Row: 1, Multiplier: 1}}},
		{"-2+1", []Term{{Row: 2, Multiplier: 1, Negative: true}, {Row: 1, Multiplier: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{"", "a", "1+", "1++2", "1*", "1*0", "1/2", "1 2", "1*2*3", "(1+2)"} {
		t.Run(expr, func(t *testing.T) {
			_, err := Parse(expr)
			assert.ErrorIs(t, err, ErrExpression)
		})
	}
}

func TestTermString(t *testing.T) {
	assert.Equal(t, "+1", Term{Row: 1, Multiplier: 1}.String())
	assert.Equal(t, "-3*2", Term{Row: 3, Multiplier: 2, Negative: true}.String())
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		formula string
		label   string
	}{
		{"single row", "1", "C2H5NO2", "(Gly)"},
		{"dipeptide", "1+2", "C5H10N2O3", "(Gly)+(Ala)"},
		{"tripeptide with multiplier", "1+2*2", "C8H15N3O4", "(Gly)+2(Ala)"},
		{"hydrolysis", "1+2-1", "C3H7NO2", "(Gly)+(Ala)-(Gly)"},
		{"unnamed row uses formula", "4*2", "C12H22O11", "2(C6H12O6)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, err := Parse(tt.expr)
			require.NoError(t, err)

			got, err := Build(terms, newTable(t), "H2O")
			require.NoError(t, err)

			want, err := core.ParseFormula(tt.formula)
			require.NoError(t, err)
			assert.True(t, want.Equal(got.Elements()), "got %s, want %s", got.Formula(), tt.formula)
			assert.Equal(t, tt.label, got.Name)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want error
	}{
		{"unknown row", "1+99", ErrUnknownRow},
		{"row zero", "0", ErrUnknownRow},
		{"invalid formula", "1+5", core.ErrInvalidFormula},
		{"empty formula", "6", core.ErrInvalidFormula},
		{"only removals", "-1", ErrExpression},
		{"removal of missing element", "3-1", core.ErrMissingElement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms, err := Parse(tt.expr)
			require.NoError(t, err)

			_, err = Build(terms, newTable(t), "H2O")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
