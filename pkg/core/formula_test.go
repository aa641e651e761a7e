package core

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormula(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    map[string]int
	}{
		{"single element", "C", map[string]int{"C": 1}},
		{"two letter symbols", "NaCl", map[string]int{"Na": 1, "Cl": 1}},
		{"water", "H2O", map[string]int{"H": 2, "O": 1}},
		{"glucose", "C6H12O6", map[string]int{"C": 6, "H": 12, "O": 6}},
		{"repeated symbols are summed", "CH3CH2OH", map[string]int{"C": 2, "H": 6, "O": 1}},
		{"multi digit counts", "C100H202", map[string]int{"C": 100, "H": 202}},
		{"leading zero count", "H02", map[string]int{"H": 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormula(tt.formula)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Map())
		})
	}
}

func TestParseFormulaErrors(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		kind    error
		pos     int
	}{
		{"empty", "", ErrSyntax, -1},
		{"leading digit", "2H", ErrSyntax, 0},
		{"lowercase symbols", "h2o", ErrSyntax, 0},
		{"lowercase after count", "H2o", ErrSyntax, 2},
		{"symbol too long", "Hee", ErrSyntax, 2},
		{"whitespace", "H2 O", ErrSyntax, 2},
		{"punctuation", "C(OH)2", ErrSyntax, 1},
		{"non ascii", "H2Ö", ErrSyntax, 2},
		{"zero count", "H0", ErrSyntax, 1},
		{"unknown element", "XeF2", ErrUnknownElement, 0},
		{"unknown element after valid ones", "H2Uo", ErrUnknownElement, 2},
		{"syntax reported before unknown symbol", "Xx-", ErrSyntax, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFormula(tt.formula)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFormula)
			assert.ErrorIs(t, err, tt.kind)

			var fe *FormulaError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.pos, fe.Pos)
			assert.Equal(t, tt.formula, fe.Formula)
		})
	}
}

func TestParseFormulaCountOverflow(t *testing.T) {
	maxCount := strconv.Itoa(math.MaxInt)
	tests := []struct {
		name    string
		formula string
		pos     int
	}{
		{"literal count", "H" + maxCount + "0", 1},
		{"repeated symbol", "H" + maxCount + "H", 1 + len(maxCount)},
		{"repeated symbol later", "CH" + maxCount + "OH2", 3 + len(maxCount)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFormula(tt.formula)
			assert.ErrorIs(t, err, ErrSyntax)

			var fe *FormulaError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.pos, fe.Pos)
			assert.Contains(t, fe.Error(), "count out of range")
		})
	}

	comp, err := ParseFormula("H" + maxCount)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, comp.Count("H"))
}

func TestFormulaErrorMessage(t *testing.T) {
	_, err := ParseFormula("NaXx")
	require.Error(t, err)
	assert.Equal(t, `invalid formula "NaXx": unknown element "Xx"`, err.Error())

	_, err = ParseFormula("2H")
	require.Error(t, err)
	assert.Equal(t, `invalid formula "2H" at position 0: formula starts with a digit`, err.Error())
}

func TestCompositionRoundTrip(t *testing.T) {
	formulas := []string{"H2O", "NaCl", "C6H12O6", "CH3CH2OH", "C2H4O2Na", "Fe2O3", "B", "CuSO4"}

	for _, formula := range formulas {
		t.Run(formula, func(t *testing.T) {
			comp, err := ParseFormula(formula)
			require.NoError(t, err)

			again, err := ParseFormula(comp.String())
			require.NoError(t, err)
			assert.True(t, comp.Equal(again), "%s -> %s", formula, comp.String())
			assert.Equal(t, comp.String(), again.String())
		})
	}
}

func TestCompositionString(t *testing.T) {
	tests := []struct {
		formula string
		want    string
	}{
		{"H2O", "H2O"},
		{"OH2", "OH2"},
		{"CH3CH3", "C2H6"},
		{"C1H1", "CH"},
	}

	for _, tt := range tests {
		comp, err := ParseFormula(tt.formula)
		require.NoError(t, err)
		assert.Equal(t, tt.want, comp.String())
	}
}

func TestCompositionEqualIgnoresOrder(t *testing.T) {
	a, err := ParseFormula("H2O")
	require.NoError(t, err)
	b, err := ParseFormula("OH2")
	require.NoError(t, err)
	c, err := ParseFormula("HO")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, []string{"O", "H"}, b.Symbols())
}

func TestValidateFormula(t *testing.T) {
	assert.NoError(t, ValidateFormula("H2O"))
	assert.ErrorIs(t, ValidateFormula("H2O "), ErrSyntax)
	assert.ErrorIs(t, ValidateFormula("Qq"), ErrUnknownElement)
}

func TestElementTable(t *testing.T) {
	assert.Len(t, Symbols(), 24)

	m, ok := MassOf("Na")
	require.True(t, ok)
	assert.Equal(t, "22.98977", m.String())

	_, ok = MassOf("na")
	assert.False(t, ok)
	assert.False(t, IsElement("Xx"))
	assert.True(t, IsElement("C"))
}
