package core

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompound(t *testing.T) {
	c := NewCompound("CH3CH3")
	require.True(t, c.CheckFormula())
	assert.NoError(t, c.Err())
	assert.Equal(t, "C2H6", c.Formula())

	bad := NewCompound("h2o")
	assert.False(t, bad.CheckFormula())
	assert.ErrorIs(t, bad.Err(), ErrInvalidFormula)
	assert.Equal(t, "h2o", bad.Formula())
	assert.Equal(t, 0, bad.Elements().Len())
}

func TestAddElements(t *testing.T) {
	c := NewCompound("C2H4")

	got, err := c.AddElements("H2O")
	require.NoError(t, err)
	assert.Same(t, c, got)
	assert.Equal(t, "C2H6O", c.Formula())

	_, err = c.AddElements("Na")
	require.NoError(t, err)
	assert.Equal(t, "C2H6ONa", c.Formula())

	_, err = c.AddElements("")
	require.NoError(t, err)
	assert.Equal(t, "C2H6ONa", c.Formula())
}

func TestAddElementsInvalidText(t *testing.T) {
	c := NewCompound("C2H4")
	_, err := c.AddElements("H2o")
	assert.ErrorIs(t, err, ErrInvalidFormula)
	assert.Equal(t, "C2H4", c.Formula())
}

func TestDelElements(t *testing.T) {
	c := NewCompound("C2H6O")

	_, err := c.DelElements("H2O")
	require.NoError(t, err)
	assert.Equal(t, "C2H4", c.Formula())
	assert.False(t, c.Elements().Has("O"), "zero counts must be dropped")

	_, err = c.DelElements("C2H4")
	require.NoError(t, err)
	assert.Equal(t, "", c.Formula())
	assert.Equal(t, 0, c.Elements().Len())
}

func TestDelElementsAtomic(t *testing.T) {
	tests := []struct {
		name      string
		delete    string
		kind      error
		symbol    string
		available int
	}{
		{"insufficient quantity", "C3", ErrInsufficientQuantity, "C", 2},
		{"missing element", "N", ErrMissingElement, "N", 0},
		{"valid removal before missing element", "CN", ErrMissingElement, "N", 0},
		{"valid removal before insufficient quantity", "H2C5", ErrInsufficientQuantity, "C", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCompound("C2H4")
			before := c.Elements()

			_, err := c.DelElements(tt.delete)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var re *RemovalError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.symbol, re.Symbol)
			assert.Equal(t, tt.available, re.Available)

			assert.True(t, before.Equal(c.Elements()), "composition changed to %s", c.Formula())
			assert.Equal(t, "C2H4", c.Formula())
		})
	}
}

func TestChainedElementDelta(t *testing.T) {
	c := NewIon("C6H12O6", 1, "Na")

	_, err := c.DelElements("H2O")
	require.NoError(t, err)
	_, err = c.AddElements("N")
	require.NoError(t, err)

	assert.Equal(t, "C6H10O5N", c.Formula())
	assert.Equal(t, 1, c.Charge)
	assert.Equal(t, "Na", c.Adduct)
}

func TestAlgebraOnInvalidCompound(t *testing.T) {
	bad := NewCompound("2H")
	good := NewCompound("H2O")

	_, err := bad.AddElements("H")
	assert.ErrorIs(t, err, ErrInvalidFormula)
	_, err = bad.DelElements("H")
	assert.ErrorIs(t, err, ErrInvalidFormula)
	_, err = bad.Multiply(2, "H2O")
	assert.ErrorIs(t, err, ErrInvalidFormula)
	_, err = good.AddCompound(bad, "H2O")
	assert.ErrorIs(t, err, ErrInvalidFormula)
	_, err = bad.DelCompound(good, "H2O")
	assert.ErrorIs(t, err, ErrInvalidFormula)
	_, err = bad.CalcMass(4)
	assert.ErrorIs(t, err, ErrInvalidFormula)
}

func TestCopy(t *testing.T) {
	c := NewIon("H2O", 2, "K")
	c.Name = "water"

	cp := c.Copy()
	_, err := cp.AddElements("O")
	require.NoError(t, err)

	assert.Equal(t, "H2O", c.Formula())
	assert.Equal(t, "H2O2", cp.Formula())
	assert.Equal(t, "water", cp.Name)
	assert.Equal(t, 2, cp.Charge)
	assert.Equal(t, "K", cp.Adduct)
}

func TestAddCompoundCondensation(t *testing.T) {
	water := NewCompound("H2O")

	got, err := water.AddCompound(NewCompound("H2O"), "H2O")
	require.NoError(t, err)
	assert.Equal(t, "H2O", got.Formula())
	assert.NotSame(t, water, got)

	// Glycine dipeptide: 2 C2H5NO2 - H2O
	gly := NewCompound("C2H5NO2")
	dipeptide, err := gly.AddCompound(gly, "H2O")
	require.NoError(t, err)
	assert.Equal(t, "C4H8N2O3", dipeptide.Formula())
	assert.Equal(t, "C2H5NO2", gly.Formula())
}

func TestAddCompoundWithoutElimination(t *testing.T) {
	got, err := NewCompound("Na").AddCompound(NewCompound("Cl"), "")
	require.NoError(t, err)
	assert.Equal(t, "NaCl", got.Formula())
}

func TestAddCompoundEliminationFails(t *testing.T) {
	_, err := NewCompound("C").AddCompound(NewCompound("C"), "H2O")
	assert.ErrorIs(t, err, ErrMissingElement)

	_, err = NewCompound("C").AddCompound(NewCompound("C"), "h2o")
	assert.ErrorIs(t, err, ErrInvalidFormula)
}

func TestDelCompoundHydrolysis(t *testing.T) {
	dipeptide := NewCompound("C4H8N2O3")

	got, err := dipeptide.DelCompound(NewCompound("C2H5NO2"), "H2O")
	require.NoError(t, err)
	assert.Equal(t, "C2H5NO2", got.Formula())
	assert.Equal(t, "C4H8N2O3", dipeptide.Formula())

	_, err = NewCompound("H2O").DelCompound(NewCompound("CH4"), "H2O")
	assert.ErrorIs(t, err, ErrMissingElement)
}

func TestMultiply(t *testing.T) {
	tests := []struct {
		name        string
		formula     string
		n           int
		elimination string
		want        map[string]int
	}{
		{"acetic acid trimer", "C2H4O2", 3, "H2O", map[string]int{"C": 6, "H": 8, "O": 4}},
		{"single copy keeps formula", "C2H4O2", 1, "H2O", map[string]int{"C": 2, "H": 4, "O": 2}},
		{"no elimination", "CH2", 5, "", map[string]int{"C": 5, "H": 10}},
		{"glucose chain", "C6H12O6", 4, "H2O", map[string]int{"C": 24, "H": 42, "O": 21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monomer := NewCompound(tt.formula)
			got, err := monomer.Multiply(tt.n, tt.elimination)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Elements().Map())
			assert.Equal(t, tt.formula, monomer.Formula())
		})
	}
}

func TestMultiplyErrors(t *testing.T) {
	_, err := NewCompound("CH4").Multiply(0, "H2O")
	assert.ErrorIs(t, err, ErrInvalidMultiplier)

	_, err = NewCompound("CH4").Multiply(3, "H2O")
	assert.ErrorIs(t, err, ErrMissingElement)

	_, err = NewCompound("CH4O").Multiply(4, "H2O2")
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
}

func TestMultiplyOverflow(t *testing.T) {
	tests := []struct {
		name        string
		formula     string
		n           int
		elimination string
	}{
		{"huge factor", "C2H4O2", 1 << 62, ""},
		{"huge factor with elimination", "C2H4O2", 1 << 62, "H2O"},
		{"largest factor", "CH4", math.MaxInt, ""},
		{"large count", "C" + strconv.Itoa(math.MaxInt/2+1), 2, ""},
		{"eliminated count overflows", "C2H4O2", math.MaxInt / 4, "H8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monomer := NewCompound(tt.formula)
			require.NoError(t, monomer.Err())

			_, err := monomer.Multiply(tt.n, tt.elimination)
			assert.ErrorIs(t, err, ErrInvalidMultiplier)
			assert.Equal(t, NewCompound(tt.formula).Formula(), monomer.Formula())
		})
	}

	got, err := NewCompound("C").Multiply(math.MaxInt, "")
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got.Elements().Count("C"))
}

func TestAddOverflow(t *testing.T) {
	full := "H" + strconv.Itoa(math.MaxInt)

	c := NewCompound("CH4")
	_, err := c.AddElements("O" + full[1:] + full)
	assert.ErrorIs(t, err, ErrCountOverflow)
	assert.Equal(t, "CH4", c.Formula(), "a failed addition must leave the compound unchanged")

	_, err = NewCompound(full).AddCompound(NewCompound("H2O"), "")
	assert.ErrorIs(t, err, ErrCountOverflow)

	_, err = NewCompound("CH4").DelCompound(NewCompound("CH4"), full)
	assert.NoError(t, err)

	_, err = NewCompound(full+"C").DelCompound(NewCompound("C"), "H")
	assert.ErrorIs(t, err, ErrCountOverflow)
}
