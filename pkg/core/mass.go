package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxPrecision is the largest number of decimal places a mass is reported with
const MaxPrecision = 12

// NeutralMass sums the exact masses of all atoms in the compound.
func (c *Compound) NeutralMass() (decimal.Decimal, error) {
	if c.err != nil {
		return decimal.Zero, c.err
	}
	mass := decimal.Zero
	for _, s := range c.elements.symbols {
		m, _ := MassOf(s)
		mass = mass.Add(m.Mul(decimal.NewFromInt(int64(c.elements.counts[s]))))
	}
	return mass, nil
}

// CalcMass returns the exact mass of the compound, or its m/z when the
// absolute charge is greater than one, rounded half-to-even to roundTo places.
//
// Positive ions gain the adduct (hydrogen if none is set) once per charge;
// negative ions lose one hydrogen per charge. Each charge also moves one electron.
func (c *Compound) CalcMass(roundTo int32) (decimal.Decimal, error) {
	if c.err != nil {
		return decimal.Zero, c.err
	}
	if c.Charge < 0 && !c.elements.Has(Hydrogen) {
		return decimal.Zero, fmt.Errorf("%w: charge %d needs hydrogen in %q", ErrChargeState, c.Charge, c.formula)
	}

	mass, err := c.NeutralMass()
	if err != nil {
		return decimal.Zero, err
	}
	if c.Charge == 0 {
		return mass.RoundBank(roundTo), nil
	}

	charge := decimal.NewFromInt(int64(c.Charge))
	mass = mass.Sub(ElectronMass.Mul(charge))

	hydrogen, _ := MassOf(Hydrogen)
	switch {
	case c.Charge == 1:
		ion, err := c.ionMass()
		if err != nil {
			return decimal.Zero, err
		}
		mass = mass.Add(ion)
	case c.Charge > 1:
		ion, err := c.ionMass()
		if err != nil {
			return decimal.Zero, err
		}
		mass = mass.Add(charge.Mul(ion)).Div(charge)
	case c.Charge == -1:
		mass = mass.Sub(hydrogen)
	default:
		mass = mass.Add(charge.Mul(hydrogen)).Div(charge.Neg())
	}

	return mass.RoundBank(roundTo), nil
}

// ionMass returns the mass of the ionizing species for positive charges.
func (c *Compound) ionMass() (decimal.Decimal, error) {
	symbol := c.Adduct
	if symbol == "" {
		symbol = Hydrogen
	}
	m, ok := MassOf(symbol)
	if !ok {
		return decimal.Zero, fmt.Errorf("adduct: %w", &FormulaError{
			Formula: c.Adduct,
			Pos:     -1,
			Symbol:  c.Adduct,
			Kind:    ErrUnknownElement,
		})
	}
	return m, nil
}

// FormatMass renders a mass with exactly places fractional digits.
func FormatMass(mass decimal.Decimal, places int32) string {
	return mass.StringFixedBank(places)
}
