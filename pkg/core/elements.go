// Package core provides the formula parser, exact mass calculation and compound algebra
package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Exact masses (monoisotopic) of the supported elements
var exactMasses = map[string]decimal.Decimal{
	"He": decimal.RequireFromString("4.002603"),
	"Li": decimal.RequireFromString("7.016005"),
	"Be": decimal.RequireFromString("9.012183"),
	"B":  decimal.RequireFromString("11.009305"),
	"F":  decimal.RequireFromString("18.998403"),
	"Mg": decimal.RequireFromString("23.985042"),
	"Al": decimal.RequireFromString("26.981541"),
	"Si": decimal.RequireFromString("27.976928"),
	"Cl": decimal.RequireFromString("34.968853"),
	"Fe": decimal.RequireFromString("55.934942"),
	"Cu": decimal.RequireFromString("62.929601"),
	"Co": decimal.RequireFromString("58.933200"),
	"Ni": decimal.RequireFromString("57.935348"),
	"Zn": decimal.RequireFromString("63.929145"),
	"Br": decimal.RequireFromString("78.918336"),
	"C":  decimal.RequireFromString("12.0"),
	"O":  decimal.RequireFromString("15.994915"),
	"H":  decimal.RequireFromString("1.007825"),
	"N":  decimal.RequireFromString("14.003074"),
	"P":  decimal.RequireFromString("30.973762"),
	"S":  decimal.RequireFromString("31.972071"),
	"K":  decimal.RequireFromString("38.963707"),
	"Na": decimal.RequireFromString("22.989770"),
	"Ca": decimal.RequireFromString("39.962591"),
}

// ElectronMass is removed once per positive charge (added per negative charge)
var ElectronMass = decimal.RequireFromString("0.000549")

// Hydrogen is the default ionizing species
const Hydrogen = "H"

// MassOf returns the exact mass of an element symbol. Symbols are case-sensitive.
func MassOf(symbol string) (decimal.Decimal, bool) {
	m, ok := exactMasses[symbol]
	return m, ok
}

// IsElement reports whether symbol is in the element table.
func IsElement(symbol string) bool {
	_, ok := exactMasses[symbol]
	return ok
}

// Symbols returns all supported element symbols in alphabetical order.
func Symbols() []string {
	symbols := make([]string, 0, len(exactMasses))
	for s := range exactMasses {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
