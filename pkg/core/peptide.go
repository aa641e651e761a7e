package core

import (
	"fmt"
	"sort"
)

// Water is the molecule released by each peptide bond
const Water = "H2O"

// residueFormulas maps amino acid one-letter codes to residue formulas:
// the free amino acid minus one water.
var residueFormulas = map[rune]string{
	'A': "C3H5NO",
	'R': "C6H12N4O",
	'N': "C4H6N2O2",
	'D': "C4H5NO3",
	'C': "C3H5NOS",
	'E': "C5H7NO3",
	'Q': "C5H8N2O2",
	'G': "C2H3NO",
	'H': "C6H7N3O",
	'I': "C6H11NO",
	'L': "C6H11NO",
	'K': "C6H12N2O",
	'M': "C5H9NOS",
	'F': "C9H9NO",
	'P': "C5H7NO",
	'S': "C3H5NO2",
	'T': "C4H7NO2",
	'W': "C11H10N2O",
	'Y': "C9H9NO2",
	'V': "C5H9NO",
}

// residues holds the parsed residue formulas
var residues = func() map[rune]Composition {
	m := make(map[rune]Composition, len(residueFormulas))
	for code, formula := range residueFormulas {
		comp, err := ParseFormula(formula)
		if err != nil {
			panic(fmt.Sprintf("residue %c: %v", code, err))
		}
		m[code] = comp
	}
	return m
}()

// ResidueCodes returns the supported one-letter codes in alphabetical order.
func ResidueCodes() []rune {
	codes := make([]rune, 0, len(residues))
	for code := range residues {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// NewPeptide builds the neutral compound of a linear peptide from its
// one-letter sequence: the sum of its residues plus one water for the termini.
// The compound is named after the sequence.
func NewPeptide(sequence string) (*Compound, error) {
	if sequence == "" {
		return nil, fmt.Errorf("%w: empty sequence", ErrUnknownResidue)
	}

	var comp Composition
	for i, code := range sequence {
		res, ok := residues[code]
		if !ok {
			return nil, fmt.Errorf("%w: %q at position %d of %s", ErrUnknownResidue, code, i, sequence)
		}
		for _, s := range res.symbols {
			comp.add(s, res.counts[s])
		}
	}

	c := NewCompound(comp.String())
	if _, err := c.AddElements(Water); err != nil {
		return nil, err
	}
	c.Name = sequence
	return c, nil
}
