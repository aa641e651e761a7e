package core

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	// ErrInvalidFormula is matched by every formula parse failure.
	ErrInvalidFormula = errors.New("invalid formula")

	// ErrSyntax is matched when formula text is not a sequence of element tokens.
	ErrSyntax = errors.New("formula syntax error")

	// ErrUnknownElement is matched when a symbol is not in the element table.
	ErrUnknownElement = errors.New("unknown element")

	// ErrChargeState is returned for negative charges on compounds without hydrogen.
	ErrChargeState = errors.New("invalid charge state")

	// ErrMissingElement is matched when a removal names an element the compound lacks.
	ErrMissingElement = errors.New("missing element")

	// ErrInsufficientQuantity is matched when a removal asks for more than the compound holds.
	ErrInsufficientQuantity = errors.New("insufficient quantity")

	// ErrCountOverflow is returned when adding atoms would overflow an element count.
	ErrCountOverflow = errors.New("element count out of range")

	// ErrInvalidMultiplier is returned by Multiply for factors below 1 or factors
	// that would overflow an element count.
	ErrInvalidMultiplier = errors.New("invalid multiplier")

	// ErrInvalidIonColumn is matched by ion column definition and header errors.
	ErrInvalidIonColumn = errors.New("invalid ion column")

	// ErrUnknownResidue is returned for peptide sequences with letters that are not amino acids.
	ErrUnknownResidue = errors.New("unknown amino acid")
)

// FormulaError describes why a formula could not be parsed.
type FormulaError struct {
	Formula string
	Pos     int    // byte offset of the offending character, -1 if not positional
	Symbol  string // unknown symbol, if any
	Kind    error  // ErrSyntax or ErrUnknownElement
	Message string
}

func (e *FormulaError) Error() string {
	switch {
	case e.Symbol != "":
		return fmt.Sprintf("invalid formula %q: unknown element %q", e.Formula, e.Symbol)
	case e.Pos >= 0:
		return fmt.Sprintf("invalid formula %q at position %d: %s", e.Formula, e.Pos, e.Message)
	default:
		return fmt.Sprintf("invalid formula %q: %s", e.Formula, e.Message)
	}
}

// Unwrap exposes both the general and the specific kind.
func (e *FormulaError) Unwrap() []error {
	return []error{ErrInvalidFormula, e.Kind}
}

// RemovalError reports an element removal that cannot be applied.
type RemovalError struct {
	Formula   string
	Symbol    string
	Requested int
	Available int
}

func (e *RemovalError) Error() string {
	if e.Available == 0 {
		return fmt.Sprintf("cannot delete %s: not in formula %q", e.Symbol, e.Formula)
	}
	return fmt.Sprintf("cannot delete %d %s: only %d in formula %q", e.Requested, e.Symbol, e.Available, e.Formula)
}

// Unwrap returns ErrMissingElement or ErrInsufficientQuantity.
func (e *RemovalError) Unwrap() error {
	if e.Available == 0 {
		return ErrMissingElement
	}
	return ErrInsufficientQuantity
}
