package core

import "fmt"

// Compound is a chemical species: an elemental composition plus an optional
// display name, charge state and adduct.
//
// A compound built from an unparseable formula keeps its parse error; every
// mass or algebra operation on it returns that error. AddElements and
// DelElements mutate the receiver and return it so calls can be chained.
// Compounds are not safe for concurrent mutation.
type Compound struct {
	Name   string
	Charge int
	Adduct string // ionizing element for positive charges; empty means hydrogen

	formula  string
	elements Composition
	err      error
}

// NewCompound parses formula into a neutral compound.
func NewCompound(formula string) *Compound {
	return NewIon(formula, 0, "")
}

// NewIon parses formula into a compound with the given charge and adduct.
func NewIon(formula string, charge int, adduct string) *Compound {
	c := &Compound{
		Charge:  charge,
		Adduct:  adduct,
		formula: formula,
	}
	c.elements, c.err = ParseFormula(formula)
	if c.err == nil {
		c.formula = c.elements.String()
	}
	return c
}

// Formula returns the canonical formula, or the original text if it did not parse.
func (c *Compound) Formula() string {
	return c.formula
}

// Elements returns a copy of the composition. It is empty for invalid compounds.
func (c *Compound) Elements() Composition {
	return c.elements.clone()
}

// Err returns the parse error of an invalid compound.
func (c *Compound) Err() error {
	return c.err
}

// CheckFormula reports whether the compound holds a valid composition.
func (c *Compound) CheckFormula() bool {
	return c.err == nil
}

// Copy returns an independent copy of the compound.
func (c *Compound) Copy() *Compound {
	return &Compound{
		Name:     c.Name,
		Charge:   c.Charge,
		Adduct:   c.Adduct,
		formula:  c.formula,
		elements: c.elements.clone(),
		err:      c.err,
	}
}

// AddElements adds the atoms of text to the compound. Empty text is a no-op.
func (c *Compound) AddElements(text string) (*Compound, error) {
	if c.err != nil {
		return c, c.err
	}
	if text == "" {
		return c, nil
	}
	add, err := ParseFormula(text)
	if err != nil {
		return c, err
	}
	if err := c.merge(add); err != nil {
		return c, err
	}
	return c, nil
}

// DelElements removes the atoms of text from the compound. Empty text is a no-op.
// Every removal is checked before any is applied, so a failed call leaves the
// compound unchanged.
func (c *Compound) DelElements(text string) (*Compound, error) {
	if c.err != nil {
		return c, c.err
	}
	if text == "" {
		return c, nil
	}
	del, err := ParseFormula(text)
	if err != nil {
		return c, err
	}
	if err := c.remove(del); err != nil {
		return c, err
	}
	return c, nil
}

// Multiply joins n copies of the compound, releasing n-1 elimination molecules.
func (c *Compound) Multiply(n int, elimination string) (*Compound, error) {
	if c.err != nil {
		return nil, c.err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMultiplier, n)
	}
	elim, err := parseOptional(elimination)
	if err != nil {
		return nil, fmt.Errorf("elimination product: %w", err)
	}

	scaled, symbol, ok := c.elements.scale(n)
	if !ok {
		return nil, fmt.Errorf("%w: %d overflows the count of %s", ErrInvalidMultiplier, n, symbol)
	}
	out := c.Copy()
	out.elements = scaled
	out.formula = out.elements.String()
	if n > 1 && elim.Len() > 0 {
		released, symbol, ok := elim.scale(n - 1)
		if !ok {
			return nil, fmt.Errorf("%w: %d overflows the eliminated count of %s", ErrInvalidMultiplier, n, symbol)
		}
		if err := out.remove(released); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AddCompound condenses other onto a copy of the compound, releasing one
// elimination molecule.
func (c *Compound) AddCompound(other *Compound, elimination string) (*Compound, error) {
	if c.err != nil {
		return nil, c.err
	}
	if other.err != nil {
		return nil, other.err
	}
	elim, err := parseOptional(elimination)
	if err != nil {
		return nil, fmt.Errorf("elimination product: %w", err)
	}

	out := c.Copy()
	if err := out.merge(other.elements); err != nil {
		return nil, err
	}
	if err := out.remove(elim); err != nil {
		return nil, err
	}
	return out, nil
}

// DelCompound splits other off a copy of the compound, consuming one
// elimination molecule.
func (c *Compound) DelCompound(other *Compound, elimination string) (*Compound, error) {
	if c.err != nil {
		return nil, c.err
	}
	if other.err != nil {
		return nil, other.err
	}
	elim, err := parseOptional(elimination)
	if err != nil {
		return nil, fmt.Errorf("elimination product: %w", err)
	}

	out := c.Copy()
	if err := out.remove(other.elements); err != nil {
		return nil, err
	}
	if err := out.merge(elim); err != nil {
		return nil, err
	}
	return out, nil
}

// merge adds every count of add, or none of them if one would overflow.
func (c *Compound) merge(add Composition) error {
	if s, ok := c.elements.fits(add); !ok {
		return fmt.Errorf("%w: %s in %q", ErrCountOverflow, s, c.formula)
	}
	for _, s := range add.symbols {
		c.elements.add(s, add.counts[s])
	}
	c.formula = c.elements.String()
	return nil
}

func (c *Compound) remove(del Composition) error {
	for _, s := range del.symbols {
		want := del.counts[s]
		have := c.elements.Count(s)
		if want > have {
			return &RemovalError{Formula: c.formula, Symbol: s, Requested: want, Available: have}
		}
	}
	for _, s := range del.symbols {
		c.elements.sub(s, del.counts[s])
	}
	c.formula = c.elements.String()
	return nil
}

// parseOptional parses text, treating empty text as an empty composition.
func parseOptional(text string) (Composition, error) {
	if text == "" {
		return Composition{}, nil
	}
	return ParseFormula(text)
}
