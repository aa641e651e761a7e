package core

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Composition maps element symbols to positive counts.
// Symbols keep their first-insertion order so formatting is deterministic.
type Composition struct {
	symbols []string
	counts  map[string]int
}

// Count returns the number of atoms of symbol (0 if absent).
func (c Composition) Count(symbol string) int {
	return c.counts[symbol]
}

// Has reports whether symbol is present.
func (c Composition) Has(symbol string) bool {
	_, ok := c.counts[symbol]
	return ok
}

// Symbols returns the element symbols in composition order.
func (c Composition) Symbols() []string {
	out := make([]string, len(c.symbols))
	copy(out, c.symbols)
	return out
}

// Len returns the number of distinct elements.
func (c Composition) Len() int {
	return len(c.symbols)
}

// Map returns a copy of the symbol -> count pairs.
func (c Composition) Map() map[string]int {
	out := make(map[string]int, len(c.counts))
	for s, n := range c.counts {
		out[s] = n
	}
	return out
}

// Equal compares symbol -> count pairs, ignoring order.
func (c Composition) Equal(other Composition) bool {
	if len(c.counts) != len(other.counts) {
		return false
	}
	for s, n := range c.counts {
		if other.counts[s] != n {
			return false
		}
	}
	return true
}

// String formats the composition as a canonical formula: each symbol once,
// followed by its count when the count is not 1.
func (c Composition) String() string {
	var b strings.Builder
	for _, s := range c.symbols {
		b.WriteString(s)
		if n := c.counts[s]; n != 1 {
			b.WriteString(strconv.Itoa(n))
		}
	}
	return b.String()
}

func (c Composition) clone() Composition {
	out := Composition{
		symbols: make([]string, len(c.symbols)),
		counts:  make(map[string]int, len(c.counts)),
	}
	copy(out.symbols, c.symbols)
	for s, n := range c.counts {
		out.counts[s] = n
	}
	return out
}

// add increments symbol by n, creating the entry if needed. It returns false
// and leaves the composition unchanged when the count would overflow.
func (c *Composition) add(symbol string, n int) bool {
	if c.counts[symbol] > math.MaxInt-n {
		return false
	}
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[symbol]; !ok {
		c.symbols = append(c.symbols, symbol)
	}
	c.counts[symbol] += n
	return true
}

// fits reports the first symbol whose count would overflow if other were added.
func (c Composition) fits(other Composition) (string, bool) {
	for _, s := range other.symbols {
		if c.counts[s] > math.MaxInt-other.counts[s] {
			return s, false
		}
	}
	return "", true
}

// sub decrements symbol by n and drops the entry when it reaches zero.
// Callers check availability first.
func (c *Composition) sub(symbol string, n int) {
	c.counts[symbol] -= n
	if c.counts[symbol] > 0 {
		return
	}
	delete(c.counts, symbol)
	for i, s := range c.symbols {
		if s == symbol {
			c.symbols = append(c.symbols[:i], c.symbols[i+1:]...)
			break
		}
	}
}

// scale returns a copy with every count multiplied by n (n >= 1). On overflow
// it returns the offending symbol and false.
func (c Composition) scale(n int) (Composition, string, bool) {
	for _, s := range c.symbols {
		if c.counts[s] > math.MaxInt/n {
			return Composition{}, s, false
		}
	}
	out := c.clone()
	for s := range out.counts {
		out.counts[s] *= n
	}
	return out, "", true
}

// token is one element run of a formula: symbol plus optional count.
type token struct {
	symbol string
	count  int
	pos    int
}

// ParseFormula parses text of the form (UPPER [lower] [digits])+ into a composition.
// Repeated symbols are summed. The text must be covered entirely by tokens and every
// symbol must exist in the element table.
func ParseFormula(text string) (Composition, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return Composition{}, err
	}

	var comp Composition
	for _, t := range tokens {
		if !IsElement(t.symbol) {
			return Composition{}, &FormulaError{
				Formula: text,
				Pos:     t.pos,
				Symbol:  t.symbol,
				Kind:    ErrUnknownElement,
			}
		}
		if !comp.add(t.symbol, t.count) {
			return Composition{}, &FormulaError{
				Formula: text,
				Pos:     t.pos,
				Kind:    ErrSyntax,
				Message: "count out of range",
			}
		}
	}
	return comp, nil
}

// ValidateFormula checks text against the formula grammar and the element table.
func ValidateFormula(text string) error {
	_, err := ParseFormula(text)
	return err
}

func tokenize(text string) ([]token, error) {
	if text == "" {
		return nil, &FormulaError{Formula: text, Pos: -1, Kind: ErrSyntax, Message: "empty formula"}
	}

	var tokens []token
	i := 0
	for i < len(text) {
		start := i
		if !isUpper(text[i]) {
			return nil, syntaxError(text, i)
		}
		i++
		if i < len(text) && isLower(text[i]) {
			i++
		}
		symbol := text[start:i]

		digits := i
		for i < len(text) && isDigit(text[i]) {
			i++
		}
		count := 1
		if i > digits {
			n, err := strconv.Atoi(text[digits:i])
			if err != nil {
				return nil, &FormulaError{Formula: text, Pos: digits, Kind: ErrSyntax, Message: "count out of range"}
			}
			if n == 0 {
				return nil, &FormulaError{Formula: text, Pos: digits, Kind: ErrSyntax, Message: "zero count"}
			}
			count = n
		}
		tokens = append(tokens, token{symbol: symbol, count: count, pos: start})
	}
	return tokens, nil
}

// syntaxError describes the character at pos that no token could cover.
func syntaxError(text string, pos int) *FormulaError {
	ch := text[pos]
	var msg string
	switch {
	case pos == 0 && isLower(ch):
		msg = "formula starts with a lowercase letter"
	case pos == 0 && isDigit(ch):
		msg = "formula starts with a digit"
	case isLower(ch) && isDigit(text[pos-1]):
		msg = "lowercase letter after a count"
	case isLower(ch):
		msg = "element symbol too long"
	default:
		r, _ := utf8.DecodeRuneInString(text[pos:])
		msg = "unexpected character " + strconv.QuoteRune(r)
	}
	return &FormulaError{Formula: text, Pos: pos, Kind: ErrSyntax, Message: msg}
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
func isLower(b byte) bool { return b >= 'a' && b <= 'z' }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }
