// Package builder combines table compounds with expressions such as "1+2*3-4"
package builder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/exactmass/pkg/core"
)

var (
	// ErrExpression is returned for malformed builder expressions.
	ErrExpression = errors.New("invalid builder expression")

	// ErrUnknownRow is returned when a term references a row that does not exist.
	ErrUnknownRow = errors.New("unknown row")
)

// Term is one row reference of an expression: ROW or ROW*N, added or removed.
type Term struct {
	Row        int // 1-based
	Multiplier int // 1 unless written as ROW*N
	Negative   bool
}

// String formats the term as it appears in an expression.
func (t Term) String() string {
	sign := "+"
	if t.Negative {
		sign = "-"
	}
	if t.Multiplier == 1 {
		return fmt.Sprintf("%s%d", sign, t.Row)
	}
	return fmt.Sprintf("%s%d*%d", sign, t.Row, t.Multiplier)
}

// Source resolves 1-based row references to a name and formula.
type Source interface {
	Lookup(row int) (name, formula string, ok bool)
}

// Parse reads an expression of the form term (("+"|"-") term)*, where a term
// is ROW or ROW*N. The first term may carry a sign. Spaces between tokens are ignored.
func Parse(expr string) ([]Term, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrExpression)
	}

	var terms []Term
	i := 0
	for i < len(s) {
		term := Term{Multiplier: 1}
		switch s[i] {
		case '+':
			i++
		case '-':
			term.Negative = true
			i++
		default:
			if len(terms) > 0 {
				return nil, fmt.Errorf("%w: expected + or - at position %d in %q", ErrExpression, i, expr)
			}
		}

		row, next, err := readNumber(s, skipSpace(s, i))
		if err != nil {
			return nil, fmt.Errorf("%w: %v in %q", ErrExpression, err, expr)
		}
		term.Row = row
		i = skipSpace(s, next)

		if i < len(s) && s[i] == '*' {
			n, next, err := readNumber(s, skipSpace(s, i+1))
			if err != nil {
				return nil, fmt.Errorf("%w: %v in %q", ErrExpression, err, expr)
			}
			if n < 1 {
				return nil, fmt.Errorf("%w: multiplier must be at least 1 in %q", ErrExpression, expr)
			}
			term.Multiplier = n
			i = skipSpace(s, next)
		}
		terms = append(terms, term)
	}
	return terms, nil
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func readNumber(s string, start int) (int, int, error) {
	end := start
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		if start >= len(s) {
			return 0, 0, fmt.Errorf("missing number at end")
		}
		return 0, 0, fmt.Errorf("unexpected %q at position %d", s[start], start)
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0, 0, fmt.Errorf("number out of range at position %d", start)
	}
	return n, end, nil
}

// Build combines the referenced compounds. Positive terms are condensed onto
// the first positive term with AddCompound, then negative terms are split off
// with DelCompound; each step releases or consumes one elimination molecule.
// The returned compound is named after the terms, e.g. "(Gly)+2(Ala)-(H2O)".
func Build(terms []Term, src Source, elimination string) (*core.Compound, error) {
	var plus, minus []*core.Compound
	var names []string

	for _, term := range terms {
		name, formula, ok := src.Lookup(term.Row)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownRow, term.Row)
		}
		if formula == "" {
			return nil, fmt.Errorf("row %d: %w", term.Row, core.ErrInvalidFormula)
		}

		c := core.NewCompound(formula)
		if err := c.Err(); err != nil {
			return nil, fmt.Errorf("row %d: %w", term.Row, err)
		}
		if term.Multiplier > 1 {
			var err error
			c, err = c.Multiply(term.Multiplier, elimination)
			if err != nil {
				return nil, fmt.Errorf("row %d*%d: %w", term.Row, term.Multiplier, err)
			}
		}

		label := name
		if label == "" {
			label = formula
		}
		part := "(" + label + ")"
		if term.Multiplier > 1 {
			part = strconv.Itoa(term.Multiplier) + part
		}

		if term.Negative {
			minus = append(minus, c)
			names = append(names, "-"+part)
		} else {
			plus = append(plus, c)
			names = append(names, "+"+part)
		}
	}

	if len(plus) == 0 {
		return nil, fmt.Errorf("%w: at least one added term is required", ErrExpression)
	}

	result := plus[0]
	for _, c := range plus[1:] {
		next, err := result.AddCompound(c, elimination)
		if err != nil {
			return nil, err
		}
		result = next
	}
	for _, c := range minus {
		next, err := result.DelCompound(c, elimination)
		if err != nil {
			return nil, err
		}
		result = next
	}

	result.Name = autoName(names)
	return result, nil
}

// autoName joins the term labels, dropping the sign of the first one.
func autoName(parts []string) string {
	name := strings.Join(parts, "")
	if strings.HasPrefix(name, "+") {
		return name[1:]
	}
	return name
}
