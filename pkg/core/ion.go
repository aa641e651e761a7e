package core

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// headerSep separates the fields of an encoded ion column header
const headerSep = "#"

// Adducts accepted for ion columns besides hydrogen
var Adducts = []string{"K", "Na", "Li"}

var (
	modifyPattern = regexp.MustCompile(`^([+-][A-Za-z0-9]+)+$`)
	modifyTerm    = regexp.MustCompile(`[+-][A-Za-z0-9]+`)
	chargePattern = regexp.MustCompile(`^([+-]?)(\d*)([+-]?)$`)
)

// IonColumn describes one computed column of a mass table: the ion formed
// from a compound by removing Delete, adding Add and ionizing with Charge
// and Adduct. Retention-time columns hold user values and are never computed.
type IonColumn struct {
	Name          string
	Add           string
	Delete        string
	Adduct        string
	Charge        int
	RetentionTime bool
}

// DefaultIonColumns returns the neutral, [M-H]-, [M+H]+, [M+Na]+ and [M+K]+ columns.
func DefaultIonColumns() []IonColumn {
	return []IonColumn{
		{Name: "neutral"},
		{Name: "[M-H]-", Charge: -1},
		{Name: "[M+H]+", Charge: 1},
		{Name: "[M+Na]+", Adduct: "Na", Charge: 1},
		{Name: "[M+K]+", Adduct: "K", Charge: 1},
	}
}

// Ion builds the ion of formula described by the column.
// The returned compound carries the column name.
func (col IonColumn) Ion(formula string) (*Compound, error) {
	c := NewIon(formula, col.Charge, col.Adduct)
	c.Name = col.Name
	if _, err := c.DelElements(col.Delete); err != nil {
		return c, err
	}
	if _, err := c.AddElements(col.Add); err != nil {
		return c, err
	}
	return c, nil
}

// Compute returns the mass of the column's ion of formula.
func (col IonColumn) Compute(formula string, precision int32) (decimal.Decimal, error) {
	if col.RetentionTime {
		return decimal.Zero, fmt.Errorf("%w: %s is a retention time column", ErrInvalidIonColumn, col.Name)
	}
	ion, err := col.Ion(formula)
	if err != nil {
		return decimal.Zero, err
	}
	return ion.CalcMass(precision)
}

// Validate checks the column definition.
func (col IonColumn) Validate() error {
	if col.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidIonColumn)
	}
	if strings.Contains(col.Name, headerSep) {
		return fmt.Errorf("%w: name %q contains %q", ErrInvalidIonColumn, col.Name, headerSep)
	}
	if col.RetentionTime {
		return nil
	}
	if col.Add != "" {
		if err := ValidateFormula(col.Add); err != nil {
			return fmt.Errorf("%w: add: %w", ErrInvalidIonColumn, err)
		}
	}
	if col.Delete != "" {
		if err := ValidateFormula(col.Delete); err != nil {
			return fmt.Errorf("%w: delete: %w", ErrInvalidIonColumn, err)
		}
	}
	if col.Adduct != "" {
		if !slices.Contains(Adducts, col.Adduct) {
			return fmt.Errorf("%w: adduct %q must be one of %s", ErrInvalidIonColumn, col.Adduct, strings.Join(Adducts, ", "))
		}
		if col.Charge <= 0 {
			return fmt.Errorf("%w: adduct %s needs a positive charge", ErrInvalidIonColumn, col.Adduct)
		}
	}
	return nil
}

// Header encodes the column as name#add#delete#adduct#charge#rt.
func (col IonColumn) Header() string {
	rt := "no"
	charge := strconv.Itoa(col.Charge)
	if col.RetentionTime {
		rt = "yes"
		charge = ""
	}
	return strings.Join([]string{col.Name, col.Add, col.Delete, col.Adduct, charge, rt}, headerSep)
}

// ParseIonHeader decodes a header produced by Header. The five-field form
// without the retention time flag is accepted and read as a computed column.
func ParseIonHeader(header string) (IonColumn, error) {
	parts := strings.Split(header, headerSep)
	if len(parts) != 5 && len(parts) != 6 {
		return IonColumn{}, fmt.Errorf("%w: header %q has %d fields, expected 6", ErrInvalidIonColumn, header, len(parts))
	}

	col := IonColumn{
		Name:   parts[0],
		Add:    parts[1],
		Delete: parts[2],
		Adduct: parts[3],
	}
	if len(parts) == 6 {
		switch parts[5] {
		case "yes":
			col.RetentionTime = true
		case "no", "":
		default:
			return IonColumn{}, fmt.Errorf("%w: header %q: retention time flag %q", ErrInvalidIonColumn, header, parts[5])
		}
	}
	if parts[4] != "" {
		charge, err := strconv.Atoi(parts[4])
		if err != nil {
			return IonColumn{}, fmt.Errorf("%w: header %q: charge %q", ErrInvalidIonColumn, header, parts[4])
		}
		col.Charge = charge
	}

	if err := col.Validate(); err != nil {
		return IonColumn{}, err
	}
	return col, nil
}

// NewIonColumn builds a column from user input.
//
// modify is a sequence of +FORMULA and -FORMULA terms, charge is empty, "0",
// "+", "-" or an integer with an optional sign before or after it ("2+", "-2").
// An empty name is generated from the other fields. A name with no other
// input makes a retention time column.
func NewIonColumn(name, modify, adduct, charge string) (IonColumn, error) {
	if modify == "" && adduct == "" && charge == "" {
		col := IonColumn{Name: name, RetentionTime: true}
		return col, col.Validate()
	}

	add, del, err := ParseModification(modify)
	if err != nil {
		return IonColumn{}, err
	}
	z, err := ParseCharge(charge)
	if err != nil {
		return IonColumn{}, err
	}

	col := IonColumn{Name: name, Add: add, Delete: del, Adduct: adduct, Charge: z}
	if col.Name == "" {
		col.Name = IonName(add, del, adduct, z)
	}
	if err := col.Validate(); err != nil {
		return IonColumn{}, err
	}
	return col, nil
}

// ParseModification splits "+H2O-NH3" style text into the formulas to add and delete.
func ParseModification(modify string) (add, del string, err error) {
	if modify == "" {
		return "", "", nil
	}
	if !modifyPattern.MatchString(modify) {
		return "", "", fmt.Errorf("%w: modification %q must be a sequence of +FORMULA or -FORMULA", ErrInvalidIonColumn, modify)
	}

	var plus, minus strings.Builder
	for _, term := range modifyTerm.FindAllString(modify, -1) {
		formula := term[1:]
		if err := ValidateFormula(formula); err != nil {
			return "", "", fmt.Errorf("%w: modification %q: %w", ErrInvalidIonColumn, modify, err)
		}
		if term[0] == '+' {
			plus.WriteString(formula)
		} else {
			minus.WriteString(formula)
		}
	}
	return plus.String(), minus.String(), nil
}

// ParseCharge reads a charge state such as "", "0", "+", "-", "2+", "-3" or "2".
func ParseCharge(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	m := chargePattern.FindStringSubmatch(s)
	if m == nil || (m[1] != "" && m[3] != "") || (m[2] == "" && m[1] == "" && m[3] == "") {
		return 0, fmt.Errorf("%w: charge %q", ErrInvalidIonColumn, s)
	}

	n := 1
	if m[2] != "" {
		var err error
		n, err = strconv.Atoi(m[2])
		if err != nil {
			return 0, fmt.Errorf("%w: charge %q", ErrInvalidIonColumn, s)
		}
	}
	if m[1] == "-" || m[3] == "-" {
		n = -n
	}
	return n, nil
}

// IonName generates a column name in bracket notation, e.g. [M+H]+, [M-2H]2-, [M+H2O+Na]+.
func IonName(add, del, adduct string, charge int) string {
	var b strings.Builder
	b.WriteString("[M")
	if add != "" {
		b.WriteString("+" + add)
	}
	if del != "" {
		b.WriteString("-" + del)
	}
	if charge == 0 {
		b.WriteString("]")
		return b.String()
	}

	magnitude := ""
	if charge > 1 || charge < -1 {
		magnitude = strconv.Itoa(abs(charge))
	}
	if charge > 0 {
		species := adduct
		if species == "" {
			species = Hydrogen
		}
		b.WriteString("+" + magnitude + species + "]" + magnitude + "+")
	} else {
		b.WriteString("-" + magnitude + Hydrogen + "]" + magnitude + "-")
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
