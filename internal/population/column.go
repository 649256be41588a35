package population

import (
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Kind distinguishes column value types.
type Kind int

const (
	// KindCategorical columns hold string levels.
	KindCategorical Kind = iota + 1
	// KindNumeric columns hold float64 values.
	KindNumeric
)

// String returns the kind name used in configuration files.
func (k Kind) String() string {
	switch k {
	case KindCategorical:
		return "categorical"
	case KindNumeric:
		return "numeric"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column is a typed per-node attribute vector. Exactly one of the backing
// slices is in use, selected by kind.
type Column struct {
	kind Kind
	cat  []string
	num  []float64
}

// NewCategorical creates a categorical column from the given values.
// Values are NFC-normalized so visually identical spellings compare equal.
func NewCategorical(values []string) *Column {
	c := &Column{kind: KindCategorical, cat: make([]string, len(values))}
	for i, v := range values {
		c.cat[i] = norm.NFC.String(v)
	}
	return c
}

// NewNumeric creates a numeric column from the given values.
func NewNumeric(values []float64) *Column {
	c := &Column{kind: KindNumeric, num: make([]float64, len(values))}
	copy(c.num, values)
	return c
}

// Kind returns the column's value type.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of values.
func (c *Column) Len() int {
	if c.kind == KindCategorical {
		return len(c.cat)
	}
	return len(c.num)
}

// Cat returns the categorical value at row i. Panics on numeric columns.
func (c *Column) Cat(i int) string {
	if c.kind != KindCategorical {
		panic("population: Cat on numeric column")
	}
	return c.cat[i]
}

// Num returns the numeric value at row i. Panics on categorical columns.
func (c *Column) Num(i int) float64 {
	if c.kind != KindNumeric {
		panic("population: Num on categorical column")
	}
	return c.num[i]
}

// Label returns the value at row i rendered as a stratum label: the level
// itself for categorical columns, the shortest exact decimal form for
// numeric ones.
func (c *Column) Label(i int) string {
	if c.kind == KindCategorical {
		return c.cat[i]
	}
	return strconv.FormatFloat(c.num[i], 'g', -1, 64)
}

// setCat overwrites the value at row i.
func (c *Column) setCat(i int, v string) {
	c.cat[i] = norm.NFC.String(v)
}

func (c *Column) setNum(i int, v float64) {
	c.num[i] = v
}

// grow appends one zero value, keeping length in lockstep with the arena.
func (c *Column) grow() {
	if c.kind == KindCategorical {
		c.cat = append(c.cat, "")
	} else {
		c.num = append(c.num, 0)
	}
}

// clone returns an independent copy of the column.
func (c *Column) clone() *Column {
	cp := &Column{kind: c.kind}
	if c.kind == KindCategorical {
		cp.cat = append([]string(nil), c.cat...)
	} else {
		cp.num = append([]float64(nil), c.num...)
	}
	return cp
}
