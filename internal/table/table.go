package table

import (
	"fmt"
	"math"
	"slices"
)

// Kind distinguishes numeric from categorical columns.
type Kind int

const (
	// Numeric columns hold float64 values; NaN marks a missing value.
	Numeric Kind = iota
	// Categorical columns hold strings; an empty string marks a missing value.
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Column is a single named vector of values.
type Column struct {
	Name string
	Kind Kind
	Num  []float64
	Str  []string
}

// NewNumeric builds a numeric column. The slice is copied.
func NewNumeric(name string, values []float64) *Column {
	return &Column{Name: name, Kind: Numeric, Num: slices.Clone(values)}
}

// NewCategorical builds a categorical column. The slice is copied.
func NewCategorical(name string, values []string) *Column {
	return &Column{Name: name, Kind: Categorical, Str: slices.Clone(values)}
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Num)
	}
	return len(c.Str)
}

// IsNull reports whether the value at row i is missing.
func (c *Column) IsNull(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Num[i])
	}
	return c.Str[i] == ""
}

func (c *Column) take(rows []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	if c.Kind == Numeric {
		out.Num = make([]float64, len(rows))
		for i, r := range rows {
			out.Num[i] = c.Num[r]
		}
		return out
	}
	out.Str = make([]string, len(rows))
	for i, r := range rows {
		out.Str[i] = c.Str[r]
	}
	return out
}

// Table is an ordered set of equally long columns.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New assembles a table from columns. Column names must be unique and all
// columns must have the same length.
func New(columns ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for i, c := range columns {
		if _, exists := t.index[c.Name]; exists {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), t.rows)
		}
		t.index[c.Name] = i
		t.columns = append(t.columns, c)
	}
	return t, nil
}

// MustNew is like New but panics on error. It is meant for tests and
// package-level fixtures.
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the table contains a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column. Callers must not modify it.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Numeric returns the values of a numeric column.
func (t *Table) Numeric(name string) ([]float64, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	if c.Kind != Numeric {
		return nil, fmt.Errorf("column %q is %s, not numeric", name, c.Kind)
	}
	return c.Num, nil
}

// NumericColumns returns the names of all numeric columns in table order.
func (t *Table) NumericColumns() []string {
	var names []string
	for _, c := range t.columns {
		if c.Kind == Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// Take returns a new table made of the given rows, in the given order.
func (t *Table) Take(rows []int) *Table {
	out := &Table{index: make(map[string]int, len(t.columns)), rows: len(rows)}
	for i, c := range t.columns {
		out.columns = append(out.columns, c.take(rows))
		out.index[c.Name] = i
	}
	return out
}

// DropNull returns a table without the rows that have a missing value in any
// of the named columns. Every named column must exist.
func (t *Table) DropNull(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		cols = append(cols, c)
	}

	keep := make([]int, 0, t.rows)
	for r := 0; r < t.rows; r++ {
		null := false
		for _, c := range cols {
			if c.IsNull(r) {
				null = true
				break
			}
		}
		if !null {
			keep = append(keep, r)
		}
	}
	return t.Take(keep), nil
}

// With returns a table with the column added, or replaced if a column of the
// same name exists.
func (t *Table) With(c *Column) (*Table, error) {
	if t.rows != c.Len() && len(t.columns) > 0 {
		return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), t.rows)
	}
	cols := slices.Clone(t.columns)
	if i, ok := t.index[c.Name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return New(cols...)
}

// Drop returns a table without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	cols := make([]*Column, 0, len(t.columns))
	for _, c := range t.columns {
		if !slices.Contains(names, c.Name) {
			cols = append(cols, c)
		}
	}
	out, _ := New(cols...)
	if len(cols) == 0 {
		out.rows = t.rows
	}
	return out
}

// Encode returns a table where each categorical column named in mapping is
// replaced by a numeric column holding the position of its value in the
// mapping. Values not present in the mapping become missing.
func (t *Table) Encode(mapping map[string][]string) *Table {
	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		levels, ok := mapping[c.Name]
		if !ok || c.Kind != Categorical {
			cols[i] = c
			continue
		}
		codes := make([]float64, len(c.Str))
		for r, v := range c.Str {
			idx := slices.Index(levels, v)
			if idx < 0 {
				codes[r] = math.NaN()
			} else {
				codes[r] = float64(idx)
			}
		}
		cols[i] = &Column{Name: c.Name, Kind: Numeric, Num: codes}
	}
	out, _ := New(cols...)
	return out
}

// Records returns the rows as maps keyed by column name. Missing values are nil.
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, t.rows)
	for r := 0; r < t.rows; r++ {
		rec := make(map[string]any, len(t.columns))
		for _, c := range t.columns {
			switch {
			case c.IsNull(r):
				rec[c.Name] = nil
			case c.Kind == Numeric:
				rec[c.Name] = c.Num[r]
			default:
				rec[c.Name] = c.Str[r]
			}
		}
		out[r] = rec
	}
	return out
}
