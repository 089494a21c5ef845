// Package table holds the in-memory Table model and the pure transforms the
// pipeline applies to it.
//
// Every transform returns a new Table and leaves its input untouched, so a
// caller can keep the previous version around or swap the result in under its
// own lock.
package table

import (
	"fmt"
	"strconv"
)

// ColumnType is the inferred type of a column.
type ColumnType int

const (
	Text ColumnType = iota
	Numeric
)

// String returns the type name used in JSON and templates.
func (t ColumnType) String() string {
	if t == Numeric {
		return "numeric"
	}
	return "text"
}

// MarshalText implements encoding.TextMarshaler.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Value is a single cell. An absent value has Present == false and its other
// fields are meaningless.
type Value struct {
	Text    string  // Source text (or formatted fill value)
	Number  float64 // Parsed value, valid for present cells of numeric columns
	Present bool
}

// Absent is the zero Value.
var Absent = Value{}

// NumberValue builds a present numeric cell from a float.
func NumberValue(f float64) Value {
	return Value{Text: strconv.FormatFloat(f, 'f', -1, 64), Number: f, Present: true}
}

// TextValue builds a present text cell.
func TextValue(s string) Value {
	return Value{Text: s, Present: true}
}

// Column is a named, typed sequence of values.
type Column struct {
	Name   string
	Type   ColumnType
	Values []Value
}

// Table is an ordered set of columns whose values are aligned by row position.
type Table struct {
	columns []Column
	rows    int
}

// New builds a Table from columns. All columns must have the same length.
func New(columns ...Column) (*Table, error) {
	t := &Table{columns: columns}
	for i, c := range columns {
		if i == 0 {
			t.rows = len(c.Values)
			continue
		}
		if len(c.Values) != t.rows {
			return nil, fmt.Errorf("column %q has %d values, want %d", c.Name, len(c.Values), t.rows)
		}
	}
	return t, nil
}

// MustNew is New for fixtures; it panics on misaligned columns.
func MustNew(columns ...Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// Columns returns the columns. Callers must not modify the returned slice.
func (t *Table) Columns() []Column { return t.columns }

// Column returns the column at index i.
func (t *Table) Column(i int) Column { return t.columns[i] }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Row returns the values of row r across all columns.
func (t *Table) Row(r int) []Value {
	row := make([]Value, len(t.columns))
	for i, c := range t.columns {
		row[i] = c.Values[r]
	}
	return row
}

// NumericColumns returns the numeric columns in table order.
func (t *Table) NumericColumns() []Column {
	var out []Column
	for _, c := range t.columns {
		if c.Type == Numeric {
			out = append(out, c)
		}
	}
	return out
}

// Equal reports whether two tables have the same names, types and values.
func (t *Table) Equal(o *Table) bool {
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i, c := range t.columns {
		oc := o.columns[i]
		if c.Name != oc.Name || c.Type != oc.Type {
			return false
		}
		for r := range c.Values {
			if cellKey(c.Type, c.Values[r]) != cellKey(oc.Type, oc.Values[r]) {
				return false
			}
		}
	}
	return true
}
