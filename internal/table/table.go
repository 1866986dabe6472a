package table

import (
	"strconv"
)

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric Kind = "numeric"
	KindText    Kind = "text"
)

// Cell is a single value. Valid is false for missing values.
type Cell struct {
	Text  string
	Num   float64
	Valid bool
}

// NumCell builds a valid numeric cell.
func NumCell(x float64) Cell {
	return Cell{Text: formatNum(x), Num: x, Valid: true}
}

// TextCell builds a valid text cell.
func TextCell(s string) Cell {
	return Cell{Text: s, Valid: true}
}

// Column holds the cells of one column in row order.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// Missing counts the invalid cells in the column.
func (c *Column) Missing() int {
	n := 0
	for _, v := range c.Cells {
		if !v.Valid {
			n++
		}
	}
	return n
}

// Format renders cell i the way it is written to disk. Numeric cells read
// from input keep their original token, so integers beyond float64
// precision survive a round trip.
func (c *Column) Format(i int) string {
	v := c.Cells[i]
	if !v.Valid {
		return ""
	}
	if c.Kind == KindNumeric && v.Text == "" {
		return formatNum(v.Num)
	}
	return v.Text
}

func (c *Column) clone() *Column {
	cells := make([]Cell, len(c.Cells))
	copy(cells, c.Cells)
	return &Column{Name: c.Name, Kind: c.Kind, Cells: cells}
}

// Frame is a column-major in-memory table. A Frame handed to readers is
// never mutated; transformations work on a Clone.
type Frame struct {
	Name    string
	Columns []*Column
}

// Rows returns the number of records.
func (f *Frame) Rows() int {
	if f == nil || len(f.Columns) == 0 {
		return 0
	}
	return len(f.Columns[0].Cells)
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		out[i] = c.Name
	}
	return out
}

// Column looks a column up by exact name.
func (f *Frame) Column(name string) (*Column, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// SetColumn replaces the column with the same name, or appends it.
func (f *Frame) SetColumn(col *Column) {
	for i, c := range f.Columns {
		if c.Name == col.Name {
			f.Columns[i] = col
			return
		}
	}
	f.Columns = append(f.Columns, col)
}

// NumericColumns returns the numeric columns in order.
func (f *Frame) NumericColumns() []*Column {
	var out []*Column
	for _, c := range f.Columns {
		if c.Kind == KindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	out := &Frame{Name: f.Name, Columns: make([]*Column, len(f.Columns))}
	for i, c := range f.Columns {
		out.Columns[i] = c.clone()
	}
	return out
}

// DropRows returns a copy without the rows whose index is in drop.
func (f *Frame) DropRows(drop map[int]bool) *Frame {
	out := &Frame{Name: f.Name, Columns: make([]*Column, len(f.Columns))}
	for i, c := range f.Columns {
		nc := &Column{Name: c.Name, Kind: c.Kind, Cells: make([]Cell, 0, len(c.Cells))}
		for r, v := range c.Cells {
			if !drop[r] {
				nc.Cells = append(nc.Cells, v)
			}
		}
		out.Columns[i] = nc
	}
	return out
}

// Record returns row i keyed by column name. Numeric cells are float64,
// text cells are strings and missing cells are nil.
func (f *Frame) Record(i int) map[string]any {
	rec := make(map[string]any, len(f.Columns))
	for _, c := range f.Columns {
		v := c.Cells[i]
		switch {
		case !v.Valid:
			rec[c.Name] = nil
		case c.Kind == KindNumeric:
			rec[c.Name] = v.Num
		default:
			rec[c.Name] = v.Text
		}
	}
	return rec
}

func formatNum(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
