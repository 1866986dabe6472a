package dataprep

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/linkeddata/internal/table"
)

// LeadingPolicy decides what happens to cells that are still missing after a
// forward fill, i.e. missing values with no earlier value in their column.
type LeadingPolicy string

const (
	// LeadingZero fills numeric cells with 0 and text cells with "".
	LeadingZero LeadingPolicy = "zero"
	// LeadingDrop removes every row that still holds a missing cell.
	LeadingDrop LeadingPolicy = "drop"
	// LeadingError aborts with a LeadingMissingError.
	LeadingError LeadingPolicy = "error"
)

// ParseLeadingPolicy accepts zero, drop or error (case-insensitive).
func ParseLeadingPolicy(s string) (LeadingPolicy, error) {
	switch LeadingPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case LeadingZero, "":
		return LeadingZero, nil
	case LeadingDrop:
		return LeadingDrop, nil
	case LeadingError:
		return LeadingError, nil
	}
	return "", fmt.Errorf("invalid leading-missing policy: %s (use zero|drop|error)", s)
}

// LeadingMissingError reports a column whose first rows have no value to
// propagate forward.
type LeadingMissingError struct {
	Column string
	Rows   int
}

func (e *LeadingMissingError) Error() string {
	return fmt.Sprintf("column %q has %d leading missing value(s) that cannot be forward-filled", e.Column, e.Rows)
}

// FillForward returns a copy of f where every missing cell takes the nearest
// preceding non-missing value of its column. The input is not modified.
// Cells left missing because nothing precedes them are handled by policy.
func FillForward(f *table.Frame, policy LeadingPolicy) (*table.Frame, error) {
	out := f.Clone()
	leading := make(map[int]bool)
	for _, c := range out.Columns {
		var last table.Cell
		head := 0
		for i, v := range c.Cells {
			if v.Valid {
				last = v
				continue
			}
			if last.Valid {
				c.Cells[i] = last
				continue
			}
			head++
			leading[i] = true
		}
		if head == 0 {
			continue
		}
		switch policy {
		case LeadingError:
			return nil, &LeadingMissingError{Column: c.Name, Rows: head}
		case LeadingDrop:
		default:
			zeroFill(c)
		}
	}
	if policy == LeadingDrop && len(leading) > 0 {
		out = out.DropRows(leading)
	}
	return out, nil
}

func zeroFill(c *table.Column) {
	for i, v := range c.Cells {
		if v.Valid {
			continue
		}
		if c.Kind == table.KindNumeric {
			c.Cells[i] = table.NumCell(0)
		} else {
			c.Cells[i] = table.TextCell("")
		}
	}
}
