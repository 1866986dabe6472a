package dataprep

import (
	"sort"

	"github.com/KaramelBytes/linkeddata/internal/table"
)

// LabelMap holds the code assigned to each distinct value, per column.
type LabelMap map[string]map[string]int

// Decode returns the original value behind a code.
func (m LabelMap) Decode(column string, code int) (string, bool) {
	for v, c := range m[column] {
		if c == code {
			return v, true
		}
	}
	return "", false
}

// LabelEncode returns a copy of f with every text column replaced by integer
// codes, plus the mapping used. Distinct values are coded in sorted order.
// When prior holds a mapping for a column its codes are kept and unseen
// values continue after the highest prior code.
func LabelEncode(f *table.Frame, prior LabelMap) (*table.Frame, LabelMap) {
	out := f.Clone()
	labels := LabelMap{}
	for _, c := range out.Columns {
		if c.Kind != table.KindText {
			continue
		}
		mapping := encoderFor(c, prior[c.Name])
		for i, v := range c.Cells {
			if !v.Valid {
				continue
			}
			c.Cells[i] = table.NumCell(float64(mapping[v.Text]))
		}
		c.Kind = table.KindNumeric
		labels[c.Name] = mapping
	}
	return out, labels
}

func encoderFor(c *table.Column, prior map[string]int) map[string]int {
	seen := map[string]struct{}{}
	for _, v := range c.Cells {
		if v.Valid {
			seen[v.Text] = struct{}{}
		}
	}
	distinct := make([]string, 0, len(seen))
	for v := range seen {
		distinct = append(distinct, v)
	}
	sort.Strings(distinct)

	mapping := make(map[string]int, len(distinct))
	next := 0
	for v, code := range prior {
		mapping[v] = code
		if code >= next {
			next = code + 1
		}
	}
	for _, v := range distinct {
		if _, ok := mapping[v]; ok {
			continue
		}
		mapping[v] = next
		next++
	}
	return mapping
}
