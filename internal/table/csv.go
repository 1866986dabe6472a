package table

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrEmpty is returned when the input has no header row.
var ErrEmpty = errors.New("no columns to parse from file")

// Options controls how delimited files are read and written.
type Options struct {
	// Delimiter for CSV. If 0, it is derived from the file name (',' or '\t').
	Delimiter rune
}

// DefaultOptions returns the options used for the processed dataset.
func DefaultOptions() Options {
	return Options{}
}

// missingMarkers are the tokens read as a missing value.
var missingMarkers = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
	"#N/A": {},
	"<NA>": {},
}

// IsMissing reports whether a raw token denotes a missing value.
func IsMissing(s string) bool {
	_, ok := missingMarkers[strings.TrimSpace(s)]
	return ok
}

// ReadCSV reads a delimited file into a Frame and infers column kinds.
func ReadCSV(path string, opt Options) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = SniffDelimiter(path)
	}
	return Read(bufio.NewReader(f), filepath.Base(path), opt)
}

// Read parses delimited data from r. name is kept as the Frame name.
func Read(in io.Reader, name string, opt Options) (*Frame, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	frame := &Frame{Name: name, Columns: make([]*Column, ncol)}
	for i, h := range headerNames(header) {
		frame.Columns[i] = &Column{Name: h}
	}

	raw := make([][]string, ncol)
	rows := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", rows+1, err)
		}
		if len(rec) > ncol {
			return nil, fmt.Errorf("read row %d: expected %d fields, saw %d", rows+1, ncol, len(rec))
		}
		rows++
		for j := 0; j < ncol; j++ {
			v := ""
			if j < len(rec) {
				v = rec[j]
			}
			raw[j] = append(raw[j], v)
		}
	}

	for j, c := range frame.Columns {
		c.Kind, c.Cells = inferColumn(raw[j])
	}
	return frame, nil
}

// headerNames trims the header row and makes every name unique. Blank names
// become "Unnamed: i" and repeats get a ".1", ".2" suffix.
func headerNames(header []string) []string {
	names := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		taken[h] = true
		names[i] = h
	}
	seen := make(map[string]bool, len(header))
	for i, h := range names {
		if !seen[h] {
			seen[h] = true
			continue
		}
		for n := 1; ; n++ {
			cand := fmt.Sprintf("%s.%d", h, n)
			if !taken[cand] {
				names[i] = cand
				taken[cand] = true
				seen[cand] = true
				break
			}
		}
	}
	return names
}

// inferColumn decides a column's kind. A column is numeric when every
// non-missing value parses as a number, including a column with no values.
// Numeric cells keep their trimmed token so it is written back unchanged;
// text cells keep the raw value, surrounding spaces included.
func inferColumn(vals []string) (Kind, []Cell) {
	numeric := true
	for _, v := range vals {
		if IsMissing(v) {
			continue
		}
		if _, ok := parseNumeric(v); !ok {
			numeric = false
			break
		}
	}

	cells := make([]Cell, len(vals))
	for i, v := range vals {
		if IsMissing(v) {
			continue
		}
		if !numeric {
			cells[i] = Cell{Text: v, Valid: true}
			continue
		}
		x, _ := parseNumeric(v)
		cells[i] = Cell{Text: strings.TrimSpace(v), Num: x, Valid: true}
	}
	if !numeric {
		return KindText, cells
	}
	return KindNumeric, cells
}

func parseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// SniffDelimiter picks the delimiter from the file name.
func SniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// Write writes the frame as delimited text with a header row.
func Write(w io.Writer, f *Frame, opt Options) error {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	if err := cw.Write(f.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(f.Columns))
	for i := 0; i < f.Rows(); i++ {
		for j, c := range f.Columns {
			rec[j] = c.Format(i)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
