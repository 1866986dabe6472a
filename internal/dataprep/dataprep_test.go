package dataprep

import (
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/linkeddata/internal/table"
)

func readFrame(t *testing.T, rows ...string) *table.Frame {
	t.Helper()
	f, err := table.Read(strings.NewReader(strings.Join(rows, "\n")), "test.csv", table.DefaultOptions())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestFillForwardCarriesLastValue(t *testing.T) {
	f := readFrame(t, "cat,num", "A,1", "B,2", "A,3", "B,")
	got, err := FillForward(f, LeadingZero)
	if err != nil {
		t.Fatalf("FillForward: %v", err)
	}
	num, _ := got.Column("num")
	if !num.Cells[3].Valid || num.Cells[3].Num != 3 {
		t.Fatalf("num[3] = %+v, want 3", num.Cells[3])
	}
	// the input frame is untouched
	orig, _ := f.Column("num")
	if orig.Cells[3].Valid {
		t.Fatalf("input frame was modified")
	}
	if got.Rows() != f.Rows() {
		t.Fatalf("rows = %d, want %d", got.Rows(), f.Rows())
	}
}

func TestFillForwardInvariant(t *testing.T) {
	f := readFrame(t, "a,b", "1,x", ",", "3,", ",y", ",")
	got, err := FillForward(f, LeadingError)
	if err != nil {
		t.Fatalf("FillForward: %v", err)
	}
	for ci, c := range got.Columns {
		src := f.Columns[ci]
		var last table.Cell
		for i, v := range c.Cells {
			if src.Cells[i].Valid {
				last = src.Cells[i]
				if v != src.Cells[i] {
					t.Fatalf("%s[%d] changed a present value", c.Name, i)
				}
				continue
			}
			if v != last {
				t.Fatalf("%s[%d] = %+v, want %+v", c.Name, i, v, last)
			}
		}
	}
}

func TestFillForwardLeadingPolicies(t *testing.T) {
	rows := []string{"cat,num", ",", "A,", "B,2"}

	got, err := FillForward(readFrame(t, rows...), LeadingZero)
	if err != nil {
		t.Fatalf("zero: %v", err)
	}
	cat, _ := got.Column("cat")
	num, _ := got.Column("num")
	if cat.Cells[0] != table.TextCell("") || num.Cells[1] != table.NumCell(0) {
		t.Fatalf("zero fill: cat=%+v num=%+v", cat.Cells, num.Cells)
	}

	got, err = FillForward(readFrame(t, rows...), LeadingDrop)
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if got.Rows() != 1 {
		t.Fatalf("drop kept %d rows, want 1", got.Rows())
	}

	_, err = FillForward(readFrame(t, rows...), LeadingError)
	var lme *LeadingMissingError
	if !errors.As(err, &lme) {
		t.Fatalf("expected LeadingMissingError, got %v", err)
	}
	if lme.Column != "cat" || lme.Rows != 1 {
		t.Fatalf("unexpected error detail: %+v", lme)
	}
}

func TestParseLeadingPolicy(t *testing.T) {
	cases := map[string]LeadingPolicy{"": LeadingZero, "ZERO": LeadingZero, "drop": LeadingDrop, " error ": LeadingError}
	for in, want := range cases {
		got, err := ParseLeadingPolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParseLeadingPolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseLeadingPolicy("bfill"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestLabelEncodeSortedCodes(t *testing.T) {
	f := readFrame(t, "cat,num", "B,1", "A,2", "C,3", "A,4")
	got, labels := LabelEncode(f, nil)
	cat, _ := got.Column("cat")
	if cat.Kind != table.KindNumeric {
		t.Fatalf("cat kind = %s", cat.Kind)
	}
	want := []float64{1, 0, 2, 0}
	for i, w := range want {
		if cat.Cells[i].Num != w {
			t.Fatalf("cat[%d] = %v, want %v", i, cat.Cells[i].Num, w)
		}
	}
	if labels["cat"]["C"] != 2 {
		t.Fatalf("labels = %v", labels)
	}
	if _, ok := labels["num"]; ok {
		t.Fatalf("numeric column should not be encoded")
	}
	if v, ok := labels.Decode("cat", 1); !ok || v != "B" {
		t.Fatalf("Decode = %q, %v", v, ok)
	}
	orig, _ := f.Column("cat")
	if orig.Kind != table.KindText {
		t.Fatalf("input frame was modified")
	}
}

func TestLabelEncodeSameValueSameCode(t *testing.T) {
	f := readFrame(t, "cat,num", "A,1", "B,2", "A,3", "B,3")
	got, _ := LabelEncode(f, nil)
	cat, _ := got.Column("cat")
	if cat.Cells[0] != cat.Cells[2] || cat.Cells[1] != cat.Cells[3] || cat.Cells[0] == cat.Cells[1] {
		t.Fatalf("inconsistent codes: %+v", cat.Cells)
	}
}

func TestLabelEncodeReusesPrior(t *testing.T) {
	prior := LabelMap{"cat": {"Z": 0, "B": 1}}
	f := readFrame(t, "cat", "A", "B", "Z")
	got, labels := LabelEncode(f, prior)
	cat, _ := got.Column("cat")
	if cat.Cells[1].Num != 1 || cat.Cells[2].Num != 0 {
		t.Fatalf("prior codes not kept: %+v", cat.Cells)
	}
	if labels["cat"]["A"] != 2 {
		t.Fatalf("new value code = %d, want 2", labels["cat"]["A"])
	}
}
