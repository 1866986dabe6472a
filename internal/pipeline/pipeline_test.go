package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"

	"github.com/KaramelBytes/linkeddata/internal/table"
)

func init() {
	log.SetHandler(discard.Default)
}

func testOptions(t *testing.T, rows ...string) Options {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "raw.csv")
	if err := os.WriteFile(in, []byte(strings.Join(rows, "\n")), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	opt := DefaultOptions()
	opt.InputPath = in
	opt.OutputPath = filepath.Join(dir, "dataset_procesado.csv")
	opt.PlotPath = filepath.Join(dir, "static", "clusters.png")
	opt.LabelsPath = filepath.Join(dir, "dataset_procesado.labels.yaml")
	return opt
}

func TestRunExample(t *testing.T) {
	opt := testOptions(t, "cat,num", "A,1", "B,2", "A,3", "B,")
	res, err := Run(context.Background(), opt)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	f := res.Frame
	if f.Rows() != 4 {
		t.Fatalf("rows = %d, want 4", f.Rows())
	}
	num, _ := f.Column("num")
	if num.Cells[3].Num != 3 {
		t.Fatalf("num[3] = %v, want forward-filled 3", num.Cells[3].Num)
	}
	cat, _ := f.Column("cat")
	got := []float64{cat.Cells[0].Num, cat.Cells[1].Num, cat.Cells[2].Num, cat.Cells[3].Num}
	if !(got[0] == got[2] && got[1] == got[3] && got[0] != got[1]) {
		t.Fatalf("cat codes = %v", got)
	}
	cl, ok := f.Column(ClusterColumn)
	if !ok {
		t.Fatalf("cluster column missing")
	}
	for i, c := range cl.Cells {
		if !c.Valid || c.Num < 0 || c.Num > 2 || c.Num != float64(int(c.Num)) {
			t.Fatalf("cluster[%d] = %+v", i, c)
		}
	}
	if got := f.Names(); strings.Join(got, ",") != "cat,num,cluster" {
		t.Fatalf("columns = %v", got)
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	opt := testOptions(t, "cat,num,score", "A,1,5", "B,2,6", "C,3,1", "A,4,2", "B,5,9", "C,6,4")
	res, err := Run(context.Background(), opt)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID == "" {
		t.Fatalf("missing run id")
	}
	back, err := table.ReadCSV(opt.OutputPath, table.DefaultOptions())
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if back.Rows() != 6 || len(back.Columns) != 4 {
		t.Fatalf("output shape %dx%d", back.Rows(), len(back.Columns))
	}
	for _, c := range back.Columns {
		if c.Kind != table.KindNumeric {
			t.Fatalf("column %s not numeric in output", c.Name)
		}
	}
	img, err := os.ReadFile(opt.PlotPath)
	if err != nil {
		t.Fatalf("read plot: %v", err)
	}
	if !bytes.HasPrefix(img, []byte("\x89PNG")) {
		t.Fatalf("plot is not a PNG")
	}
	labels, err := ReadLabelFile(opt.LabelsPath)
	if err != nil {
		t.Fatalf("read labels: %v", err)
	}
	if labels["cat"]["C"] != 2 {
		t.Fatalf("labels = %v", labels)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	rows := []string{"cat,num", "A,1", "B,8", "A,3", "C,9", "B,2", "C,7", "A,5"}
	a, err := Run(context.Background(), testOptions(t, rows...))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := Run(context.Background(), testOptions(t, rows...))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ca, _ := a.Frame.Column(ClusterColumn)
	cb, _ := b.Frame.Column(ClusterColumn)
	for i := range ca.Cells {
		if ca.Cells[i] != cb.Cells[i] {
			t.Fatalf("row %d differs across runs", i)
		}
	}
}

func TestRunMissingInput(t *testing.T) {
	opt := testOptions(t, "a", "1")
	opt.InputPath = filepath.Join(t.TempDir(), "absent.csv")
	_, err := Run(context.Background(), opt)
	var mie *MissingInputError
	if !errors.As(err, &mie) {
		t.Fatalf("expected MissingInputError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("MissingInputError should unwrap to ErrNotExist")
	}
	if _, err := os.Stat(opt.OutputPath); !os.IsNotExist(err) {
		t.Fatalf("output written on failure")
	}
}

func TestRunFailureKeepsPreviousOutputs(t *testing.T) {
	opt := testOptions(t, "a,b", "1,2", "3,4")
	if err := os.WriteFile(opt.OutputPath, []byte("previous"), 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}
	// two rows cannot form three clusters
	if _, err := Run(context.Background(), opt); err == nil {
		t.Fatalf("expected cluster error")
	}
	got, _ := os.ReadFile(opt.OutputPath)
	if string(got) != "previous" {
		t.Fatalf("output overwritten: %q", got)
	}
}

func TestRunReplacesExistingClusterColumn(t *testing.T) {
	opt := testOptions(t, "x,cluster,y", "1,9,1", "2,9,1", "10,9,5", "11,9,5", "20,9,9", "21,9,9")
	res, err := Run(context.Background(), opt)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(res.Frame.Names(), ","); got != "x,cluster,y" {
		t.Fatalf("columns = %s", got)
	}
	cl, _ := res.Frame.Column(ClusterColumn)
	for _, c := range cl.Cells {
		if c.Num == 9 {
			t.Fatalf("stale cluster value kept")
		}
	}
}

func TestRunReuseLabels(t *testing.T) {
	opt := testOptions(t, "cat,num", "B,1", "C,2", "B,3")
	opt.ReuseLabels = true
	if _, err := Run(context.Background(), opt); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := os.WriteFile(opt.InputPath, []byte("cat,num\nA,1\nB,2\nC,3\n"), 0o644); err != nil {
		t.Fatalf("rewrite input: %v", err)
	}
	res, err := Run(context.Background(), opt)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Labels["cat"]["B"] != 0 || res.Labels["cat"]["C"] != 1 || res.Labels["cat"]["A"] != 2 {
		t.Fatalf("labels not stable: %v", res.Labels)
	}
}

func TestRunCanceled(t *testing.T) {
	opt := testOptions(t, "a", "1", "2", "3")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, opt); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunKeepsLargeIntegers(t *testing.T) {
	ids := []string{"9007199254740993", "1234567890123456789", "9007199254740995", "42"}
	rows := []string{"id,num"}
	for i, id := range ids {
		rows = append(rows, id+","+strings.Repeat("1", i+1))
	}
	opt := testOptions(t, rows...)
	if _, err := Run(context.Background(), opt); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := os.ReadFile(opt.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != len(ids)+1 {
		t.Fatalf("output has %d lines", len(lines))
	}
	for i, id := range ids {
		want := id + "," + strings.Repeat("1", i+1) + ","
		if !strings.HasPrefix(lines[i+1], want) {
			t.Fatalf("row %d = %q, want prefix %q", i, lines[i+1], want)
		}
	}
}
