package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFilesPublishesAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "out.csv")
	b := filepath.Join(dir, "static", "plot.png")
	if err := SafeWriteFiles(PendingFile{Path: a, Data: []byte("x")}, PendingFile{Path: b, Data: []byte("y")}); err != nil {
		t.Fatalf("SafeWriteFiles: %v", err)
	}
	for p, want := range map[string]string{a: "x", b: "y"} {
		got, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if string(got) != want {
			t.Fatalf("%s = %q, want %q", p, got, want)
		}
		if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
			t.Fatalf("temp file left behind for %s", p)
		}
	}
}

func TestSafeWriteFilesStagingFailureKeepsOld(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "out.csv")
	if err := os.WriteFile(a, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// a regular file where a directory is expected makes staging fail
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("seed blocker: %v", err)
	}
	err := SafeWriteFiles(
		PendingFile{Path: a, Data: []byte("new")},
		PendingFile{Path: filepath.Join(blocker, "plot.png"), Data: []byte("y")},
	)
	if err == nil {
		t.Fatalf("expected staging error")
	}
	got, _ := os.ReadFile(a)
	if string(got) != "old" {
		t.Fatalf("out.csv = %q, want old contents", got)
	}
	if _, err := os.Stat(a + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}
