package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PORT", "")
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Clusters != 3 || c.Seed != 42 {
		t.Fatalf("clusters=%d seed=%d", c.Clusters, c.Seed)
	}
	if c.InputPath != "ISOFV163_A8_Anexo.csv" || c.OutputPath != "dataset_procesado.csv" {
		t.Fatalf("paths = %q %q", c.InputPath, c.OutputPath)
	}
	if c.Addr() != "0.0.0.0:5000" {
		t.Fatalf("addr = %s", c.Addr())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PORT", "8080")
	t.Setenv("LINKEDDATA_CLUSTERS", "5")
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != 8080 {
		t.Fatalf("port = %d, want 8080 from PORT", c.Port)
	}
	if c.Clusters != 5 {
		t.Fatalf("clusters = %d, want 5", c.Clusters)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.InputPath = "data/raw.csv"
	c.ReuseLabels = true
	if err := Save(c, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if back.InputPath != "data/raw.csv" || !back.ReuseLabels {
		t.Fatalf("reloaded = %+v", back)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("LINKEDDATA_CLUSTERS", "0")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error for clusters=0")
	}
}

func TestParseDelimiter(t *testing.T) {
	cases := map[string]rune{"": 0, ",": ',', ";": ';', "tab": '\t', "|": '|'}
	for in, want := range cases {
		got, err := ParseDelimiter(in)
		if err != nil || got != want {
			t.Fatalf("ParseDelimiter(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDelimiter("::"); err == nil {
		t.Fatalf("expected error")
	}
}
