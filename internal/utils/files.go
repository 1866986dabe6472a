package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir ensures the directory holding path exists.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// SafeWriteFile writes data to a temp file and atomically renames it into place.
func SafeWriteFile(path string, data []byte) error {
	return SafeWriteFiles(PendingFile{Path: path, Data: data})
}

// PendingFile is one artifact of a multi-file publish.
type PendingFile struct {
	Path string
	Data []byte
}

// SafeWriteFiles stages every file as <path>.tmp and renames them into place
// only once all of them were written. A staging failure leaves the existing
// files untouched. A rename failure is returned after the remaining temp
// files are removed; renames already done are not rolled back.
func SafeWriteFiles(files ...PendingFile) error {
	staged := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}
	for _, f := range files {
		if err := EnsureParentDir(f.Path); err != nil {
			cleanup()
			return fmt.Errorf("ensure dir for %s: %w", f.Path, err)
		}
		tmp := f.Path + ".tmp"
		if err := os.WriteFile(tmp, f.Data, 0o644); err != nil {
			_ = os.Remove(tmp)
			cleanup()
			return fmt.Errorf("write temp file: %w", err)
		}
		staged = append(staged, tmp)
	}
	var errs []error
	for i, f := range files {
		if err := os.Rename(staged[i], f.Path); err != nil {
			_ = os.Remove(staged[i])
			errs = append(errs, fmt.Errorf("atomic rename %s: %w", f.Path, err))
		}
	}
	return errors.Join(errs...)
}

// PrettyJSON marshals a value as indented JSON.
func PrettyJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}
