package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/linkeddata/internal/dataprep"
)

// labelFile is the on-disk form of the label map written next to the
// processed dataset.
type labelFile struct {
	RunID       string            `yaml:"run_id"`
	GeneratedAt time.Time         `yaml:"generated_at"`
	Columns     dataprep.LabelMap `yaml:"columns"`
}

// EncodeLabelFile marshals the label map of a run as YAML.
func EncodeLabelFile(runID string, labels dataprep.LabelMap) ([]byte, error) {
	b, err := yaml.Marshal(labelFile{RunID: runID, GeneratedAt: time.Now().UTC(), Columns: labels})
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

// ReadLabelFile loads the label map of a previous run.
func ReadLabelFile(path string) (dataprep.LabelMap, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	var lf labelFile
	if err := yaml.Unmarshal(b, &lf); err != nil {
		return nil, fmt.Errorf("parse labels: %w", err)
	}
	if lf.Columns == nil {
		lf.Columns = dataprep.LabelMap{}
	}
	return lf.Columns, nil
}
