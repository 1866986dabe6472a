package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/KaramelBytes/linkeddata/internal/cluster"
	"github.com/KaramelBytes/linkeddata/internal/dataprep"
	"github.com/KaramelBytes/linkeddata/internal/plot"
	"github.com/KaramelBytes/linkeddata/internal/table"
	"github.com/KaramelBytes/linkeddata/internal/utils"
)

// ClusterColumn is the name of the column holding cluster assignments.
const ClusterColumn = "cluster"

// Options configures one pipeline run.
type Options struct {
	InputPath  string
	OutputPath string
	PlotPath   string
	// LabelsPath is the label-map side file; empty disables it.
	LabelsPath string
	Delimiter  rune

	Clusters int
	Seed     int64
	MaxIter  int
	NInit    int

	LeadingMissing dataprep.LeadingPolicy
	// ReuseLabels seeds the encoder with the codes of the previous run.
	ReuseLabels bool

	PlotTitle string
}

// DefaultOptions returns the conventional file locations and k=3, seed 42.
func DefaultOptions() Options {
	return Options{
		InputPath:      "ISOFV163_A8_Anexo.csv",
		OutputPath:     "dataset_procesado.csv",
		PlotPath:       "static/clusters.png",
		LabelsPath:     "dataset_procesado.labels.yaml",
		Clusters:       3,
		Seed:           42,
		MaxIter:        300,
		NInit:          10,
		LeadingMissing: dataprep.LeadingZero,
		PlotTitle:      plot.DefaultOptions().Title,
	}
}

// Result describes a completed run.
type Result struct {
	RunID      string
	Frame      *table.Frame
	Labels     dataprep.LabelMap
	Inertia    float64
	Iterations int
	Elapsed    time.Duration
	OutputPath string
	PlotPath   string
	LabelsPath string
}

// MissingInputError indicates the raw input file does not exist.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

func (e *MissingInputError) Unwrap() error { return e.Err }

// Run executes load, clean, encode, cluster, persist and visualize in
// order. Every artifact is rendered in memory before any file is written, so
// a failing step leaves previous outputs in place.
func Run(ctx context.Context, opt Options) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := log.WithFields(log.Fields{"component": "pipeline", "run_id": runID})

	if _, err := os.Stat(opt.InputPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingInputError{Path: opt.InputPath, Err: err}
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}
	tableOpt := table.Options{Delimiter: opt.Delimiter}
	raw, err := table.ReadCSV(opt.InputPath, tableOpt)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	missing := 0
	for _, c := range raw.Columns {
		missing += c.Missing()
	}
	logger.WithFields(log.Fields{"rows": raw.Rows(), "columns": len(raw.Columns), "missing": missing}).Debug("loaded input")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cleaned, err := dataprep.FillForward(raw, opt.LeadingMissing)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}

	var prior dataprep.LabelMap
	if opt.ReuseLabels && opt.LabelsPath != "" {
		prior, err = ReadLabelFile(opt.LabelsPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read previous labels: %w", err)
		}
	}
	encoded, labels := dataprep.LabelEncode(cleaned, prior)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	features := featureMatrix(encoded)
	km := cluster.New(opt.Clusters)
	km.Seed = opt.Seed
	if opt.MaxIter > 0 {
		km.MaxIter = opt.MaxIter
	}
	if opt.NInit > 0 {
		km.NInit = opt.NInit
	}
	assignments, err := km.FitPredict(features)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}
	col := &table.Column{Name: ClusterColumn, Kind: table.KindNumeric, Cells: make([]table.Cell, len(assignments))}
	for i, a := range assignments {
		col.Cells[i] = table.NumCell(float64(a))
	}
	encoded.SetColumn(col)
	logger.WithFields(log.Fields{"k": km.K, "inertia": km.Inertia, "iterations": km.Iterations}).Debug("clustered")

	var csvBuf bytes.Buffer
	if err := table.Write(&csvBuf, encoded, tableOpt); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	plotOpt := plot.DefaultOptions()
	if opt.PlotTitle != "" {
		plotOpt.Title = opt.PlotTitle
	}
	img, err := plot.Scatter(encoded, ClusterColumn, plotOpt)
	if err != nil {
		return nil, fmt.Errorf("visualize: %w", err)
	}
	files := []utils.PendingFile{
		{Path: opt.OutputPath, Data: csvBuf.Bytes()},
		{Path: opt.PlotPath, Data: img},
	}
	if opt.LabelsPath != "" {
		b, err := EncodeLabelFile(runID, labels)
		if err != nil {
			return nil, fmt.Errorf("labels: %w", err)
		}
		files = append(files, utils.PendingFile{Path: opt.LabelsPath, Data: b})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := utils.SafeWriteFiles(files...); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}

	res := &Result{
		RunID:      runID,
		Frame:      encoded,
		Labels:     labels,
		Inertia:    km.Inertia,
		Iterations: km.Iterations,
		Elapsed:    time.Since(start),
		OutputPath: opt.OutputPath,
		PlotPath:   opt.PlotPath,
		LabelsPath: opt.LabelsPath,
	}
	logger.WithFields(log.Fields{"rows": encoded.Rows(), "output": opt.OutputPath, "elapsed": res.Elapsed}).Info("dataset processed")
	return res, nil
}

// featureMatrix builds one row per record from every numeric column except
// a pre-existing cluster column.
func featureMatrix(f *table.Frame) [][]float64 {
	var cols []*table.Column
	for _, c := range f.NumericColumns() {
		if c.Name != ClusterColumn {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return nil
	}
	X := make([][]float64, f.Rows())
	for i := range X {
		row := make([]float64, len(cols))
		for j, c := range cols {
			row[j] = c.Cells[i].Num
		}
		X[i] = row
	}
	return X
}
