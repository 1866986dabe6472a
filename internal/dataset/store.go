package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/montanaflynn/stats"

	"github.com/KaramelBytes/linkeddata/internal/pipeline"
	"github.com/KaramelBytes/linkeddata/internal/table"
)

const (
	// NameOriginal is the viewer name of the raw input file.
	NameOriginal = "original"
	// NameProcessed is the viewer name of the processed dataset.
	NameProcessed = "procesado"

	// DefaultExampleLimit caps the rows returned per cluster lookup.
	DefaultExampleLimit = 10
)

// RunFunc executes the preprocessing pipeline.
type RunFunc func(ctx context.Context, opt pipeline.Options) (*pipeline.Result, error)

// Store owns the dataset currently served. The frame is published through an
// atomic pointer and never mutated after publication, so readers need no lock.
type Store struct {
	opt    pipeline.Options
	run    RunFunc
	logger log.Interface

	current atomic.Pointer[table.Frame]
	lastRun atomic.Pointer[RunInfo]
	// reprocessing serializes pipeline runs.
	reprocessing sync.Mutex
}

// RunInfo summarizes the last successful pipeline run of this process.
type RunInfo struct {
	RunID    string        `json:"run_id"`
	Records  int           `json:"total_registros"`
	Inertia  float64       `json:"inertia"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Finished time.Time     `json:"finished_at"`
}

// New returns an empty store that runs pipeline.Run with opt.
func New(opt pipeline.Options) *Store {
	return NewWithRunner(opt, pipeline.Run)
}

// NewWithRunner is New with a custom pipeline runner.
func NewWithRunner(opt pipeline.Options, run RunFunc) *Store {
	return &Store{
		opt:    opt,
		run:    run,
		logger: log.WithField("component", "store"),
	}
}

// Options returns the pipeline options the store was built with.
func (s *Store) Options() pipeline.Options { return s.opt }

// Frame returns the published frame, or nil.
func (s *Store) Frame() *table.Frame { return s.current.Load() }

// Loaded reports whether a dataset is being served.
func (s *Store) Loaded() bool { return s.current.Load() != nil }

// LastRun returns the last successful run, or nil.
func (s *Store) LastRun() *RunInfo { return s.lastRun.Load() }

// Open loads the processed dataset from disk, running the pipeline when the
// file does not exist yet. On failure the store stays empty and the error is
// returned for the caller to report; the store remains usable.
func (s *Store) Open(ctx context.Context) error {
	f, err := table.ReadCSV(s.opt.OutputPath, table.Options{Delimiter: s.opt.Delimiter})
	if err == nil {
		s.current.Store(f)
		s.logger.WithFields(log.Fields{"path": s.opt.OutputPath, "rows": f.Rows()}).Info("loaded processed dataset")
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		s.logger.WithError(err).Error("cannot load processed dataset")
		return fmt.Errorf("load processed dataset: %w", err)
	}
	s.logger.Info("processing data for the first time")
	if _, err := s.Reprocess(ctx); err != nil {
		s.logger.WithError(err).Error("processing failed, serving without data")
		return err
	}
	return nil
}

// Reprocess runs the pipeline and publishes the new frame on success. On
// failure the previously published frame stays in place. The on-disk
// artifacts are only replaced when the pipeline completes.
func (s *Store) Reprocess(ctx context.Context) (*pipeline.Result, error) {
	s.reprocessing.Lock()
	defer s.reprocessing.Unlock()

	res, err := s.run(ctx, s.opt)
	if err != nil {
		return nil, err
	}
	s.current.Store(res.Frame)
	s.lastRun.Store(&RunInfo{
		RunID:    res.RunID,
		Records:  res.Frame.Rows(),
		Inertia:  res.Inertia,
		Elapsed:  res.Elapsed,
		Finished: time.Now(),
	})
	return res, nil
}

// Summary describes the served dataset.
type Summary struct {
	Records  int      `json:"total_registros"`
	Columns  []string `json:"columnas"`
	Clusters int      `json:"clusters_detectados"`
}

// Summary returns the record count, column names and distinct cluster count.
func (s *Store) Summary() (Summary, error) {
	f := s.current.Load()
	if f == nil {
		return Summary{}, ErrNoDataset
	}
	ids, err := clusterIDs(f)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Records: f.Rows(), Columns: f.Names(), Clusters: len(ids)}, nil
}

// ClusterExamples returns up to limit records, in original order, whose
// cluster equals id. limit <= 0 means DefaultExampleLimit.
func (s *Store) ClusterExamples(id, limit int) ([]map[string]any, error) {
	f := s.current.Load()
	if f == nil {
		return nil, ErrNoDataset
	}
	ids, err := clusterIDs(f)
	if err != nil {
		return nil, err
	}
	if _, ok := ids[id]; !ok {
		return nil, &ClusterNotFoundError{ID: id}
	}
	if limit <= 0 {
		limit = DefaultExampleLimit
	}
	col, _ := f.Column(pipeline.ClusterColumn)
	out := make([]map[string]any, 0, limit)
	for i, c := range col.Cells {
		if len(out) == limit {
			break
		}
		if c.Valid && c.Num == float64(id) {
			out = append(out, f.Record(i))
		}
	}
	return out, nil
}

// DecodedClusterExamples is ClusterExamples with every label-encoded column
// mapped back to its original values through the label side file.
func (s *Store) DecodedClusterExamples(id, limit int) ([]map[string]any, error) {
	recs, err := s.ClusterExamples(id, limit)
	if err != nil {
		return nil, err
	}
	if s.opt.LabelsPath == "" {
		return nil, fmt.Errorf("label map disabled: %w", fs.ErrNotExist)
	}
	labels, err := pipeline.ReadLabelFile(s.opt.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("decode examples: %w", err)
	}
	for _, rec := range recs {
		for col := range labels {
			code, ok := rec[col].(float64)
			if !ok {
				continue
			}
			if v, ok := labels.Decode(col, int(code)); ok {
				rec[col] = v
			}
		}
	}
	return recs, nil
}

// View reads one of the whitelisted datasets from disk. Only NameOriginal and
// NameProcessed are accepted; names are never treated as paths.
func (s *Store) View(name string) (*table.Frame, error) {
	var path string
	switch name {
	case NameOriginal:
		path = s.opt.InputPath
	case NameProcessed:
		path = s.opt.OutputPath
	default:
		return nil, &UnknownDatasetError{Name: name}
	}
	f, err := table.ReadCSV(path, table.Options{Delimiter: s.opt.Delimiter})
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", name, err)
	}
	return f, nil
}

// ClusterStat aggregates the numeric columns of one cluster.
type ClusterStat struct {
	Cluster int                `json:"cluster"`
	Size    int                `json:"size"`
	Mean    map[string]float64 `json:"mean"`
	Median  map[string]float64 `json:"median"`
}

// ClusterStats returns per-cluster size, mean and median of every numeric
// column, ordered by cluster id.
func (s *Store) ClusterStats() ([]ClusterStat, error) {
	f := s.current.Load()
	if f == nil {
		return nil, ErrNoDataset
	}
	ids, err := clusterIDs(f)
	if err != nil {
		return nil, err
	}
	col, _ := f.Column(pipeline.ClusterColumn)
	rows := map[int][]int{}
	for i, c := range col.Cells {
		if c.Valid {
			rows[int(c.Num)] = append(rows[int(c.Num)], i)
		}
	}

	out := make([]ClusterStat, 0, len(ids))
	for id := range ids {
		st := ClusterStat{Cluster: id, Size: len(rows[id]), Mean: map[string]float64{}, Median: map[string]float64{}}
		for _, c := range f.NumericColumns() {
			if c.Name == pipeline.ClusterColumn {
				continue
			}
			var data stats.Float64Data
			for _, i := range rows[id] {
				if c.Cells[i].Valid {
					data = append(data, c.Cells[i].Num)
				}
			}
			if data.Len() == 0 {
				continue
			}
			mean, err := data.Mean()
			if err != nil {
				return nil, fmt.Errorf("mean of %s: %w", c.Name, err)
			}
			median, err := data.Median()
			if err != nil {
				return nil, fmt.Errorf("median of %s: %w", c.Name, err)
			}
			st.Mean[c.Name] = mean
			st.Median[c.Name] = median
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cluster < out[j].Cluster })
	return out, nil
}

func clusterIDs(f *table.Frame) (map[int]struct{}, error) {
	col, ok := f.Column(pipeline.ClusterColumn)
	if !ok {
		return nil, &MissingColumnError{Column: pipeline.ClusterColumn}
	}
	ids := map[int]struct{}{}
	if col.Kind != table.KindNumeric {
		return ids, nil
	}
	for _, c := range col.Cells {
		if c.Valid && c.Num == float64(int(c.Num)) {
			ids[int(c.Num)] = struct{}{}
		}
	}
	return ids, nil
}
