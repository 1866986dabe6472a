package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/linkeddata/internal/config"
	"github.com/KaramelBytes/linkeddata/internal/dataprep"
	"github.com/KaramelBytes/linkeddata/internal/pipeline"
)

// pipelineOptions converts the loaded configuration into pipeline options.
func pipelineOptions(c *cfgpkg.Global) (pipeline.Options, error) {
	delim, err := cfgpkg.ParseDelimiter(c.Delimiter)
	if err != nil {
		return pipeline.Options{}, err
	}
	policy, err := dataprep.ParseLeadingPolicy(c.LeadingMissing)
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("leading_missing: %w", err)
	}
	opt := pipeline.DefaultOptions()
	opt.InputPath = c.InputPath
	opt.OutputPath = c.OutputPath
	opt.PlotPath = c.PlotPath
	opt.LabelsPath = c.LabelsPath
	opt.Delimiter = delim
	opt.Clusters = c.Clusters
	opt.Seed = c.Seed
	opt.MaxIter = c.MaxIter
	opt.NInit = c.NInit
	opt.LeadingMissing = policy
	opt.ReuseLabels = c.ReuseLabels
	if c.PlotTitle != "" {
		opt.PlotTitle = c.PlotTitle
	}
	return opt, nil
}
