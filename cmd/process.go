package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/linkeddata/internal/pipeline"
)

var (
	procInput    string
	procOutput   string
	procPlot     string
	procClusters int
	procSeed     int64
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the preprocessing and clustering pipeline once",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opt, err := pipelineOptions(c)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		if f.Changed("input") {
			opt.InputPath = procInput
		}
		if f.Changed("output") {
			opt.OutputPath = procOutput
		}
		if f.Changed("plot") {
			opt.PlotPath = procPlot
		}
		if f.Changed("clusters") {
			if procClusters < 1 {
				return fmt.Errorf("invalid --clusters: %d (must be >= 1)", procClusters)
			}
			opt.Clusters = procClusters
		}
		if f.Changed("seed") {
			opt.Seed = procSeed
		}

		res, err := pipeline.Run(cmd.Context(), opt)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Processed %d records (run %s)\n", res.Frame.Rows(), res.RunID)
		fmt.Fprintf(out, "✓ Dataset: %s\n", res.OutputPath)
		fmt.Fprintf(out, "✓ Plot: %s\n", res.PlotPath)
		if res.LabelsPath != "" {
			fmt.Fprintf(out, "✓ Labels: %s\n", res.LabelsPath)
		}
		fmt.Fprintf(out, "  k=%d inertia=%.4f iterations=%d elapsed=%s\n",
			opt.Clusters, res.Inertia, res.Iterations, res.Elapsed.Round(time.Millisecond))
		if debug {
			cols := make([]string, 0, len(res.Labels))
			for name := range res.Labels {
				cols = append(cols, name)
			}
			sort.Strings(cols)
			for _, name := range cols {
				fmt.Fprintf(out, "  %s: %d labels\n", name, len(res.Labels[name]))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVar(&procInput, "input", "", "raw CSV input (overrides config)")
	processCmd.Flags().StringVar(&procOutput, "output", "", "processed CSV output (overrides config)")
	processCmd.Flags().StringVar(&procPlot, "plot", "", "scatter plot PNG output (overrides config)")
	processCmd.Flags().IntVar(&procClusters, "clusters", 0, "number of clusters (overrides config)")
	processCmd.Flags().Int64Var(&procSeed, "seed", 0, "random seed (overrides config)")
}
