package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/linkeddata/internal/dataset"
	"github.com/KaramelBytes/linkeddata/internal/utils"
)

var (
	sumStats   bool
	sumCluster int
	sumDecode  bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print a summary of the processed dataset",
	Long: `Prints the record count, columns and number of clusters of the processed
dataset as JSON. The pipeline runs first if the processed file does not exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		opt, err := pipelineOptions(c)
		if err != nil {
			return err
		}
		store := dataset.New(opt)
		if err := store.Open(cmd.Context()); err != nil {
			return err
		}

		var v any
		switch {
		case cmd.Flags().Changed("cluster") && sumDecode:
			v, err = store.DecodedClusterExamples(sumCluster, c.ExampleLimit)
		case cmd.Flags().Changed("cluster"):
			v, err = store.ClusterExamples(sumCluster, c.ExampleLimit)
		case sumStats:
			v, err = store.ClusterStats()
		default:
			v, err = store.Summary()
		}
		if err != nil {
			return err
		}
		b, err := utils.PrettyJSON(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().BoolVar(&sumStats, "stats", false, "print per-cluster mean and median instead")
	summaryCmd.Flags().IntVar(&sumCluster, "cluster", 0, "print example records of one cluster instead")
	summaryCmd.Flags().BoolVar(&sumDecode, "decode", false, "with --cluster, show original category values instead of codes")
}
