package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/linkeddata/internal/config"
	"github.com/KaramelBytes/linkeddata/internal/dataprep"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set linkeddata configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "input_path: %s\n", cfg.InputPath)
		fmt.Fprintf(out, "output_path: %s\n", cfg.OutputPath)
		fmt.Fprintf(out, "plot_path: %s\n", cfg.PlotPath)
		if cfg.LabelsPath != "" {
			fmt.Fprintf(out, "labels_path: %s\n", cfg.LabelsPath)
		}
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Fprintf(out, "clusters: %d\n", cfg.Clusters)
		fmt.Fprintf(out, "seed: %d\n", cfg.Seed)
		fmt.Fprintf(out, "max_iter: %d\n", cfg.MaxIter)
		fmt.Fprintf(out, "n_init: %d\n", cfg.NInit)
		fmt.Fprintf(out, "leading_missing: %s\n", cfg.LeadingMissing)
		fmt.Fprintf(out, "reuse_labels: %t\n", cfg.ReuseLabels)
		fmt.Fprintf(out, "plot_title: %s\n", cfg.PlotTitle)
		fmt.Fprintf(out, "listen_host: %s\n", cfg.ListenHost)
		fmt.Fprintf(out, "port: %d\n", cfg.Port)
		fmt.Fprintf(out, "example_limit: %d\n", cfg.ExampleLimit)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		switch key {
		case "input_path":
			c.InputPath = val
		case "output_path":
			c.OutputPath = val
		case "plot_path":
			c.PlotPath = val
		case "labels_path":
			c.LabelsPath = val
		case "delimiter":
			if _, err := cfgpkg.ParseDelimiter(val); err != nil {
				return err
			}
			c.Delimiter = val
		case "clusters":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for clusters: %v", val)
			}
			c.Clusters = i
		case "seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			c.Seed = i
		case "max_iter":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for max_iter: %v", val)
			}
			c.MaxIter = i
		case "n_init":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for n_init: %v", val)
			}
			c.NInit = i
		case "leading_missing":
			if _, err := dataprep.ParseLeadingPolicy(val); err != nil {
				return err
			}
			c.LeadingMissing = val
		case "reuse_labels":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for reuse_labels: %w", err)
			}
			c.ReuseLabels = b
		case "plot_title":
			c.PlotTitle = val
		case "listen_host":
			c.ListenHost = val
		case "port":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 || i > 65535 {
				return fmt.Errorf("invalid port: %v", val)
			}
			c.Port = i
		case "example_limit":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for example_limit: %v", val)
			}
			c.ExampleLimit = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
