package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/linkeddata/internal/dataset"
	"github.com/KaramelBytes/linkeddata/internal/server"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the processed dataset over HTTP",
	Long: `Loads the processed dataset (running the pipeline if it does not exist yet)
and serves the summary, cluster lookup, reprocess and CSV viewer endpoints.
The server starts even when no data could be produced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			c.Port = servePort
		}
		if cmd.Flags().Changed("host") {
			c.ListenHost = serveHost
		}
		if err := c.Validate(); err != nil {
			return err
		}
		opt, err := pipelineOptions(c)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store := dataset.New(opt)
		if err := store.Open(ctx); err != nil {
			log.WithError(err).Warn("starting without data")
		}
		return server.New(c.Addr(), store, c.ExampleLimit).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config and PORT)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides config)")
}
