package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spotfinder/internal/server"
	"github.com/matzehuels/spotfinder/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the placement HTTP API",
		Long: `Run the placement HTTP API.

POST a JSON body with "scene" and "footprint" to /v1/placements. Options
omitted from the request fall back to the config file. Prometheus metrics are
exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			var metrics *observability.Metrics
			if !noMetrics {
				metrics = observability.NewMetrics(prometheus.NewRegistry())
				observability.SetPipelineHooks(metrics)
				observability.SetCacheHooks(metrics)
				observability.SetHTTPHooks(metrics)
				defer observability.Reset()
			}

			srv := server.New(runner, metrics, cfg, c.Logger)
			return server.ListenAndServe(ctx, srv.HTTPServer(), c.Logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable Prometheus metrics")

	return cmd
}
