package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/dbnplot/internal/metrics"
	"github.com/matzehuels/dbnplot/internal/server"
	"github.com/matzehuels/dbnplot/pkg/observability"
)

// serveCommand creates the serve command, which runs the HTTP API until
// the process is interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP rendering API",
		Long: `Run the HTTP rendering API.

  POST /v1/render?format=svg&model=toml   model file in, artifact out
  POST /v1/expand                         model file in, diagram JSON out
  GET  /healthz                           liveness and build information
  GET  /metrics                           Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Serve.Addr
			}

			defaults, err := c.baseOptions()
			if err != nil {
				return err
			}

			runner := c.newRunner(noCache)
			defer runner.Close()

			opts := server.Options{
				Runner:        runner,
				Defaults:      defaults,
				Logger:        c.Logger,
				MaxBodyBytes:  c.Config.Serve.MaxBodyBytes,
				RenderTimeout: c.Config.Serve.RenderTimeout,
			}
			if !noMetrics {
				m := metrics.New()
				m.Install()
				defer observability.Reset()
				opts.Metrics = m.Handler()
			}

			return server.New(opts).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	return cmd
}
