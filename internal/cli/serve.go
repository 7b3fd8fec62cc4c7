package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tierviz/pkg/api"
	"github.com/matzehuels/tierviz/pkg/cache"
	"github.com/matzehuels/tierviz/pkg/observability"
)

// apiKeyScope separates the server's cache entries from the CLI's when
// both share a backend.
const apiKeyScope = "api:"

// serveCommand creates the serve command that runs the HTTP layout API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr           string
		requestTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve the layout API.

Routes:
  GET    /healthz
  GET    /v1/stats
  GET    /v1/scenarios
  POST   /v1/scenarios/{scenario}/layouts
  POST   /v1/layouts
  GET    /v1/layouts
  GET    /v1/layouts/{id}
  DELETE /v1/layouts/{id}

Stored layouts go to the store configured under [store]; the listen
address defaults to [server] addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, requestTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().DurationVar(&requestTimeout, "request-timeout", 60*time.Second, "per-request time limit, 0 to disable")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, requestTimeout time.Duration) error {
	if addr == "" {
		addr = c.cfg.Server.Addr
	}

	runner, client, err := c.newRunner(ctx, false, cache.NewScopedKeyer(nil, apiKeyScope))
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	counters := observability.NewCounters()
	observability.SetPipelineHooks(counters)
	observability.SetCacheHooks(counters)
	observability.SetHTTPHooks(counters)
	defer observability.Reset()

	srv := api.New(runner, st, client, counters, c.Logger)
	srv.RequestTimeout = requestTimeout

	c.Logger.Info("starting api",
		"addr", addr,
		"cache", c.cfg.Cache.Backend,
		"store", c.cfg.Store.Backend,
		"upstream", client.BaseURL())
	return srv.ListenAndServe(ctx, addr, c.cfg.Server.ReadTimeout.Duration, c.cfg.Server.WriteTimeout.Duration)
}
