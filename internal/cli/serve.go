package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshskel/internal/server"
	"github.com/matzehuels/meshskel/pkg/observability"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		maxForests int
		forestTTL  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the skeleton API over HTTP",
		Long: `Serve the skeleton API over HTTP.

POST a skeleton record to /v1/forests to split and root it, then fetch the
summary or per-component SWC, DOT and SVG files. Forests are kept in memory
and evicted when the store is full or their TTL has passed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			ttl, err := parseTTL(forestTTL)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, true)
			if err != nil {
				return err
			}
			defer runner.Close()

			observability.SetHTTPHooks(observability.NewLogHooks(c.Logger))
			srv := server.New(server.Config{
				Runner:     runner,
				Logger:     c.Logger,
				MaxForests: maxForests,
				ForestTTL:  ttl,
			})
			printInfo("Serving on %s", addr)
			err = srv.ListenAndServe(ctx, addr)
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				printSuccess("Server stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address (env "+envAddr+")")
	cmd.Flags().IntVar(&maxForests, "max-forests", server.DefaultMaxForests, "forests kept in memory")
	cmd.Flags().StringVar(&forestTTL, "forest-ttl", server.DefaultForestTTL.String(), "how long an uploaded forest is kept")
	return cmd
}

func parseTTL(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
