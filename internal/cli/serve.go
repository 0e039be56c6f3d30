package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/topoview/topoview/internal/simulator"
)

// serveCommand creates the demo router API command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		seed int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a simulated router API for demos",
		Long: `Serve starts an HTTP server that mimics a router administration API,
with a fixed device fleet whose traffic drifts between polls. Point the
dashboard at it with source.base_url.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sim := simulator.New(seed, c.Logger)
			srv := &http.Server{
				Addr:              addr,
				Handler:           sim.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			printInfo("Simulated router API listening on %s", addr)
			printDetail("source.base_url = \"http://localhost%s\"", addr)

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8787", "listen address")
	cmd.Flags().Int64Var(&seed, "seed", 42, "simulation seed")

	return cmd
}
