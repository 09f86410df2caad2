package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spangrid/internal/api"
	"github.com/matzehuels/spangrid/pkg/state"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		noState bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

Saved states go to Redis when --redis or SPANGRID_REDIS_ADDR is set and to
the local state directory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Cache.Close()

			var store state.Store
			if !noState {
				if store, err = c.newStore(ctx); err != nil {
					return fmt.Errorf("open state store: %w", err)
				}
				defer store.Close()
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewServer(runner, store, logger).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serve(ctx, srv, func() { printSuccess("Listening on %s", addr) })
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable layout caching")
	cmd.Flags().BoolVar(&noState, "no-state", false, "disable the /v1/states routes")

	return cmd
}

// serve runs srv until ctx ends, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, started func()) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	started()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
