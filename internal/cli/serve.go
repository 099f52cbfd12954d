package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/containerd/log"
	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/api"
	"github.com/roach88/sieve/internal/store"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve entries over HTTP",
		Long: `Serve GET /scopes/{scope}/entries with where, search, orderby,
orderdesc, offset and limit query parameters, plus /healthz and
/metrics. Stops gracefully on SIGINT or SIGTERM.

Examples:
  sieve serve --addr :8080
  SIEVE_QUERY_DEFAULT_ORDER=Severity sieve serve`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts)
		},
	}

	cmd.Flags().String("addr", "", "listen address (env SIEVE_HTTP_ADDR)")

	return cmd
}

func runServe(ctx context.Context, opts *RootOptions) error {
	eng, err := newEngine(opts.Config.Query.DefaultOrder)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.Config.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx = log.WithLogger(ctx, log.G(ctx).WithField("database", opts.Config.Database))

	srv := api.New(st, eng)
	if err := srv.ListenAndServe(ctx, opts.Config.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return WrapExitError(ExitCommandError, "server failed", err)
	}
	return nil
}
