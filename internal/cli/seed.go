package cli

import (
	"context"
	"fmt"

	"github.com/containerd/log"
	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/harness"
	"github.com/roach88/sieve/internal/store"
)

// SeedResult is the JSON payload of the seed command.
type SeedResult struct {
	Database string  `json:"database"`
	IDs      []int64 `json:"ids"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load entries from a YAML fixture",
		Long: `Insert the records of a fixture or scenario file into the entries
database. Records without a timestamp get deterministic ones; records
without an id get the next rowid.

Examples:
  sieve seed ./fixtures/entries.yaml
  sieve seed ./scenarios/basic.yaml --db /tmp/sieve.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSeed(ctx context.Context, opts *RootOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := harness.LoadRecords(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load fixture", err)
	}

	st, err := store.Open(opts.Config.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ids, err := st.Insert(ctx, records...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to insert entries", err)
	}

	log.G(ctx).WithFields(log.Fields{
		"fixture":  path,
		"database": opts.Config.Database,
		"count":    len(ids),
	}).Debug("fixture loaded")

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(SeedResult{Database: opts.Config.Database, IDs: ids})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Inserted %d entries into %s\n", len(ids), opts.Config.Database)
	return nil
}
