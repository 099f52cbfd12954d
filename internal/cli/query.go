package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/containerd/log"
	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/catalog"
	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/queryir"
	"github.com/roach88/sieve/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Query engine.Options
	Scope string
}

// QueryResult is the JSON payload of the query command.
type QueryResult struct {
	Entries []store.Entry `json:"entries"`
	Total   int64         `json:"total"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query stored entries",
		Long: `Compile the where, search and order-by clauses and run them against
the entries database.

Exit codes:
  0 - Query ran
  1 - A clause was rejected
  2 - Command error (database not reachable, etc.)

Examples:
  sieve query --where "Severity>=3,Scope=web" --orderby Timestamp --desc
  sieve query --scope prod --search "Description~timeout" --limit 10
  sieve query --where "Name=alice" --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, cmd)
		},
	}

	addQueryFlags(cmd, &opts.Query)
	cmd.Flags().StringVar(&opts.Scope, "scope", "", "only entries in this scope")

	return cmd
}

// addQueryFlags registers the clause and window flags shared by query and explain.
func addQueryFlags(cmd *cobra.Command, q *engine.Options) {
	f := cmd.Flags()
	f.StringVar(&q.Where, "where", "", "filter clause, e.g. \"Severity>=3,Name=alice\"")
	f.StringVar(&q.Search, "search", "", "search clause, e.g. \"Description~timeout\"")
	f.StringVar(&q.OrderBy, "orderby", "", "sort clause, e.g. \"Timestamp\" or \"Severity,Name\"")
	f.BoolVar(&q.OrderDesc, "desc", false, "sort descending")
	f.IntVar(&q.Offset, "offset", 0, "records to skip")
	f.IntVar(&q.Limit, "limit", engine.MaxLimit, "records to return (at most 200)")
}

// newEngine builds the entry engine with the configured default order.
func newEngine(defaultOrder string) (*engine.Engine[store.Entry], error) {
	eng, err := engine.New[store.Entry](catalog.New(), engine.Config{DefaultOrder: defaultOrder})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid default order", err)
	}
	return eng, nil
}

// plan compiles the query options into a select over the entries table.
// A rejected clause is reported through out and returned as ExitFailure.
func plan(out *OutputFormatter, eng *engine.Engine[store.Entry], q engine.Options, scope string) (queryir.Select, error) {
	sel, err := eng.Plan(store.Table, q)
	if err != nil {
		if qe, ok := ir.AsQueryError(err); ok {
			return queryir.Select{}, out.QueryError(qe)
		}
		return queryir.Select{}, WrapExitError(ExitCommandError, "failed to compile query", err)
	}
	if scope != "" {
		sel = engine.Scoped(sel, "scope", scope)
	}
	return sel, nil
}

func runQuery(ctx context.Context, opts *QueryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	eng, err := newEngine(opts.Config.Query.DefaultOrder)
	if err != nil {
		return err
	}
	sel, err := plan(out, eng, opts.Query, opts.Scope)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.Config.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	entries, err := st.List(ctx, sel)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list entries", err)
	}
	total, err := st.Count(ctx, sel)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count entries", err)
	}

	log.G(ctx).WithFields(log.Fields{
		"database": opts.Config.Database,
		"returned": len(entries),
		"total":    total,
	}).Debug("query complete")

	if opts.Format == "json" {
		return out.Success(QueryResult{Entries: entries, Total: total})
	}
	return writeEntries(cmd, entries, total)
}

// writeEntries prints entries as an aligned table.
func writeEntries(cmd *cobra.Command, entries []store.Entry, total int64) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCOPE\tNAME\tSEVERITY\tELAPSED\tTIMESTAMP\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			e.ID, e.Scope, e.Name, e.Severity, e.Elapsed,
			e.Timestamp.UTC().Format(time.RFC3339), e.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %s entries\n", len(entries), strconv.FormatInt(total, 10))
	return nil
}
