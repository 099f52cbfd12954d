package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/querysql"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Query engine.Options
	Scope string
}

// ExplainResult is the JSON payload of the explain command.
type ExplainResult struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Print the SQL a query compiles to",
		Long: `Compile the clauses and print the parameterized SQL statement and its
parameters without touching the database.

Examples:
  sieve explain --where "Severity>=3" --orderby Name
  sieve explain --search "Description~disk" --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, cmd)
		},
	}

	addQueryFlags(cmd, &opts.Query)
	cmd.Flags().StringVar(&opts.Scope, "scope", "", "only entries in this scope")

	return cmd
}

func runExplain(opts *ExplainOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	eng, err := newEngine(opts.Config.Query.DefaultOrder)
	if err != nil {
		return err
	}
	sel, err := plan(out, eng, opts.Query, opts.Scope)
	if err != nil {
		return err
	}

	sqlText, params, err := querysql.NewSQLCompiler().Compile(sel)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render SQL", err)
	}

	if opts.Format == "json" {
		return out.Success(ExplainResult{SQL: sqlText, Params: params})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, sqlText)
	for i, p := range params {
		fmt.Fprintf(w, "  $%d = %v\n", i+1, p)
	}
	return nil
}
