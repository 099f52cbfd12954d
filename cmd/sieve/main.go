// Command sieve compiles textual query clauses over log entries and runs
// them in memory, against SQLite or behind an HTTP endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sieve/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
