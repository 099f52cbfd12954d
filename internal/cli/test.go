package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario name glob
}

// Golden file states reported per scenario.
const (
	goldenNone     = ""
	goldenMatch    = "match"
	goldenMismatch = "mismatch"
	goldenUpdated  = "updated"
)

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string               `json:"name"`
	File   string               `json:"file"`
	Pass   bool                 `json:"pass"`
	Golden string               `json:"golden,omitempty"`
	Cases  []harness.CaseResult `json:"cases,omitempty"`
	Errors []string             `json:"errors,omitempty"`
}

func (r *ScenarioResult) fail(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// TestResult is the outcome of a test run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run query scenarios",
		Long: `Run query scenarios through the harness.

Each scenario seeds a scratch database, runs every case both in memory
and through SQLite, and checks that the two agree with each other and
with the expected ids or error code. Results are compared against
golden/<name>.golden next to the scenario when that file exists.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  sieve test ./scenarios
  sieve test ./scenarios --filter "default-*"
  sieve test ./scenarios --update
  sieve test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runTests(ctx, opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only scenario files whose name matches this glob")

	return cmd
}

func runTests(ctx context.Context, opts *TestOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	files, err := scenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(files))}
	for _, file := range files {
		res := runScenario(ctx, file, opts.Update)
		result.Scenarios = append(result.Scenarios, res)
		result.Total++
		if res.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		if err := writeTestJSON(w, result); err != nil {
			return err
		}
	} else {
		writeTestText(w, result, opts.Verbose)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// scenarioFiles lists the YAML files under dir, sorted, whose base name
// without extension matches filter.
func scenarioFiles(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			if ok, _ := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext)); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	slices.Sort(files)
	return files, err
}

// runScenario loads, runs and golden-checks one scenario file.
func runScenario(ctx context.Context, file string, update bool) ScenarioResult {
	res := ScenarioResult{
		Name: strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)),
		File: file,
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		res.fail("load error: %v", err)
		return res
	}
	res.Name = scenario.Name

	result, err := harness.Run(ctx, scenario)
	if err != nil {
		res.fail("run error: %v", err)
		return res
	}
	res.Pass = result.Pass
	res.Cases = result.Cases

	snapshot, err := harness.MarshalSnapshot(scenario, result)
	if err != nil {
		res.fail("snapshot error: %v", err)
		return res
	}

	golden := goldenFilePath(file)
	res.Golden, err = syncGolden(golden, snapshot, update)
	switch {
	case err != nil:
		res.fail("golden error: %v", err)
	case res.Golden == goldenMismatch:
		res.fail("result does not match %s (run with --update to regenerate)", golden)
	}
	return res
}

// goldenFilePath returns golden/<name>.golden beside the scenario file.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// syncGolden writes snapshot to path when update is set, otherwise compares
// it with the file. A missing file is not a mismatch.
func syncGolden(path string, snapshot []byte, update bool) (string, error) {
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return goldenNone, err
		}
		if err := os.WriteFile(path, snapshot, 0644); err != nil {
			return goldenNone, err
		}
		return goldenUpdated, nil
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return goldenNone, nil
	}
	if err != nil {
		return goldenNone, err
	}
	if bytes.Equal(want, snapshot) {
		return goldenMatch, nil
	}
	return goldenMismatch, nil
}

func writeTestJSON(w io.Writer, result TestResult) error {
	resp := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		resp.Status = "error"
		resp.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// writeTestText prints one line per scenario and one per failing case
// message, including in-memory/SQL disagreements. verbose also lists
// passing cases with their SQL.
func writeTestText(w io.Writer, result TestResult, verbose bool) {
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}

	for _, s := range result.Scenarios {
		passed := 0
		for _, c := range s.Cases {
			if c.Pass {
				passed++
			}
		}
		line := fmt.Sprintf("%s %s: %d/%d cases", mark(s.Pass), s.Name, passed, len(s.Cases))
		if s.Golden == goldenUpdated {
			line += ", golden updated"
		}
		fmt.Fprintln(w, line)

		for _, c := range s.Cases {
			switch {
			case !c.Pass:
				for _, msg := range c.Errors {
					fmt.Fprintf(w, "    %s %s: %s\n", mark(false), c.Name, msg)
				}
			case verbose:
				detail := c.SQL
				if c.Error != "" {
					detail = c.Error
				}
				fmt.Fprintf(w, "    %s %s %v %s\n", mark(true), c.Name, c.IDs, detail)
			}
		}
		for _, msg := range s.Errors {
			fmt.Fprintf(w, "    %s\n", msg)
		}
	}

	fmt.Fprintf(w, "\nScenarios: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}

func mark(pass bool) string {
	if pass {
		return "✓"
	}
	return "✗"
}
