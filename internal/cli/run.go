package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lnmp-format/conformance/internal/harness"
	"github.com/lnmp-format/conformance/internal/lnmp"
	"github.com/lnmp-format/conformance/internal/schema"
	"github.com/lnmp-format/conformance/internal/store"
	"github.com/lnmp-format/conformance/internal/suite"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Category string
	Impl     string
	Workers  int
	Budget   time.Duration
	Record   string // path to run-history database, empty disables recording
}

// CaseReport is the JSON shape of one case result.
type CaseReport struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
}

// RunReport is the JSON shape of a whole run.
type RunReport struct {
	SuiteVersion   string       `json:"suite_version"`
	Implementation string       `json:"implementation"`
	Cases          []CaseReport `json:"cases"`
	Total          int          `json:"total"`
	Passed         int          `json:"passed"`
	Failed         int          `json:"failed"`
	Skipped        int          `json:"skipped"`
	PassRate       int          `json:"pass_rate"`
	RunID          string       `json:"run_id,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <suite.yaml>",
		Short: "Run a conformance suite",
		Long: `Run the test cases of a conformance suite and report results.

Exit codes:
  0 - No test case failed
  1 - One or more test cases failed
  2 - Command error (bad suite file, invalid flags, etc.)

Examples:
  lnmp-conformance run suite.yaml
  lnmp-conformance run suite.yaml --category round-trip
  lnmp-conformance run suite.yaml --impl none
  lnmp-conformance run suite.yaml --workers 4 --record runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "run one category (structural|semantic|error-handling|round-trip)")
	cmd.Flags().StringVar(&opts.Impl, "impl", "lnmp", "implementation under test (lnmp|none)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "number of parallel workers")
	cmd.Flags().DurationVar(&opts.Budget, "budget", harness.DefaultBudget, "wall-clock budget per test case")
	cmd.Flags().StringVar(&opts.Record, "record", "", "record results to a run-history database")

	return cmd
}

func runSuite(opts *RunOptions, path string, cmd *cobra.Command) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("suite file not found: %s", path))
	}

	if err := schema.ValidateFile(path); err != nil {
		return WrapExitError(ExitCommandError, "suite failed schema validation", err)
	}

	ts, err := suite.LoadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load suite", err)
	}

	cases, err := selectCases(ts, opts.Category)
	if err != nil {
		return err
	}

	runnerOpts := []harness.Option{
		harness.WithLogger(newLogger(cmd.ErrOrStderr(), opts.Verbose)),
		harness.WithBudget(opts.Budget),
		harness.WithWorkers(opts.Workers),
	}
	implName := "none"
	switch opts.Impl {
	case "lnmp":
		runnerOpts = append(runnerOpts, harness.WithImplementation(lnmp.NewCodec()))
		implName = lnmp.NewCodec().Name()
	case "none":
		// Every case resolves to Skip.
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown implementation %q", opts.Impl))
	}

	started := time.Now()
	runner := harness.NewRunner(runnerOpts...)
	results := runner.Run(cmd.Context(), cases)
	sum := harness.Summarize(results)

	runID := ""
	if opts.Record != "" {
		runID, err = recordRun(opts, path, ts.Version, implName, started, results, cmd)
		if err != nil {
			return err
		}
	}

	if opts.Format == "json" {
		if err := outputRunJSON(cmd, ts.Version, implName, results, sum, runID); err != nil {
			return err
		}
	} else {
		reporter := harness.NewReporter(cmd.OutOrStdout())
		if opts.Verbose {
			reporter.Detailed(results)
		} else {
			reporter.Summary(results)
		}
		if runID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\nRecorded run %s\n", runID)
		}
	}

	if sum.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d test case(s) failed", sum.Failed))
	}
	return nil
}

func selectCases(ts *suite.TestSuite, category string) ([]suite.TestCase, error) {
	if category == "" {
		return ts.AllTests(), nil
	}
	// A valid category absent from the suite is an empty selection, not
	// an error; only a name outside the fixed set is.
	for _, known := range suite.Categories {
		if category == known {
			return ts.Category(category), nil
		}
	}
	return nil, NewExitError(ExitCommandError,
		fmt.Sprintf("unknown category %q: must be one of %v", category, suite.Categories))
}

func recordRun(opts *RunOptions, path, version, impl string, started time.Time, results []harness.ExecutionResult, cmd *cobra.Command) (string, error) {
	st, err := store.Open(opts.Record)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to open run-history database", err)
	}
	defer st.Close()

	runID, err := st.RecordRun(cmd.Context(), store.Run{
		SuitePath:      path,
		SuiteVersion:   version,
		Implementation: impl,
		StartedAt:      started,
	}, results)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to record run", err)
	}
	return runID, nil
}

func outputRunJSON(cmd *cobra.Command, version, impl string, results []harness.ExecutionResult, sum harness.Summary, runID string) error {
	report := RunReport{
		SuiteVersion:   version,
		Implementation: impl,
		Cases:          make([]CaseReport, 0, len(results)),
		Total:          sum.Total,
		Passed:         sum.Passed,
		Failed:         sum.Failed,
		Skipped:        sum.Skipped,
		PassRate:       sum.PassRate(),
		RunID:          runID,
	}
	for _, res := range results {
		report.Cases = append(report.Cases, CaseReport{
			Name:     res.Name,
			Category: res.Category,
			Status:   res.Status.String(),
			Reason:   res.Reason,
		})
	}
	f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
	return f.Success(report)
}
