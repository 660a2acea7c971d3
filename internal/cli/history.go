package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lnmp-format/conformance/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB    string
	RunID string
	Limit int
}

// NewHistoryCommand creates the history command, which reads the
// run-history database written by run --record.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded conformance runs",
		Long: `Show runs from a run-history database.

Without --run, lists runs newest first. With --run, shows that run's
per-case results.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "runs.db", "run-history database path")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show per-case results for one run")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list")

	return cmd
}

func showHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.DB))
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open run-history database", err)
	}
	defer st.Close()

	if opts.RunID != "" {
		return showRunResults(opts, st, cmd)
	}
	return showRuns(opts, st, cmd)
}

func showRuns(opts *HistoryOptions, st *store.Store, cmd *cobra.Command) error {
	runs, err := st.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return f.Success(runs)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(out, "%s  %s  %s  impl=%s  pass=%d/%d fail=%d skip=%d\n",
			run.ID,
			run.StartedAt.Format(time.RFC3339),
			run.SuitePath,
			run.Implementation,
			run.Passed, run.Total, run.Failed, run.Skipped,
		)
	}
	return nil
}

func showRunResults(opts *HistoryOptions, st *store.Store, cmd *cobra.Command) error {
	results, err := st.RunResults(cmd.Context(), opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run results", err)
	}
	if len(results) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no results for run %s", opts.RunID))
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return f.Success(results)
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		fmt.Fprintf(out, "%-4s %-16s %s\n", res.Status, res.Category, res.Name)
		if res.Reason != "" && opts.Verbose {
			fmt.Fprintf(out, "     %s\n", res.Reason)
		}
	}
	return nil
}
