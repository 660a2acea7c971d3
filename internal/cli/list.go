package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lnmp-format/conformance/internal/suite"
)

// ListEntry is the JSON shape of one listed case.
type ListEntry struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:           "list <suite.yaml>",
		Short:         "List the test cases of a suite",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSuite(rootOpts, args[0], category, cmd)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "list one category only")
	return cmd
}

func listSuite(opts *RootOptions, path, category string, cmd *cobra.Command) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("suite file not found: %s", path))
	}

	ts, err := suite.LoadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load suite", err)
	}

	cases, err := selectCases(ts, category)
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		entries := make([]ListEntry, 0, len(cases))
		for _, tc := range cases {
			entries = append(entries, ListEntry{Name: tc.Name, Category: tc.Category, Description: tc.Description})
		}
		f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return f.Success(entries)
	}

	out := cmd.OutOrStdout()
	current := ""
	for _, tc := range cases {
		if tc.Category != current {
			current = tc.Category
			fmt.Fprintf(out, "\n%s:\n", current)
		}
		fmt.Fprintf(out, "  %s", tc.Name)
		if opts.Verbose {
			fmt.Fprintf(out, " - %s", tc.Description)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "\n%d cases\n", len(cases))
	return nil
}
