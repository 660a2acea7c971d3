package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lnmp-format/conformance/internal/schema"
	"github.com/lnmp-format/conformance/internal/suite"
)

// ValidateReport is the JSON shape of a validation result.
type ValidateReport struct {
	Path    string `json:"path"`
	Version string `json:"version"`
	Cases   int    `json:"cases"`
}

// NewValidateCommand creates the validate command. It checks a suite
// against the schema and loader without running anything.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <suite.yaml>",
		Short: "Validate a conformance suite file",
		Long: `Validate a suite against the schema and loader without executing tests.

Exit codes:
  0 - Suite is well formed
  2 - Suite is malformed or unreadable`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateSuite(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func validateSuite(opts *RootOptions, path string, cmd *cobra.Command) error {
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

	if opts.Format == "json" {
		f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return f.Success(ValidateReport{Path: path, Version: ts.Version, Cases: ts.Len()})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (version %s, %d cases)\n", path, ts.Version, ts.Len())
	return nil
}
