package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnmp-format/conformance/internal/store"
)

// passingSuite exercises all four categories and passes against the
// bundled codec.
const passingSuite = `
version: "1.0"
structural_tests:
  - name: parse_single_int_field
    category: structural
    description: A single integer field parses.
    input: "F1=42"
    expected:
      fields:
        - fid: 1
          type: int
          value: 42
semantic_tests:
  - name: quoted_string_value
    category: semantic
    description: Quoted strings keep their content.
    input: 'F5="hello"'
    expected:
      fields:
        - fid: 5
          type: string
          value: hello
error_handling_tests:
  - name: strict_rejects_semicolons
    category: error-handling
    description: Semicolon separators are a strict mode violation.
    input: "F1=1;F2=2"
    config:
      strict_mode: true
    expected:
      error: StrictModeViolation
      message: semicolons are not allowed
round_trip_tests:
  - name: canonical_ordering
    category: round-trip
    description: Fields re-encode in fid order.
    input: "F2=2;F1=1"
    expected_canonical: "F1=1\nF2=2"
`

const failingSuite = `
version: "1.0"
structural_tests:
  - name: wrong_expected_value
    category: structural
    description: Deliberately wrong expectation.
    input: "F1=42"
    expected:
      fields:
        - fid: 1
          type: int
          value: 43
`

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRunCommand_AllPassing(t *testing.T) {
	path := writeSuite(t, passingSuite)

	stdout, _, err := execute(t, "run", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total:   4")
	assert.Contains(t, stdout, "Passed:  4 (100%)")
	assert.NotContains(t, stdout, "Failed Tests:")
}

func TestRunCommand_FailuresSetExitCode(t *testing.T) {
	path := writeSuite(t, failingSuite)

	stdout, _, err := execute(t, "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 test case(s) failed")
	assert.Contains(t, stdout, "Failed Tests:")
	assert.Contains(t, stdout, "wrong_expected_value")
}

func TestRunCommand_NoImplementationSkips(t *testing.T) {
	path := writeSuite(t, passingSuite)

	stdout, _, err := execute(t, "run", path, "--impl", "none")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Skipped: 4")
	assert.Contains(t, stdout, "Passed:  0 (0%)")
}

func TestRunCommand_CategoryFilter(t *testing.T) {
	path := writeSuite(t, passingSuite)

	stdout, _, err := execute(t, "run", path, "--category", "round-trip")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total:   1")
}

func TestRunCommand_AbsentCategoryRunsZeroCases(t *testing.T) {
	// failingSuite declares structural_tests only; selecting a valid
	// category the suite omits runs an empty selection and exits clean.
	path := writeSuite(t, failingSuite)

	stdout, _, err := execute(t, "run", path, "--category", "round-trip")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Total:   0")
}

func TestRunCommand_UnknownCategory(t *testing.T) {
	path := writeSuite(t, passingSuite)

	_, _, err := execute(t, "run", path, "--category", "lexical")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown category "lexical"`)
}

func TestRunCommand_UnknownImplementation(t *testing.T) {
	path := writeSuite(t, passingSuite)

	_, _, err := execute(t, "run", path, "--impl", "other")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand_MissingSuiteFile(t *testing.T) {
	_, _, err := execute(t, "run", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "suite file not found")
}

func TestRunCommand_MalformedSuite(t *testing.T) {
	path := writeSuite(t, "structural_tests:\n  - name: x\n")

	_, _, err := execute(t, "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "schema validation")
}

func TestRunCommand_JSONOutput(t *testing.T) {
	path := writeSuite(t, passingSuite)

	stdout, _, err := execute(t, "run", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0", resp.Data.SuiteVersion)
	assert.Equal(t, "lnmp-go", resp.Data.Implementation)
	assert.Equal(t, 4, resp.Data.Total)
	assert.Equal(t, 4, resp.Data.Passed)
	assert.Equal(t, 100, resp.Data.PassRate)
	require.Len(t, resp.Data.Cases, 4)
	assert.Equal(t, "parse_single_int_field", resp.Data.Cases[0].Name)
	assert.Equal(t, "PASS", resp.Data.Cases[0].Status)
}

func TestRunCommand_RecordsRun(t *testing.T) {
	path := writeSuite(t, passingSuite)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	stdout, _, err := execute(t, "run", path, "--record", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Recorded run ")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, path, runs[0].SuitePath)
	assert.Equal(t, "1.0", runs[0].SuiteVersion)
	assert.Equal(t, "lnmp-go", runs[0].Implementation)
	assert.Equal(t, 4, runs[0].Total)
	assert.Equal(t, 4, runs[0].Passed)

	results, err := st.RunResults(context.Background(), runs[0].ID)
	require.NoError(t, err)
	assert.Len(t, results, 4)
}

func TestRunCommand_InvalidFormat(t *testing.T) {
	path := writeSuite(t, passingSuite)

	_, _, err := execute(t, "run", path, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}
