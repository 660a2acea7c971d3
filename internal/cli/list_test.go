package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCommand_GroupsByCategory(t *testing.T) {
	path := writeSuite(t, passingSuite)

	stdout, _, err := execute(t, "list", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "structural:\n  parse_single_int_field")
	assert.Contains(t, stdout, "round-trip:\n  canonical_ordering")
	assert.Contains(t, stdout, "4 cases")
}

func TestListCommand_VerboseIncludesDescriptions(t *testing.T) {
	path := writeSuite(t, passingSuite)

	stdout, _, err := execute(t, "list", path, "-v")
	require.NoError(t, err)
	assert.Contains(t, stdout, "parse_single_int_field - A single integer field parses.")
}

func TestListCommand_CategoryFilter(t *testing.T) {
	path := writeSuite(t, passingSuite)

	stdout, _, err := execute(t, "list", path, "-c", "semantic")
	require.NoError(t, err)
	assert.Contains(t, stdout, "quoted_string_value")
	assert.NotContains(t, stdout, "parse_single_int_field")
	assert.Contains(t, stdout, "1 cases")
}

func TestListCommand_JSONOutput(t *testing.T) {
	path := writeSuite(t, passingSuite)

	stdout, _, err := execute(t, "list", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   []ListEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 4)
	assert.Equal(t, "parse_single_int_field", resp.Data[0].Name)
	assert.Equal(t, "structural", resp.Data[0].Category)
}

func TestListCommand_AbsentCategoryListsNothing(t *testing.T) {
	path := writeSuite(t, failingSuite)

	stdout, _, err := execute(t, "list", path, "-c", "semantic")
	require.NoError(t, err)
	assert.Contains(t, stdout, "0 cases")
}

func TestListCommand_UnknownCategory(t *testing.T) {
	path := writeSuite(t, passingSuite)

	_, _, err := execute(t, "list", path, "-c", "lexical")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
