package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSuite = `
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
  - name: hex_mapping
    category: semantic
    description: Hex and decimal encodings are equivalent.
    input: "F7=0x1A"
    config:
      normalize_values: true
      equivalence_mapping:
        7:
          "0x1A": "26"
    expected:
      fields:
        - fid: 7
          type: string
          value: "26"
error_handling_tests:
  - name: checksum_rejected
    category: error-handling
    description: A wrong checksum is rejected.
    input: "F12=14532#00000000"
    config:
      validate_checksums: true
    expected:
      error: ChecksumMismatch
      message: field 12
      field_id: 12
round_trip_tests:
  - name: canonical_ordering
    category: round-trip
    description: Fields re-encode in fid order.
    input: "F2=2;F1=1"
    expected_canonical: "F1=1\nF2=2"
`

func TestValidateBytes_ValidSuite(t *testing.T) {
	assert.NoError(t, ValidateBytes([]byte(validSuite)))
}

func TestValidateBytes_Violations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			"unknown category",
			`
structural_tests:
  - name: x
    category: lexical
    description: d
    input: "F1=1"
`,
		},
		{
			"fid out of range",
			`
structural_tests:
  - name: x
    category: structural
    description: d
    input: "F1=1"
    expected:
      fields:
        - fid: 70000
          type: int
          value: 1
`,
		},
		{
			"missing name",
			`
structural_tests:
  - category: structural
    description: d
    input: "F1=1"
`,
		},
		{
			"error expectation without message",
			`
error_handling_tests:
  - name: x
    category: error-handling
    description: d
    input: "F1="
    expected:
      error: UnexpectedEof
`,
		},
		{
			"negative nesting depth",
			`
structural_tests:
  - name: x
    category: structural
    description: d
    input: "F1=1"
    config:
      max_nesting_depth: -1
`,
		},
		{
			"unknown expected type",
			`
structural_tests:
  - name: x
    category: structural
    description: d
    input: "F1=1"
    expected:
      fields:
        - fid: 1
          type: decimal
          value: 1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBytes([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema violation")
		})
	}
}

func TestValidateBytes_EmptyDocument(t *testing.T) {
	err := ValidateBytes([]byte(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestValidateBytes_MalformedYAML(t *testing.T) {
	err := ValidateBytes([]byte("structural_tests: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse YAML")
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSuite), 0o644))

	assert.NoError(t, ValidateFile(path))

	err := ValidateFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read suite file")
}
