package harness_test

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/lnmp-format/conformance/internal/harness"
)

func reportFixtures() []harness.ExecutionResult {
	return []harness.ExecutionResult{
		{
			Name:     "parse_single_int_field",
			Category: "structural",
			Status:   harness.StatusPass,
		},
		{
			Name:     "strict_rejects_semicolons",
			Category: "error-handling",
			Status:   harness.StatusFail,
			Reason:   "error type mismatch: expected 'StrictModeViolation', got 'unexpected token'",
		},
		{
			Name:     "unicode_normalization",
			Category: "semantic",
			Status:   harness.StatusSkip,
			Reason:   "no implementation wired",
		},
		{
			Name:     "canonical_ordering",
			Category: "round-trip",
			Status:   harness.StatusPass,
		},
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestReporter_Summary(t *testing.T) {
	var buf bytes.Buffer
	harness.NewReporter(&buf).Summary(reportFixtures())
	newGoldie(t).Assert(t, "summary", buf.Bytes())
}

func TestReporter_SummaryAllPassing(t *testing.T) {
	results := []harness.ExecutionResult{
		{Name: "a", Category: "structural", Status: harness.StatusPass},
		{Name: "b", Category: "semantic", Status: harness.StatusPass},
	}

	var buf bytes.Buffer
	harness.NewReporter(&buf).Summary(results)

	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("Passed:  2 (100%)")) {
		t.Fatalf("unexpected summary output:\n%s", out)
	}
	if bytes.Contains(buf.Bytes(), []byte("Failed Tests:")) {
		t.Fatalf("failure section printed for a clean run:\n%s", out)
	}
}

func TestReporter_Detailed(t *testing.T) {
	var buf bytes.Buffer
	harness.NewReporter(&buf).Detailed(reportFixtures())
	newGoldie(t).Assert(t, "detailed", buf.Bytes())
}
