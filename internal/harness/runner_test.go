package harness_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnmp-format/conformance/internal/harness"
	"github.com/lnmp-format/conformance/internal/suite"
	"github.com/lnmp-format/conformance/internal/testutil"
)

func successCase(name string, fields []suite.ExpectedField) suite.TestCase {
	return suite.TestCase{
		Name:     name,
		Category: suite.CategoryStructural,
		Input:    "F1=1",
		Expected: suite.FieldsOutput(fields),
	}
}

func TestRunner_SkipsWithoutImplementation(t *testing.T) {
	r := harness.NewRunner()
	results := r.Run(context.Background(), []suite.TestCase{
		successCase("a", nil),
		successCase("b", nil),
	})

	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, harness.StatusSkip, res.Status)
		assert.Equal(t, "no implementation wired", res.Reason)
	}
}

func TestRunner_CaseWithoutExpectationFails(t *testing.T) {
	fake := &testutil.FakeImplementation{}
	r := harness.NewRunner(harness.WithImplementation(fake))

	results := r.Run(context.Background(), []suite.TestCase{{
		Name:     "shapeless",
		Category: suite.CategoryStructural,
		Input:    "F1=1",
	}})

	require.Len(t, results, 1)
	assert.Equal(t, harness.StatusFail, results[0].Status)
	assert.Equal(t, "Test case has neither 'expected' nor 'expected_canonical' field", results[0].Reason)
	assert.Zero(t, fake.ParseCalls())
}

func TestRunner_SuccessCase(t *testing.T) {
	fake := &testutil.FakeImplementation{
		ParseFn: func(ctx context.Context, input string, opts harness.ParseOptions) (harness.Record, error) {
			return harness.StaticRecord{{FID: 1, TypeTag: "int", Value: int64(1)}}, nil
		},
	}
	r := harness.NewRunner(harness.WithImplementation(fake))

	tc := successCase("ok", []suite.ExpectedField{{FID: 1, TypeName: "int", Value: int64(1)}})
	results := r.Run(context.Background(), []suite.TestCase{tc})

	require.Len(t, results, 1)
	assert.Equal(t, harness.StatusPass, results[0].Status)
	assert.Empty(t, results[0].Reason)
}

func TestRunner_SuccessCaseParseError(t *testing.T) {
	fake := &testutil.FakeImplementation{
		ParseFn: func(ctx context.Context, input string, opts harness.ParseOptions) (harness.Record, error) {
			return nil, errors.New("boom")
		},
	}
	r := harness.NewRunner(harness.WithImplementation(fake))

	tc := successCase("broken", nil)
	results := r.Run(context.Background(), []suite.TestCase{tc})

	require.Len(t, results, 1)
	assert.Equal(t, harness.StatusFail, results[0].Status)
	assert.Equal(t, "failed to parse: boom", results[0].Reason)
}

func TestRunner_ErrorCase(t *testing.T) {
	tc := suite.TestCase{
		Name:     "bad-checksum",
		Category: suite.CategoryErrorHandling,
		Input:    "F12=14532#00000000",
		Expected: suite.ErrorOutput(suite.ExpectedError{
			Error:   "ChecksumMismatch",
			Message: "field 12",
		}),
	}

	t.Run("matching error passes", func(t *testing.T) {
		fake := &testutil.FakeImplementation{
			ParseFn: func(ctx context.Context, input string, opts harness.ParseOptions) (harness.Record, error) {
				return nil, errors.New("checksum mismatch for field 12 at line 1, column 1: expected 36AAE667, found 00000000")
			},
		}
		r := harness.NewRunner(harness.WithImplementation(fake))
		results := r.Run(context.Background(), []suite.TestCase{tc})
		require.Len(t, results, 1)
		assert.Equal(t, harness.StatusPass, results[0].Status)
	})

	t.Run("unexpected success fails", func(t *testing.T) {
		fake := &testutil.FakeImplementation{}
		r := harness.NewRunner(harness.WithImplementation(fake))
		results := r.Run(context.Background(), []suite.TestCase{tc})
		require.Len(t, results, 1)
		assert.Equal(t, harness.StatusFail, results[0].Status)
		assert.Equal(t, "expected error 'ChecksumMismatch' but parsing succeeded", results[0].Reason)
	})
}

func TestRunner_RoundTrip(t *testing.T) {
	canonical := "F1:i=1\nF2:s=x"
	var encodeOpts harness.EncodeOptions
	var parseOpts harness.ParseOptions

	fake := &testutil.FakeImplementation{
		ParseFn: func(ctx context.Context, input string, opts harness.ParseOptions) (harness.Record, error) {
			parseOpts = opts
			return harness.StaticRecord{}, nil
		},
		EncodeFn: func(ctx context.Context, rec harness.Record, opts harness.EncodeOptions) (string, error) {
			encodeOpts = opts
			return canonical + "\n", nil
		},
	}
	r := harness.NewRunner(harness.WithImplementation(fake))

	tc := suite.TestCase{
		Name:              "rt",
		Category:          suite.CategoryRoundTrip,
		Input:             "F2:s=x; F1:i=1",
		Config:            suite.TestConfig{StrictMode: true, PreserveChecksums: true},
		ExpectedCanonical: &canonical,
	}
	results := r.Run(context.Background(), []suite.TestCase{tc})

	require.Len(t, results, 1)
	assert.Equal(t, harness.StatusPass, results[0].Status)

	// Round-trip input always parses loose, even under strict_mode.
	assert.False(t, parseOpts.Strict)
	assert.True(t, encodeOpts.Canonical)
	assert.True(t, encodeOpts.IncludeTypeHints, "expected text carries hints")
	assert.True(t, encodeOpts.IncludeChecksums, "preserve_checksums was set")
}

func TestRunner_RoundTripWithoutHints(t *testing.T) {
	canonical := "F1=1\nF2=2"
	var encodeOpts harness.EncodeOptions

	fake := &testutil.FakeImplementation{
		EncodeFn: func(ctx context.Context, rec harness.Record, opts harness.EncodeOptions) (string, error) {
			encodeOpts = opts
			return canonical, nil
		},
	}
	r := harness.NewRunner(harness.WithImplementation(fake))

	tc := suite.TestCase{
		Name:              "rt-plain",
		Category:          suite.CategoryRoundTrip,
		Input:             "F2=2;F1=1",
		ExpectedCanonical: &canonical,
	}
	results := r.Run(context.Background(), []suite.TestCase{tc})

	require.Len(t, results, 1)
	assert.Equal(t, harness.StatusPass, results[0].Status)
	assert.False(t, encodeOpts.IncludeTypeHints)
	assert.False(t, encodeOpts.IncludeChecksums)
}

func TestRunner_RoundTripMismatch(t *testing.T) {
	canonical := "F1=1"
	fake := &testutil.FakeImplementation{
		EncodeFn: func(ctx context.Context, rec harness.Record, opts harness.EncodeOptions) (string, error) {
			return "F1=2", nil
		},
	}
	r := harness.NewRunner(harness.WithImplementation(fake))

	tc := suite.TestCase{
		Name:              "rt-bad",
		Category:          suite.CategoryRoundTrip,
		Input:             "F1=1",
		ExpectedCanonical: &canonical,
	}
	results := r.Run(context.Background(), []suite.TestCase{tc})

	require.Len(t, results, 1)
	assert.Equal(t, harness.StatusFail, results[0].Status)
	assert.Contains(t, results[0].Reason, "round-trip mismatch")
}

func TestRunner_PanicBecomesFailure(t *testing.T) {
	fake := &testutil.FakeImplementation{
		ParseFn: func(ctx context.Context, input string, opts harness.ParseOptions) (harness.Record, error) {
			panic("index out of range")
		},
	}
	r := harness.NewRunner(harness.WithImplementation(fake))

	results := r.Run(context.Background(), []suite.TestCase{successCase("panics", nil)})

	require.Len(t, results, 1)
	assert.Equal(t, harness.StatusFail, results[0].Status)
	assert.Equal(t, "implementation panicked: index out of range", results[0].Reason)
}

func TestRunner_BudgetExceeded(t *testing.T) {
	fake := &testutil.FakeImplementation{
		ParseFn: func(ctx context.Context, input string, opts harness.ParseOptions) (harness.Record, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	budget := 20 * time.Millisecond
	r := harness.NewRunner(harness.WithImplementation(fake), harness.WithBudget(budget))

	results := r.Run(context.Background(), []suite.TestCase{successCase("slow", nil)})

	require.Len(t, results, 1)
	assert.Equal(t, harness.StatusFail, results[0].Status)
	assert.Equal(t, fmt.Sprintf("exceeded time budget of %s", budget), results[0].Reason)
}

func TestRunner_WorkersPreserveOrder(t *testing.T) {
	fake := &testutil.FakeImplementation{
		ParseFn: func(ctx context.Context, input string, opts harness.ParseOptions) (harness.Record, error) {
			if strings.HasSuffix(input, "fail") {
				return nil, errors.New("boom")
			}
			return harness.StaticRecord{}, nil
		},
	}
	r := harness.NewRunner(harness.WithImplementation(fake), harness.WithWorkers(4))

	var cases []suite.TestCase
	for i := 0; i < 20; i++ {
		tc := successCase(fmt.Sprintf("case-%02d", i), nil)
		tc.Input = "F1=1"
		if i%3 == 0 {
			tc.Input = "fail"
		}
		cases = append(cases, tc)
	}

	results := r.Run(context.Background(), cases)
	require.Len(t, results, 20)
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("case-%02d", i), res.Name)
		if i%3 == 0 {
			assert.Equal(t, harness.StatusFail, res.Status)
		} else {
			assert.Equal(t, harness.StatusPass, res.Status)
		}
	}
	assert.Equal(t, 20, fake.ParseCalls())
}

func TestRunner_RunSuiteUsesCategoryOrder(t *testing.T) {
	fake := &testutil.FakeImplementation{}
	r := harness.NewRunner(harness.WithImplementation(fake))

	ts := &suite.TestSuite{
		StructuralTests: []suite.TestCase{successCase("s1", nil)},
		RoundTripTests:  []suite.TestCase{successCase("rt1", nil)},
		SemanticTests:   []suite.TestCase{successCase("m1", nil)},
	}
	results := r.RunSuite(context.Background(), ts)

	require.Len(t, results, 3)
	assert.Equal(t, "s1", results[0].Name)
	assert.Equal(t, "m1", results[1].Name)
	assert.Equal(t, "rt1", results[2].Name)
}

func TestSummarize(t *testing.T) {
	results := []harness.ExecutionResult{
		{Status: harness.StatusPass},
		{Status: harness.StatusPass},
		{Status: harness.StatusFail},
		{Status: harness.StatusSkip},
	}
	sum := harness.Summarize(results)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.Passed)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Skipped)

	// 2/4 truncates to 50; 2/3 truncates to 66.
	assert.Equal(t, 50, sum.PassRate())
	assert.Equal(t, 66, harness.Summary{Total: 3, Passed: 2}.PassRate())
	assert.Equal(t, 0, harness.Summary{}.PassRate())
}
