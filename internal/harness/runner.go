package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lnmp-format/conformance/internal/suite"
)

// DefaultBudget is the wall-clock limit for a single test case.
const DefaultBudget = 30 * time.Second

// Runner executes test cases against an implementation.
type Runner struct {
	impl    Implementation
	logger  *slog.Logger
	budget  time.Duration
	workers int
}

// Option configures a Runner.
type Option func(*Runner)

// WithImplementation wires in the system under test. Without one, every
// case resolves to Skip.
func WithImplementation(impl Implementation) Option {
	return func(r *Runner) { r.impl = impl }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithBudget overrides the per-case wall-clock limit.
func WithBudget(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.budget = d
		}
	}
}

// WithWorkers runs cases on n goroutines. Results keep suite order.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		budget:  DefaultBudget,
		workers: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the given cases and returns one result per case, in
// input order.
func (r *Runner) Run(ctx context.Context, cases []suite.TestCase) []ExecutionResult {
	log := newResultLog(len(cases))

	if r.workers <= 1 {
		for i := range cases {
			log.set(i, r.runCase(ctx, &cases[i]))
		}
		return log.snapshot()
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				log.set(i, r.runCase(ctx, &cases[i]))
			}
		}()
	}
	for i := range cases {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return log.snapshot()
}

// RunSuite executes every case in the suite in category order.
func (r *Runner) RunSuite(ctx context.Context, ts *suite.TestSuite) []ExecutionResult {
	return r.Run(ctx, ts.AllTests())
}

func (r *Runner) runCase(ctx context.Context, tc *suite.TestCase) ExecutionResult {
	res := ExecutionResult{Name: tc.Name, Category: tc.Category}

	if r.impl == nil {
		res.Status = StatusSkip
		res.Reason = "no implementation wired"
		return res
	}

	r.logger.Debug("running test case", "name", tc.Name, "category", tc.Category)

	status, reason := r.withBudget(ctx, tc.Name, func(ctx context.Context) (Status, string) {
		return r.dispatch(ctx, tc)
	})
	res.Status = status
	res.Reason = reason
	return res
}

// withBudget runs fn under the per-case time limit, converting panics
// and timeouts into failures.
func (r *Runner) withBudget(ctx context.Context, name string, fn func(context.Context) (Status, string)) (Status, string) {
	ctx, cancel := context.WithTimeout(ctx, r.budget)
	defer cancel()

	type outcome struct {
		status Status
		reason string
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{StatusFail, fmt.Sprintf("implementation panicked: %v", p)}
			}
		}()
		status, reason := fn(ctx)
		done <- outcome{status, reason}
	}()

	select {
	case out := <-done:
		return out.status, out.reason
	case <-ctx.Done():
		r.logger.Warn("test case exceeded budget", "name", name, "budget", r.budget)
		return StatusFail, fmt.Sprintf("exceeded time budget of %s", r.budget)
	}
}

// dispatch routes a case by shape: round-trip first, then malformed
// cases without expectations, then error and success cases.
func (r *Runner) dispatch(ctx context.Context, tc *suite.TestCase) (Status, string) {
	if tc.ExpectedCanonical != nil {
		return r.runRoundTrip(ctx, tc, *tc.ExpectedCanonical)
	}
	if tc.Expected == nil {
		return StatusFail, "Test case has neither 'expected' nor 'expected_canonical' field"
	}
	if tc.Expected.IsError() {
		return r.runErrorCase(ctx, tc, tc.Expected.Err())
	}
	return r.runSuccessCase(ctx, tc, tc.Expected.Fields())
}

func (r *Runner) runSuccessCase(ctx context.Context, tc *suite.TestCase, expected []suite.ExpectedField) (Status, string) {
	rec, err := r.impl.Parse(ctx, tc.Input, parseOptions(tc.Config))
	if err != nil {
		return StatusFail, fmt.Sprintf("failed to parse: %v", err)
	}
	if err := ValidateFields(tc.Config, expected, rec.Fields()); err != nil {
		return StatusFail, err.Error()
	}
	return StatusPass, ""
}

func (r *Runner) runErrorCase(ctx context.Context, tc *suite.TestCase, expected suite.ExpectedError) (Status, string) {
	_, err := r.impl.Parse(ctx, tc.Input, parseOptions(tc.Config))
	if err == nil {
		return StatusFail, fmt.Sprintf("expected error '%s' but parsing succeeded", expected.Error)
	}
	if err := ValidateError(&expected, err); err != nil {
		return StatusFail, err.Error()
	}
	return StatusPass, ""
}

// runRoundTrip parses in loose mode, re-encodes canonically, and
// compares against the expected text. Type hints are emitted when the
// expected canonical form itself carries them.
func (r *Runner) runRoundTrip(ctx context.Context, tc *suite.TestCase, expected string) (Status, string) {
	opts := parseOptions(tc.Config)
	opts.Strict = false

	rec, err := r.impl.Parse(ctx, tc.Input, opts)
	if err != nil {
		return StatusFail, fmt.Sprintf("failed to parse: %v", err)
	}

	encoded, err := r.impl.Encode(ctx, rec, EncodeOptions{
		Canonical:        true,
		IncludeTypeHints: containsTypeHint(expected),
		IncludeChecksums: tc.Config.PreserveChecksums,
	})
	if err != nil {
		return StatusFail, fmt.Sprintf("failed to encode: %v", err)
	}

	if err := CompareCanonical(expected, encoded); err != nil {
		return StatusFail, err.Error()
	}
	return StatusPass, ""
}

func parseOptions(cfg suite.TestConfig) ParseOptions {
	return ParseOptions{
		Strict:            cfg.StrictMode,
		ValidateChecksums: cfg.ValidateChecksums,
		NormalizeValues:   cfg.NormalizeValues,
		MaxNestingDepth:   cfg.MaxNestingDepth,
	}
}

// containsTypeHint reports whether canonical text uses type hint
// notation. The single-letter hints cover the two-letter ones as
// substrings.
func containsTypeHint(s string) bool {
	for _, hint := range []string{":i", ":f", ":b", ":s", ":r"} {
		if strings.Contains(s, hint) {
			return true
		}
	}
	return false
}
