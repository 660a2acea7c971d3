package harness

import (
	"fmt"
	"io"
	"strings"
)

// Reporter renders run results as text.
type Reporter struct {
	w io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

const ruleWidth = 80

// Summary prints aggregate counts followed by the reasons for every
// failed case.
func (r *Reporter) Summary(results []ExecutionResult) {
	sum := Summarize(results)

	fmt.Fprintf(r.w, "\n%s\n", strings.Repeat("=", ruleWidth))
	fmt.Fprintln(r.w, "LNMP Conformance Test Results")
	fmt.Fprintln(r.w, strings.Repeat("=", ruleWidth))
	fmt.Fprintf(r.w, "Total:   %d\n", sum.Total)
	fmt.Fprintf(r.w, "Passed:  %d (%d%%)\n", sum.Passed, sum.PassRate())
	fmt.Fprintf(r.w, "Failed:  %d\n", sum.Failed)
	fmt.Fprintf(r.w, "Skipped: %d\n", sum.Skipped)
	fmt.Fprintln(r.w, strings.Repeat("=", ruleWidth))

	if sum.Failed > 0 {
		fmt.Fprintln(r.w, "\nFailed Tests:")
		fmt.Fprintln(r.w, strings.Repeat("-", ruleWidth))
		for _, res := range results {
			if res.Status != StatusFail {
				continue
			}
			fmt.Fprintf(r.w, "❌ %s\n", res.Name)
			fmt.Fprintf(r.w, "   %s\n\n", res.Reason)
		}
	}
}

// Detailed prints one line per case, then the summary.
func (r *Reporter) Detailed(results []ExecutionResult) {
	fmt.Fprintf(r.w, "\n%s\n", strings.Repeat("=", ruleWidth))
	fmt.Fprintln(r.w, "LNMP Conformance Test Results (Detailed)")
	fmt.Fprintln(r.w, strings.Repeat("=", ruleWidth))

	for _, res := range results {
		switch res.Status {
		case StatusPass:
			fmt.Fprintf(r.w, "✅ %s\n", res.Name)
		case StatusFail:
			fmt.Fprintf(r.w, "❌ %s\n", res.Name)
			fmt.Fprintf(r.w, "   %s\n", res.Reason)
		case StatusSkip:
			fmt.Fprintf(r.w, "⏭️  %s\n", res.Name)
			fmt.Fprintf(r.w, "   %s\n", res.Reason)
		}
	}

	r.Summary(results)
}
