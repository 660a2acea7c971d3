package harness

import "sync"

// Status is the outcome of a single test case.
type Status int

const (
	StatusPass Status = iota
	StatusFail
	StatusSkip
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	case StatusSkip:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// ExecutionResult pairs a test case with its outcome. Reason is empty
// for passes.
type ExecutionResult struct {
	Name     string
	Category string
	Status   Status
	Reason   string
}

// Summary aggregates outcomes across a run.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// PassRate is the percentage of passed cases, truncated toward zero.
// An empty run reports 0.
func (s Summary) PassRate() int {
	if s.Total == 0 {
		return 0
	}
	return s.Passed * 100 / s.Total
}

// Summarize counts outcomes.
func Summarize(results []ExecutionResult) Summary {
	sum := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			sum.Passed++
		case StatusFail:
			sum.Failed++
		case StatusSkip:
			sum.Skipped++
		}
	}
	return sum
}

// resultLog collects results from concurrent workers. Slots are
// index-addressed so the final ordering matches suite order no matter
// which worker finishes first.
type resultLog struct {
	mu      sync.Mutex
	results []ExecutionResult
}

func newResultLog(n int) *resultLog {
	return &resultLog{results: make([]ExecutionResult, n)}
}

func (l *resultLog) set(i int, r ExecutionResult) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results[i] = r
}

func (l *resultLog) snapshot() []ExecutionResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ExecutionResult, len(l.results))
	copy(out, l.results)
	return out
}
