package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lnmp-format/conformance/internal/harness"
)

// CaseResult is one persisted test case outcome.
type CaseResult struct {
	RunID    string
	Seq      int
	Name     string
	Category string
	Status   string
	Reason   string
}

// ListRuns returns runs in reverse chronological order, newest first.
// limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, suite_path, suite_version, implementation, started_at,
		       total, passed, failed, skipped
		FROM runs
		ORDER BY started_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		if err := rows.Scan(&run.ID, &run.SuitePath, &run.SuiteVersion, &run.Implementation,
			&startedAt, &run.Total, &run.Passed, &run.Failed, &run.Skipped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", startedAt, err)
		}
		run.StartedAt = ts
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunResults returns a run's case results in execution order.
func (s *Store) RunResults(ctx context.Context, runID string) ([]CaseResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, name, category, status, reason
		FROM case_results
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("run results: %w", err)
	}
	defer rows.Close()

	var results []CaseResult
	for rows.Next() {
		var res CaseResult
		if err := rows.Scan(&res.RunID, &res.Seq, &res.Name, &res.Category, &res.Status, &res.Reason); err != nil {
			return nil, fmt.Errorf("scan case result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// FailedResults returns only the failed cases of a run.
func (s *Store) FailedResults(ctx context.Context, runID string) ([]CaseResult, error) {
	all, err := s.RunResults(ctx, runID)
	if err != nil {
		return nil, err
	}
	var failed []CaseResult
	for _, res := range all {
		if res.Status == harness.StatusFail.String() {
			failed = append(failed, res)
		}
	}
	return failed, nil
}
