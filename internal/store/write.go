package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lnmp-format/conformance/internal/harness"
)

// Run summarizes one harness invocation.
type Run struct {
	ID             string
	SuitePath      string
	SuiteVersion   string
	Implementation string
	StartedAt      time.Time
	Total          int
	Passed         int
	Failed         int
	Skipped        int
}

// RecordRun persists a run and its per-case results in one transaction
// and returns the generated run id.
func (s *Store) RecordRun(ctx context.Context, run Run, results []harness.ExecutionResult) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	sum := harness.Summarize(results)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, suite_path, suite_version, implementation, started_at, total, passed, failed, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		run.SuitePath,
		run.SuiteVersion,
		run.Implementation,
		run.StartedAt.UTC().Format(time.RFC3339),
		sum.Total,
		sum.Passed,
		sum.Failed,
		sum.Skipped,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO case_results (run_id, seq, name, category, status, reason)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	defer stmt.Close()

	for i, res := range results {
		if _, err := stmt.ExecContext(ctx, id, i, res.Name, res.Category, res.Status.String(), res.Reason); err != nil {
			return "", fmt.Errorf("record case result %q: %w", res.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id, nil
}
