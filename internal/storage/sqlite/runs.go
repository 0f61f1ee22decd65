package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/steveyegge/tailzero/internal/types"
)

// RecordRun stores a completed run and its matches in one transaction
func (s *SQLiteStorage) RecordRun(ctx context.Context, run *types.SearchRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid search run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, zero_count, quota, algorithm, step_size, workers, mode,
			contiguous, exhausted, cancelled, windows, candidates, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.ZeroCount,
		run.Quota,
		run.Algorithm,
		int64(run.StepSize),
		run.Workers,
		run.Mode,
		run.Contiguous,
		run.Exhausted,
		run.Cancelled,
		int64(run.Windows),
		int64(run.Candidates),
		run.StartedAt.UnixNano(),
		run.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO matches (run_id, seq, candidate, digest) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare match insert: %w", err)
	}
	defer stmt.Close()

	for i, m := range run.Matches {
		if _, err := stmt.ExecContext(ctx, run.ID, i, int64(m.Candidate), m.Digest); err != nil {
			return fmt.Errorf("failed to insert match %d: %w", m.Candidate, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

const runColumns = `
	r.id, r.zero_count, r.quota, r.algorithm, r.step_size, r.workers, r.mode,
	r.contiguous, r.exhausted, r.cancelled, r.windows, r.candidates, r.started_at, r.finished_at,
	(SELECT COUNT(*) FROM matches m WHERE m.run_id = r.id)
`

// GetRun returns a run with its matches in discovery order
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*types.SearchRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", types.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT candidate, digest FROM matches
		WHERE run_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m types.Match
		if err := rows.Scan(&m.Candidate, &m.Digest); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		run.Matches = append(run.Matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs first, without their matches.
// A limit of 0 or less returns every run.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]*types.SearchRun, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs r
		ORDER BY r.started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*types.SearchRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// PruneRuns deletes runs that started before cutoff, always keeping the keep
// most recent runs. Returns the number of runs deleted.
func (s *SQLiteStorage) PruneRuns(ctx context.Context, cutoff time.Time, keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep cannot be negative (got %d)", keep)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const victims = `
		SELECT id FROM runs
		WHERE started_at < ?
		  AND id NOT IN (SELECT id FROM runs ORDER BY started_at DESC LIMIT ?)
	`

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE run_id IN (`+victims+`)`, cutoff.UnixNano(), keep); err != nil {
		return 0, fmt.Errorf("failed to delete matches: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+victims+`)`, cutoff.UnixNano(), keep)
	if err != nil {
		return 0, fmt.Errorf("failed to delete runs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return int(rows), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*types.SearchRun, error) {
	var (
		run                   types.SearchRun
		stepSize              int64
		windows, candidates   int64
		startedAt, finishedAt int64
	)
	err := row.Scan(
		&run.ID,
		&run.ZeroCount,
		&run.Quota,
		&run.Algorithm,
		&stepSize,
		&run.Workers,
		&run.Mode,
		&run.Contiguous,
		&run.Exhausted,
		&run.Cancelled,
		&windows,
		&candidates,
		&startedAt,
		&finishedAt,
		&run.MatchCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.StepSize = uint64(stepSize)
	run.Windows = uint64(windows)
	run.Candidates = uint64(candidates)
	run.StartedAt = time.Unix(0, startedAt)
	run.FinishedAt = time.Unix(0, finishedAt)
	return &run, nil
}
