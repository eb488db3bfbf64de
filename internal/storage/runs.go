package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/receipt-atlas/internal/common"
	"github.com/Veraticus/receipt-atlas/internal/model"
)

// SaveDetectionRun stores the summary of one inference run.
func (s *SQLiteStorage) SaveDetectionRun(ctx context.Context, run *model.DetectionRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	params := run.ParamsJSON
	if params == "" {
		params = "{}"
	}

	return s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO detection_runs (
				id, created_at, home_key, work_key, vacation_key,
				params, receipt_count, cluster_count, skipped
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			run.CreatedAt.UTC(),
			run.HomeKey,
			run.WorkKey,
			run.VacationKey,
			params,
			run.ReceiptCount,
			run.ClusterCount,
			run.Skipped,
		)
		if err != nil {
			return fmt.Errorf("failed to save detection run: %w", err)
		}
		return nil
	})
}

// ListDetectionRuns returns up to limit runs, newest first. A limit of zero
// or less returns all runs.
func (s *SQLiteStorage) ListDetectionRuns(ctx context.Context, limit int) ([]model.DetectionRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, home_key, work_key, vacation_key,
		       params, receipt_count, cluster_count, skipped
		FROM detection_runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query detection runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.DetectionRun
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating detection runs: %w", err)
	}
	return runs, nil
}

// GetDetectionRun returns the run with the given id.
func (s *SQLiteStorage) GetDetectionRun(ctx context.Context, id string) (*model.DetectionRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, home_key, work_key, vacation_key,
		       params, receipt_count, cluster_count, skipped
		FROM detection_runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("detection run %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (model.DetectionRun, error) {
	var run model.DetectionRun
	var createdAt sql.NullTime
	err := row.Scan(
		&run.ID,
		&createdAt,
		&run.HomeKey,
		&run.WorkKey,
		&run.VacationKey,
		&run.ParamsJSON,
		&run.ReceiptCount,
		&run.ClusterCount,
		&run.Skipped,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DetectionRun{}, err
	}
	if err != nil {
		return model.DetectionRun{}, fmt.Errorf("failed to scan detection run: %w", err)
	}
	run.CreatedAt = nullTime(createdAt)
	return run, nil
}
