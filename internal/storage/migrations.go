package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/receipt-atlas/internal/common"
)

// ExpectedSchemaVersion is the schema version this build reads and writes.
const ExpectedSchemaVersion = 3

// schemaStep is one schema version: the statements that move a database
// from the previous version to this one.
type schemaStep struct {
	note       string
	statements []string
	version    int
}

var schemaSteps = []schemaStep{
	{
		version: 1,
		note:    "imports and receipts",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS imports (
				id TEXT PRIMARY KEY,
				source TEXT NOT NULL,
				rows INTEGER NOT NULL DEFAULT 0,
				imported_at DATETIME NOT NULL
			)`,

			`CREATE TABLE IF NOT EXISTS receipts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				hash TEXT UNIQUE NOT NULL,
				import_id TEXT,
				receipt_id TEXT NOT NULL DEFAULT '',
				unit_latitude TEXT NOT NULL DEFAULT '',
				unit_longitude TEXT NOT NULL DEFAULT '',
				price TEXT NOT NULL DEFAULT '',
				quantity TEXT NOT NULL DEFAULT '',
				issued_at TEXT NOT NULL DEFAULT '',
				org_name TEXT NOT NULL DEFAULT '',
				item_name TEXT NOT NULL DEFAULT '',
				category_name TEXT NOT NULL DEFAULT '',
				unit_address TEXT NOT NULL DEFAULT '',
				unit_city TEXT NOT NULL DEFAULT '',
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (import_id) REFERENCES imports(id)
			)`,
			`CREATE INDEX idx_receipts_import ON receipts(import_id)`,
		},
	},
	{
		version: 2,
		note:    "detection run history",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS detection_runs (
				id TEXT PRIMARY KEY,
				created_at DATETIME NOT NULL,
				home_key TEXT NOT NULL DEFAULT '',
				work_key TEXT NOT NULL DEFAULT '',
				vacation_key TEXT NOT NULL DEFAULT '',
				params TEXT NOT NULL DEFAULT '{}',
				receipt_count INTEGER NOT NULL DEFAULT 0,
				cluster_count INTEGER NOT NULL DEFAULT 0,
				skipped INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX idx_detection_runs_created ON detection_runs(created_at)`,
		},
	},
	{
		version: 3,
		note:    "issue date index for spending summaries",
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_receipts_issued_at ON receipts(issued_at)`,
		},
	},
}

// SchemaVersion reports the version recorded in PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate brings the schema up to ExpectedSchemaVersion. Each step runs in
// its own transaction together with the version bump.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, step := range schemaSteps {
		if step.version <= current {
			continue
		}
		if err := s.apply(ctx, step); err != nil {
			return fmt.Errorf("migration %d (%s): %w", step.version, step.note, err)
		}
		slog.Info("Applied migration", "version", step.version, "note", step.note)
	}

	final, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("%w: schema version %d, want %d", common.ErrInvalidConfig, final, ExpectedSchemaVersion)
	}
	return nil
}

func (s *SQLiteStorage) apply(ctx context.Context, step schemaStep) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range step.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", step.version)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}
