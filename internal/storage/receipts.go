package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

const receiptColumns = `receipt_id, unit_latitude, unit_longitude, price, quantity,
	issued_at, org_name, item_name, category_name, unit_address, unit_city`

// ImportResult reports how a batch of receipts was stored.
type ImportResult struct {
	Inserted   int
	Duplicates int
}

// ImportReceipts records an import and stores its receipts in one
// transaction. Lines already present from an earlier import are ignored.
// Identical lines within one batch are kept, each under its own occurrence
// hash. The import's Rows field is set to the number of inserted lines.
func (s *SQLiteStorage) ImportReceipts(ctx context.Context, imp *model.Import, receipts []model.Receipt) (ImportResult, error) {
	if err := validateContext(ctx); err != nil {
		return ImportResult{}, err
	}
	if err := validateImport(imp); err != nil {
		return ImportResult{}, err
	}
	if err := validateReceipts(receipts); err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	err := s.withRetry(ctx, func() error {
		var txErr error
		result, txErr = s.importReceiptsTx(ctx, imp, receipts)
		return txErr
	})
	if err != nil {
		return ImportResult{}, err
	}

	imp.Rows = result.Inserted
	slog.Debug("Stored receipts",
		"import_id", imp.ID,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates)
	return result, nil
}

func (s *SQLiteStorage) importReceiptsTx(ctx context.Context, imp *model.Import, receipts []model.Receipt) (ImportResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO imports (id, source, rows, imported_at) VALUES (?, ?, 0, ?)
	`, imp.ID, imp.Source, imp.ImportedAt.UTC())
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to record import: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO receipts (hash, import_id, `+receiptColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var result ImportResult
	seen := make(map[string]int, len(receipts))

	for i := range receipts {
		r := &receipts[i]
		hash := r.GenerateHash()
		seen[hash]++
		if n := seen[hash]; n > 1 {
			hash = fmt.Sprintf("%s#%d", hash, n)
		}

		res, execErr := stmt.ExecContext(ctx,
			hash,
			imp.ID,
			r.ReceiptID,
			r.Latitude,
			r.Longitude,
			r.Price,
			r.Quantity,
			r.IssuedAt,
			r.OrgName,
			r.ItemName,
			r.Category,
			r.Address,
			r.City,
		)
		if execErr != nil {
			return ImportResult{}, fmt.Errorf("failed to insert receipt %d: %w", i, execErr)
		}

		affected, _ := res.RowsAffected()
		if affected == 0 {
			result.Duplicates++
		} else {
			result.Inserted++
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE imports SET rows = ? WHERE id = ?`, result.Inserted, imp.ID); err != nil {
		return ImportResult{}, fmt.Errorf("failed to update import row count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("failed to commit import: %w", err)
	}
	return result, nil
}

// ListReceipts returns every stored receipt in insertion order.
func (s *SQLiteStorage) ListReceipts(ctx context.Context) ([]model.Receipt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+receiptColumns+` FROM receipts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	receipts := make([]model.Receipt, 0)
	for rows.Next() {
		var r model.Receipt
		if err := rows.Scan(
			&r.ReceiptID,
			&r.Latitude,
			&r.Longitude,
			&r.Price,
			&r.Quantity,
			&r.IssuedAt,
			&r.OrgName,
			&r.ItemName,
			&r.Category,
			&r.Address,
			&r.City,
		); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipts: %w", err)
	}
	return receipts, nil
}

// CountReceipts returns the number of stored receipts.
func (s *SQLiteStorage) CountReceipts(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count receipts: %w", err)
	}
	return count, nil
}

// ClearReceipts removes all receipts and their import records.
func (s *SQLiteStorage) ClearReceipts(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.withRetry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM receipts`); err != nil {
			return fmt.Errorf("failed to delete receipts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM imports`); err != nil {
			return fmt.Errorf("failed to delete imports: %w", err)
		}
		return tx.Commit()
	})
}

// ListImports returns recorded imports, newest first.
func (s *SQLiteStorage) ListImports(ctx context.Context) ([]model.Import, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, rows, imported_at FROM imports ORDER BY imported_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var imports []model.Import
	for rows.Next() {
		var imp model.Import
		var importedAt sql.NullTime
		if err := rows.Scan(&imp.ID, &imp.Source, &imp.Rows, &importedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		imp.ImportedAt = nullTime(importedAt)
		imports = append(imports, imp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating imports: %w", err)
	}
	return imports, nil
}

func nullTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}
