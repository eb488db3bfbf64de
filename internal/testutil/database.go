// Package testutil provides shared test helpers for receipt-atlas packages.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/receipt-atlas/internal/model"
	"github.com/Veraticus/receipt-atlas/internal/storage"
)

// SetupTestDB creates a migrated in-memory database that is closed when the
// test finishes. Any receipts given are stored under a single import.
func SetupTestDB(t *testing.T, receipts ...model.Receipt) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if len(receipts) > 0 {
		imp := &model.Import{
			ID:         "test-import",
			Source:     "testutil",
			ImportedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		if _, err := store.ImportReceipts(ctx, imp, receipts); err != nil {
			t.Fatalf("failed to seed receipts: %v", err)
		}
	}

	return store
}

// Receipt builds a receipt line at the given coordinate.
func Receipt(org string, lat, lon float64, price, issuedAt string) model.Receipt {
	return model.Receipt{
		ReceiptID: fmt.Sprintf("%s@%s", org, issuedAt),
		Latitude:  fmt.Sprintf("%.6f", lat),
		Longitude: fmt.Sprintf("%.6f", lon),
		Price:     price,
		Quantity:  "1",
		IssuedAt:  issuedAt,
		OrgName:   org,
		ItemName:  "item",
		Category:  "General",
	}
}
