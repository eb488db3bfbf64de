package engine

import (
	"context"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

// ReceiptSource supplies the receipts a run analyzes.
type ReceiptSource interface {
	ListReceipts(ctx context.Context) ([]model.Receipt, error)
}

// RunRecorder persists detection run summaries.
type RunRecorder interface {
	SaveDetectionRun(ctx context.Context, run *model.DetectionRun) error
}
