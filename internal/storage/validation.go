// Package storage provides the data persistence layer for receipt-atlas.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidImport  = errors.New("invalid import")
	ErrInvalidRun     = errors.New("invalid detection run")
	ErrInvalidReceipt = errors.New("invalid receipt")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateImport(imp *model.Import) error {
	if imp == nil {
		return fmt.Errorf("%w: import", ErrNilParameter)
	}
	if strings.TrimSpace(imp.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidImport)
	}
	if imp.ImportedAt.IsZero() {
		return fmt.Errorf("%w: missing import time", ErrInvalidImport)
	}
	return nil
}

// validateReceipts rejects only rows with nothing in them; malformed
// fields are stored as-is and judged at inference time.
func validateReceipts(receipts []model.Receipt) error {
	for i, r := range receipts {
		if r == (model.Receipt{}) {
			return fmt.Errorf("%w: receipt at index %d is empty", ErrInvalidReceipt, i)
		}
	}
	return nil
}

func validateRun(run *model.DetectionRun) error {
	if run == nil {
		return fmt.Errorf("%w: detection run", ErrNilParameter)
	}
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRun)
	}
	if run.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing creation time", ErrInvalidRun)
	}
	return nil
}
