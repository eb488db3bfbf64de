// Package ingest reads receipt exports into raw receipt records.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/Veraticus/receipt-atlas/internal/common"
	"github.com/Veraticus/receipt-atlas/internal/model"
)

// row mirrors the receipts export column layout.
type row struct {
	ReceiptID string `csv:"fs_receipt_id"`
	Latitude  string `csv:"unit_latitude"`
	Longitude string `csv:"unit_longitude"`
	Price     string `csv:"price"`
	Quantity  string `csv:"quantity"`
	IssuedAt  string `csv:"fs_receipt_issue_date"`
	OrgName   string `csv:"org_name"`
	ItemName  string `csv:"item_name"`
	Category  string `csv:"category_name"`
	Address   string `csv:"unit_address"`
	City      string `csv:"unit_city"`
}

func (r row) receipt() model.Receipt {
	return model.Receipt{
		ReceiptID: strings.TrimSpace(r.ReceiptID),
		Latitude:  strings.TrimSpace(r.Latitude),
		Longitude: strings.TrimSpace(r.Longitude),
		Price:     strings.TrimSpace(r.Price),
		Quantity:  strings.TrimSpace(r.Quantity),
		IssuedAt:  strings.TrimSpace(r.IssuedAt),
		OrgName:   strings.TrimSpace(r.OrgName),
		ItemName:  strings.TrimSpace(r.ItemName),
		Category:  strings.TrimSpace(r.Category),
		Address:   strings.TrimSpace(r.Address),
		City:      strings.TrimSpace(r.City),
	}
}

// Columns lists the recognized header names.
var Columns = []string{
	"fs_receipt_id",
	"unit_latitude",
	"unit_longitude",
	"price",
	"quantity",
	"fs_receipt_issue_date",
	"org_name",
	"item_name",
	"category_name",
	"unit_address",
	"unit_city",
}

// Reader streams receipts from a CSV export. Columns are matched by header
// name; unknown columns are ignored and missing ones yield empty fields.
type Reader struct {
	dec  *csvutil.Decoder
	line int
}

// NewReader reads the header row and prepares to decode receipts.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	raw, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header row", common.ErrMalformedFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedFile, err)
	}

	header := normalizeHeader(raw)
	if !recognized(header) {
		return nil, fmt.Errorf("%w: none of the receipt columns found in header %v",
			common.ErrMalformedFile, header)
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMalformedFile, err)
	}

	return &Reader{dec: dec, line: 1}, nil
}

// Next returns the next receipt, or io.EOF when the input is exhausted.
func (r *Reader) Next() (model.Receipt, error) {
	var rec row
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return model.Receipt{}, io.EOF
		}
		return model.Receipt{}, fmt.Errorf("%w: line %d: %w", common.ErrMalformedFile, r.line+1, err)
	}
	r.line++
	return rec.receipt(), nil
}

// ReadAll drains r. progress, when non-nil, is called with the number of
// receipts read so far.
func ReadAll(ctx context.Context, r io.Reader, progress func(int)) ([]model.Receipt, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	var receipts []model.Receipt
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if rec == (model.Receipt{}) {
			continue
		}
		receipts = append(receipts, rec)
		if progress != nil {
			progress(len(receipts))
		}
	}

	slog.Debug("Read receipts", "count", len(receipts), "lines", reader.line)
	return receipts, nil
}

// ReadFile opens path and reads every receipt in it.
func ReadFile(ctx context.Context, path string, progress func(int)) ([]model.Receipt, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the user on purpose
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	receipts, err := ReadAll(ctx, f, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return receipts, nil
}

func normalizeHeader(raw []string) []string {
	header := make([]string, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return header
}

func recognized(header []string) bool {
	for _, h := range header {
		for _, c := range Columns {
			if h == c {
				return true
			}
		}
	}
	return false
}
