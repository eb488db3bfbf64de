// Package model defines the core data types shared across receipt-atlas.
package model

import (
	"crypto/sha256"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is a single geotagged receipt line as produced by ingestion.
// Fields are kept as the raw strings of the source so that parsing
// policy stays with the consumers.
type Receipt struct {
	ReceiptID string
	Latitude  string
	Longitude string
	Price     string
	Quantity  string
	IssuedAt  string // issue timestamp, date-only or date-time
	OrgName   string
	ItemName  string
	Category  string
	Address   string
	City      string
}

// Coordinate parses the receipt's latitude and longitude. The second
// return value is false when either is missing or not a finite number.
func (r Receipt) Coordinate() (Coordinate, bool) {
	lat, ok := parseFinite(r.Latitude)
	if !ok {
		return Coordinate{}, false
	}
	lon, ok := parseFinite(r.Longitude)
	if !ok {
		return Coordinate{}, false
	}
	return Coordinate{Lat: lat, Lon: lon}, true
}

// Spend returns price × quantity. A missing or malformed price or
// quantity contributes zero.
func (r Receipt) Spend() decimal.Decimal {
	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return decimal.Zero
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(r.Quantity))
	if err != nil {
		return decimal.Zero
	}
	return price.Mul(qty)
}

// Visit parses the issue timestamp. The second return value is false
// when the receipt carries no usable timestamp.
func (r Receipt) Visit() (Visit, bool) {
	return ParseVisit(r.IssuedAt)
}

// GenerateHash creates a stable hash of the receipt line for duplicate detection.
func (r Receipt) GenerateHash() string {
	data := strings.Join([]string{
		r.ReceiptID,
		r.IssuedAt,
		r.Latitude,
		r.Longitude,
		r.OrgName,
		r.ItemName,
		r.Price,
		r.Quantity,
	}, "|")
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Timestamp layouts accepted for receipt issue dates, most specific first.
var visitLayouts = []struct {
	layout   string
	hasClock bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02 15:04:05Z07:00", true},
	{"2006-01-02T15:04:05Z0700", true},
	{"2006-01-02 15:04:05Z0700", true},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02 15:04", true},
	{"2006-01-02", false},
}

// ParseVisit parses an issue timestamp into a Visit. Zoned timestamps keep
// their own wall clock; the zone is not converted.
func ParseVisit(s string) (Visit, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Visit{}, false
	}
	for _, l := range visitLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
		return Visit{At: wall, HasClock: l.hasClock}, true
	}
	return Visit{}, false
}
