// Package spending totals receipt spend over calendar buckets.
package spending

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

const dateLayout = "2006-01-02"

// ErrInvalidDate is returned when a requested day is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")

// Bucket is the spend total for one label.
type Bucket struct {
	Label string
	Total decimal.Decimal
}

// Summary is an ordered list of buckets. It encodes as a JSON object whose
// keys keep the summary's order.
type Summary []Bucket

// Get returns the total for a label.
func (s Summary) Get(label string) (decimal.Decimal, bool) {
	for _, b := range s {
		if b.Label == label {
			return b.Total, true
		}
	}
	return decimal.Zero, false
}

// Total sums every bucket.
func (s Summary) Total() decimal.Decimal {
	total := decimal.Zero
	for _, b := range s {
		total = total.Add(b.Total)
	}
	return total
}

// MarshalJSON writes {"label": total, ...} in bucket order with totals
// rounded to cents.
func (s Summary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(b.Total.StringFixed(2))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DayTotal is the spend on one calendar day.
type DayTotal struct {
	Date  string
	Total decimal.Decimal
}

// MarshalJSON writes {"date": ..., "total": ...} with the total rounded to
// cents.
func (d DayTotal) MarshalJSON() ([]byte, error) {
	date, err := json.Marshal(d.Date)
	if err != nil {
		return nil, err
	}
	return []byte(`{"date":` + string(date) + `,"total":` + d.Total.StringFixed(2) + `}`), nil
}

// ByYear totals spend per calendar year, oldest first. Receipts without a
// parseable issue date are skipped.
func ByYear(records []model.Receipt) Summary {
	totals := make(map[int]decimal.Decimal)
	for _, r := range records {
		day, ok := issueDay(r)
		if !ok {
			continue
		}
		totals[day.Year()] = totals[day.Year()].Add(r.Spend())
	}

	years := make([]int, 0, len(totals))
	for y := range totals {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make(Summary, 0, len(years))
	for _, y := range years {
		out = append(out, Bucket{Label: strconv.Itoa(y), Total: totals[y]})
	}
	return out
}

// ByWeekday totals spend per day of the week, Monday through Sunday. All
// seven days are present.
func ByWeekday(records []model.Receipt) Summary {
	var totals [7]decimal.Decimal
	for _, r := range records {
		day, ok := issueDay(r)
		if !ok {
			continue
		}
		i := (int(day.Weekday()) + 6) % 7
		totals[i] = totals[i].Add(r.Spend())
	}

	out := make(Summary, 0, len(totals))
	for i, total := range totals {
		out = append(out, Bucket{Label: time.Weekday((i + 1) % 7).String(), Total: total})
	}
	return out
}

// ByMonth totals spend per month of the year across all years, January
// through December. All twelve months are present.
func ByMonth(records []model.Receipt) Summary {
	var totals [12]decimal.Decimal
	for _, r := range records {
		day, ok := issueDay(r)
		if !ok {
			continue
		}
		totals[day.Month()-1] = totals[day.Month()-1].Add(r.Spend())
	}

	out := make(Summary, 0, len(totals))
	for i, total := range totals {
		out = append(out, Bucket{Label: time.Month(i + 1).String(), Total: total})
	}
	return out
}

// ParseDate parses a YYYY-MM-DD day.
func ParseDate(s string) (time.Time, error) {
	day, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return day, nil
}

// TotalOnDate sums the spend of receipts issued on the given YYYY-MM-DD day.
func TotalOnDate(records []model.Receipt, date string) (DayTotal, error) {
	day, err := ParseDate(date)
	if err != nil {
		return DayTotal{}, err
	}

	total := decimal.Zero
	for _, r := range records {
		issued, ok := issueDay(r)
		if ok && issued.Equal(day) {
			total = total.Add(r.Spend())
		}
	}
	return DayTotal{Date: day.Format(dateLayout), Total: total}, nil
}

func issueDay(r model.Receipt) (time.Time, bool) {
	v, ok := r.Visit()
	if !ok {
		return time.Time{}, false
	}
	return v.Day(), true
}
