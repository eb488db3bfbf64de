package spending

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

func receipt(issuedAt, price, quantity string) model.Receipt {
	return model.Receipt{IssuedAt: issuedAt, Price: price, Quantity: quantity}
}

func sampleReceipts() []model.Receipt {
	return []model.Receipt{
		receipt("2023-12-31 10:00:00", "10", "1"),   // Sunday
		receipt("2024-01-01 09:00:00", "2.50", "2"), // Monday
		receipt("2024-01-01", "1", "1"),             // Monday, date only
		receipt("2024-03-15T18:45:00", "4.25", "1"), // Friday
		receipt("", "100", "1"),
		receipt("yesterday", "100", "1"),
		receipt("2024-03-15 08:00:00", "oops", "1"),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertTotal(t *testing.T, s Summary, label, want string) {
	t.Helper()
	got, ok := s.Get(label)
	require.True(t, ok, "missing bucket %s", label)
	assert.True(t, dec(want).Equal(got), "%s: got %s want %s", label, got, want)
}

func TestByYear(t *testing.T) {
	got := ByYear(sampleReceipts())

	require.Len(t, got, 2)
	assert.Equal(t, "2023", got[0].Label)
	assert.Equal(t, "2024", got[1].Label)
	assertTotal(t, got, "2023", "10")
	assertTotal(t, got, "2024", "10.25")
}

func TestByWeekday(t *testing.T) {
	got := ByWeekday(sampleReceipts())

	require.Len(t, got, 7)
	labels := make([]string, 0, 7)
	for _, b := range got {
		labels = append(labels, b.Label)
	}
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}, labels)

	assertTotal(t, got, "Monday", "6")
	assertTotal(t, got, "Friday", "4.25")
	assertTotal(t, got, "Sunday", "10")
	assertTotal(t, got, "Tuesday", "0")
}

func TestByMonth(t *testing.T) {
	got := ByMonth(sampleReceipts())

	require.Len(t, got, 12)
	assert.Equal(t, "January", got[0].Label)
	assert.Equal(t, "December", got[11].Label)
	assertTotal(t, got, "January", "6")
	assertTotal(t, got, "March", "4.25")
	assertTotal(t, got, "December", "10")
	assert.True(t, dec("20.25").Equal(got.Total()))
}

func TestTotalOnDate(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		want    string
		wantErr bool
	}{
		{name: "clocked and date-only receipts", date: "2024-01-01", want: "6"},
		{name: "unparseable price counts zero", date: "2024-03-15", want: "4.25"},
		{name: "no receipts", date: "2024-02-02", want: "0"},
		{name: "malformed", date: "01/02/2024", wantErr: true},
		{name: "empty", date: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TotalOnDate(sampleReceipts(), tt.date)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.date, got.Date)
			assert.True(t, dec(tt.want).Equal(got.Total), "got %s", got.Total)
		})
	}
}

func TestSummary_MarshalJSON(t *testing.T) {
	s := Summary{
		{Label: "Monday", Total: dec("6")},
		{Label: "Tuesday", Total: dec("0.125")},
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"Monday":6.00,"Tuesday":0.13}`, string(data))

	data, err = json.Marshal(Summary{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, ByYear(nil))
	assert.Len(t, ByWeekday(nil), 7)
	assert.True(t, ByMonth(nil).Total().IsZero())
}

func TestDayTotal_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(DayTotal{Date: "2024-01-01", Total: dec("6")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-01-01","total":6}`, string(data))
}
