package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/receipt-atlas/internal/engine"
	"github.com/Veraticus/receipt-atlas/internal/model"
	"github.com/Veraticus/receipt-atlas/internal/roles"
	"github.com/Veraticus/receipt-atlas/internal/spending"
)

func sampleRun(t *testing.T) *engine.Run {
	t.Helper()
	receipts := []model.Receipt{
		{Latitude: "48.1486", Longitude: "17.1077", Price: "12", Quantity: "1",
			IssuedAt: "2024-03-04 19:00:00", OrgName: "Home Market"},
		{Latitude: "48.1486", Longitude: "17.1077", Price: "8", Quantity: "1",
			IssuedAt: "2024-03-05 19:00:00", OrgName: "Home Market"},
		{Latitude: "48.16", Longitude: "17.17", Price: "6.5", Quantity: "1",
			IssuedAt: "2024-03-05 12:00:00", OrgName: "Canteen"},
	}
	run, err := engine.Analyze(receipts, roles.DefaultParams())
	require.NoError(t, err)
	return run
}

func TestWriteDetection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDetection(&buf, sampleRun(t), 3))

	out := buf.String()
	assert.Contains(t, out, "Location roles")
	assert.Contains(t, out, "Home Market")
	assert.Contains(t, out, "48.148600,17.107700")
	assert.Contains(t, out, "Canteen")
	assert.Contains(t, out, "not detected", "no vacation in the sample")
	assert.Contains(t, out, "Home candidates")
	assert.Contains(t, out, "3 receipts, 2 locations, 0 skipped")
}

func TestWriteDetection_NoCandidates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDetection(&buf, sampleRun(t), 0))
	assert.NotContains(t, buf.String(), "candidates")
}

func TestWriteRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRuns(&buf, nil))
	assert.Contains(t, buf.String(), "No saved detection runs")

	buf.Reset()
	runs := []model.DetectionRun{{
		ID:           "0123456789abcdef",
		CreatedAt:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		HomeKey:      "48.148600,17.107700",
		ClusterCount: 4,
	}}
	require.NoError(t, WriteRuns(&buf, runs))

	out := buf.String()
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "89abcdef")
	assert.Contains(t, out, "48.148600,17.107700")
	assert.Contains(t, out, "-")
}

func TestWriteSpending(t *testing.T) {
	var buf bytes.Buffer
	summary := spending.Summary{
		{Label: "2023", Total: decimal.RequireFromString("10")},
		{Label: "2024", Total: decimal.RequireFromString("2.5")},
	}
	require.NoError(t, WriteSpending(&buf, "Spending by year", summary))

	out := buf.String()
	assert.Contains(t, out, "Spending by year")
	assert.Contains(t, out, "10.00")
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "12.50")
}

func TestWriteInsights(t *testing.T) {
	home := "Bratislava"
	in := &spending.Insights{
		HomeCity: &home,
		VacationCities: []spending.CityStay{
			{City: "Kosice", Start: "2024-07-05", End: "2024-07-07", WeekdayRange: "Fri-Sun", Days: 3},
		},
		SpendPerStore: []spending.StoreSpend{
			{Store: "Billa", TopCategory: "Groceries", Visits: 3, Spend: amount("18"), AvgPerVisit: amount("6")},
		},
		CategoryShare: []spending.CategoryShare{
			{Category: "Groceries", Spend: amount("18"), Share: 0.75},
		},
		AvgBasket:    amount("11.4"),
		MedianBasket: amount("8"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteInsights(&buf, in))

	out := buf.String()
	for _, want := range []string{"Bratislava", "11.40", "8.00", "Kosice", "3 (Fri-Sun)", "Billa", "18.00", "75.0%"} {
		assert.Contains(t, out, want)
	}
}

func TestWriteInsights_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInsights(&buf, spending.BuildInsights(nil)))

	out := buf.String()
	assert.Contains(t, out, "unknown")
	assert.NotContains(t, out, "Spend per store")
	assert.NotContains(t, out, "Stays away from home")
}

func amount(s string) spending.Amount {
	return spending.Amount{Decimal: decimal.RequireFromString(s)}
}

func TestFormatters(t *testing.T) {
	assert.Contains(t, FormatSuccess("done"), "done")
	assert.Contains(t, FormatError("failed"), "failed")
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatTitle("Atlas"), "Atlas")
	assert.Contains(t, RenderBox("Title", "body"), "body")
	assert.Equal(t, "Vacation", roleTitle(model.RoleVacation))
}

func TestNewProgress(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgress(&buf, 3, "Reading receipts")
	require.NoError(t, bar.Add(3))
	assert.Contains(t, buf.String(), "Reading receipts")
}
