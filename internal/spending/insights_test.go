package spending

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

func line(id, org, category, city, issuedAt, price, quantity string) model.Receipt {
	return model.Receipt{
		ReceiptID: id,
		OrgName:   org,
		Category:  category,
		City:      city,
		IssuedAt:  issuedAt,
		Price:     price,
		Quantity:  quantity,
	}
}

// insightReceipts spends most days in Bratislava, with a three-day trip to
// Kosice and a one-day stop in Nitra.
func insightReceipts() []model.Receipt {
	return []model.Receipt{
		line("R1", "TESCO STORES SR, a.s.", "Groceries", "Bratislava", "2024-05-06 18:00:00", "10", "2"),
		line("R1", "TESCO STORES SR, a.s.", "Drinks", "Bratislava", "2024-05-06 18:00:00", "4", "1"),
		line("R2", "Tesco Stores", "Groceries", "Bratislava", "2024-06-10 18:00:00", "6", "1"),
		line("R3", "Billa s.r.o.", "Groceries", "Bratislava", "2024-05-07", "12", "1"),
		line("R4", "Cafe Kosice", "Food", "Kosice", "2024-07-05 10:00:00", "8", "1"),
		line("R5", "Cafe Kosice", "Food", "Kosice", "2024-07-06 10:00:00", "8", "1"),
		line("R6", "Cafe Kosice", "Food", "Kosice", "2024-07-07 10:00:00+02:00", "8", "1"),
		line("R7", "Cafe Kosice", "Food", "Kosice", "2024-07-20 10:00:00", "2", "1"),
		line("R8", "Nitra Fuel", "", "Nitra", "2024-08-01 09:00:00", "40", "1"),
		line("R9", "Billa", "Groceries", "Bratislava", "2024-08-02 09:00:00", "3", "1"),
		line("R10", "Billa", "Groceries", "Bratislava", "2024-08-03 09:00:00", "3", "1"),
	}
}

func TestNormalizeStore(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "limited company", input: "Billa s.r.o.", want: "Billa"},
		{name: "stacked suffixes", input: "TESCO STORES SR, a.s.", want: "TESCO STORES"},
		{name: "country and partnership", input: "Kaufland Slovenská republika v.o.s.", want: "Kaufland"},
		{name: "foreign forms", input: "Lidl GmbH", want: "Lidl"},
		{name: "suffix letters inside words stay", input: "Srnka Stores", want: "Srnka Stores"},
		{name: "whitespace collapsed", input: "  Cafe   Kosice ", want: "Cafe Kosice"},
		{name: "empty", input: "  ", want: model.UnknownStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStore(tt.input))
		})
	}
}

func TestBuildInsights_HomeAndStays(t *testing.T) {
	in := BuildInsights(insightReceipts())

	require.NotNil(t, in.HomeCity)
	assert.Equal(t, "Bratislava", *in.HomeCity)

	require.Len(t, in.VacationCities, 1, "a single day in Nitra is not a stay")
	stay := in.VacationCities[0]
	assert.Equal(t, "Kosice", stay.City)
	assert.Equal(t, 3, stay.Days)
	assert.Equal(t, "2024-07-05", stay.Start)
	assert.Equal(t, "2024-07-07", stay.End)
	assert.Equal(t, "Fri-Sun", stay.WeekdayRange)
}

func TestBuildInsights_SpendPerStore(t *testing.T) {
	in := BuildInsights(insightReceipts())

	names := make([]string, 0, len(in.SpendPerStore))
	for _, s := range in.SpendPerStore {
		names = append(names, s.Store)
	}
	assert.Equal(t, []string{"Billa", "Cafe Kosice", "Nitra Fuel", "TESCO STORES"}, names)

	tesco := in.SpendPerStore[3]
	assert.True(t, dec("30").Equal(tesco.Spend.Decimal), "got %s", tesco.Spend)
	assert.Equal(t, 2, tesco.Visits)
	assert.Equal(t, 2, tesco.MonthsActive)
	assert.Equal(t, "Groceries", tesco.TopCategory)
	assert.True(t, dec("15").Equal(tesco.AvgPerVisit.Decimal))
	assert.True(t, dec("15").Equal(tesco.AvgPerMonth.Decimal))

	assert.Equal(t, "Unknown", in.SpendPerStore[2].TopCategory)
}

func TestBuildInsights_CategoryShare(t *testing.T) {
	in := BuildInsights(insightReceipts())

	require.Len(t, in.CategoryShare, 3)
	assert.Equal(t, "Groceries", in.CategoryShare[0].Category)
	assert.True(t, dec("44").Equal(in.CategoryShare[0].Spend.Decimal))
	assert.Equal(t, "Food", in.CategoryShare[1].Category)
	assert.Equal(t, "Drinks", in.CategoryShare[2].Category)

	total := 0.0
	for _, c := range in.CategoryShare {
		total += c.Share
	}
	assert.InDelta(t, 1.0, total, 1e-3)
}

func TestBuildInsights_Baskets(t *testing.T) {
	in := BuildInsights(insightReceipts())

	// Baskets: 24, 6, 12, 8, 8, 8, 2, 40, 3, 3.
	assert.True(t, dec("11.4").Equal(in.AvgBasket.Decimal), "got %s", in.AvgBasket)
	assert.True(t, dec("8").Equal(in.MedianBasket.Decimal), "got %s", in.MedianBasket)

	odd := BuildInsights([]model.Receipt{
		line("A", "S", "", "", "", "1", "1"),
		line("B", "S", "", "", "", "5", "1"),
		line("C", "S", "", "", "", "9", "1"),
		line("", "S", "", "", "", "100", "1"),
	})
	assert.True(t, dec("5").Equal(odd.MedianBasket.Decimal))
	assert.True(t, dec("5").Equal(odd.AvgBasket.Decimal))
}

func TestBuildInsights_Empty(t *testing.T) {
	in := BuildInsights(nil)

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"home_city": null,
		"vacation_cities": [],
		"spend_per_store": [],
		"category_share": [],
		"avg_basket": 0,
		"median_basket": 0
	}`, string(data))
}

func TestBuildInsights_JSON(t *testing.T) {
	data, err := json.Marshal(BuildInsights(insightReceipts()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Bratislava", decoded["home_city"])
	assert.InDelta(t, 11.4, decoded["avg_basket"], 1e-9)

	stores := decoded["spend_per_store"].([]any)
	first := stores[0].(map[string]any)
	assert.Equal(t, "Billa", first["org_name"])
	assert.InDelta(t, 18.0, first["spend"], 1e-9)
}
