package spending

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

// MinStayDays is the shortest run of consecutive days away from the home
// city reported as a stay.
const MinStayDays = 2

const unknownCategory = "Unknown"

// Amount is a decimal that encodes as a JSON number rounded to cents.
type Amount struct {
	decimal.Decimal
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

// StoreSpend summarizes one store after legal suffixes are stripped and
// near-identical names are merged.
type StoreSpend struct {
	Store        string `json:"org_name"`
	TopCategory  string `json:"top_category"`
	Spend        Amount `json:"spend"`
	AvgPerVisit  Amount `json:"avg_spend_per_visit"`
	AvgPerMonth  Amount `json:"avg_spend_per_month"`
	Visits       int    `json:"visit_count"`
	MonthsActive int    `json:"months_active"`
}

// CategoryShare is the spend of one category and its share of all spend.
type CategoryShare struct {
	Category string  `json:"category"`
	Spend    Amount  `json:"spend"`
	Share    float64 `json:"share"`
}

// CityStay is the longest run of consecutive days with receipts from a
// city other than the home city.
type CityStay struct {
	City         string `json:"city"`
	Start        string `json:"start_date"`
	End          string `json:"end_date"`
	WeekdayRange string `json:"weekday_range"`
	Days         int    `json:"consecutive_days"`
}

// Insights is the spending dashboard: where money goes, typical basket
// size, and which cities look like trips.
type Insights struct {
	HomeCity       *string         `json:"home_city"`
	VacationCities []CityStay      `json:"vacation_cities"`
	SpendPerStore  []StoreSpend    `json:"spend_per_store"`
	CategoryShare  []CategoryShare `json:"category_share"`
	AvgBasket      Amount          `json:"avg_basket"`
	MedianBasket   Amount          `json:"median_basket"`
}

// BuildInsights derives the dashboard from the receipt lines.
func BuildInsights(records []model.Receipt) *Insights {
	avg, median := basketStats(records)
	home, hasHome := homeCity(records)

	in := &Insights{
		VacationCities: []CityStay{},
		SpendPerStore:  storeSpend(records),
		CategoryShare:  categoryShare(records),
		AvgBasket:      Amount{avg},
		MedianBasket:   Amount{median},
	}
	if hasHome {
		in.HomeCity = &home
		in.VacationCities = cityStays(records, home)
	}
	return in
}

var legalSuffix = regexp.MustCompile(`(?i)[,\s]+(spol\.\s*s\s*r\.\s*o\.?|s\.\s*r\.\s*o\.?|v\.\s*o\.\s*s\.?|a\.\s*s\.?|slovensk[áa] republika|slovakia|sr|inc\.?|ltd\.?|gmbh)\s*$`)

var spaces = regexp.MustCompile(`\s+`)

// NormalizeStore strips trailing legal-form suffixes and country names and
// collapses whitespace. An empty name becomes model.UnknownStore.
func NormalizeStore(name string) string {
	name = spaces.ReplaceAllString(strings.TrimSpace(name), " ")
	for {
		stripped := legalSuffix.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = stripped
	}
	name = strings.TrimSpace(strings.TrimRight(name, ", "))
	if name == "" {
		return model.UnknownStore
	}
	return name
}

// storeGroups maps each normalized store name to the first-seen name that
// contains it or is contained by it, case-insensitively.
func storeGroups(records []model.Receipt) map[string]string {
	groups := make(map[string]string)
	var canon []string
	for _, r := range records {
		name := NormalizeStore(r.OrgName)
		if _, ok := groups[name]; ok {
			continue
		}
		groups[name] = name
		lower := strings.ToLower(name)
		for _, c := range canon {
			lc := strings.ToLower(c)
			if strings.Contains(lc, lower) || strings.Contains(lower, lc) {
				groups[name] = c
				break
			}
		}
		if groups[name] == name {
			canon = append(canon, name)
		}
	}
	return groups
}

func storeSpend(records []model.Receipt) []StoreSpend {
	type acc struct {
		spend      decimal.Decimal
		receipts   map[string]struct{}
		months     map[string]decimal.Decimal
		categories map[string]int
		catOrder   []string
	}

	groups := storeGroups(records)
	stores := make(map[string]*acc)
	for _, r := range records {
		name := groups[NormalizeStore(r.OrgName)]
		a, ok := stores[name]
		if !ok {
			a = &acc{
				spend:      decimal.Zero,
				receipts:   make(map[string]struct{}),
				months:     make(map[string]decimal.Decimal),
				categories: make(map[string]int),
			}
			stores[name] = a
		}

		spend := r.Spend()
		a.spend = a.spend.Add(spend)
		if id := strings.TrimSpace(r.ReceiptID); id != "" {
			a.receipts[id] = struct{}{}
		}
		if day, ok := issueDay(r); ok {
			month := day.Format("2006-01")
			a.months[month] = a.months[month].Add(spend)
		}
		if cat := strings.TrimSpace(r.Category); cat != "" {
			if a.categories[cat] == 0 {
				a.catOrder = append(a.catOrder, cat)
			}
			a.categories[cat]++
		}
	}

	out := make([]StoreSpend, 0, len(stores))
	for name, a := range stores {
		s := StoreSpend{
			Store:        name,
			TopCategory:  unknownCategory,
			Spend:        Amount{a.spend},
			Visits:       len(a.receipts),
			MonthsActive: len(a.months),
		}
		best := 0
		for _, cat := range a.catOrder {
			if a.categories[cat] > best {
				best = a.categories[cat]
				s.TopCategory = cat
			}
		}
		if s.Visits > 0 {
			s.AvgPerVisit = Amount{a.spend.Div(decimal.NewFromInt(int64(s.Visits)))}
		}
		if s.MonthsActive > 0 {
			total := decimal.Zero
			for _, m := range a.months {
				total = total.Add(m)
			}
			s.AvgPerMonth = Amount{total.Div(decimal.NewFromInt(int64(s.MonthsActive)))}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Store < out[j].Store })
	return out
}

// categoryShare totals spend per category, largest first. Lines without a
// category are left out.
func categoryShare(records []model.Receipt) []CategoryShare {
	totals := make(map[string]decimal.Decimal)
	all := decimal.Zero
	for _, r := range records {
		cat := strings.TrimSpace(r.Category)
		if cat == "" {
			continue
		}
		spend := r.Spend()
		totals[cat] = totals[cat].Add(spend)
		all = all.Add(spend)
	}

	out := make([]CategoryShare, 0, len(totals))
	for cat, spend := range totals {
		share := 0.0
		if !all.IsZero() {
			share = spend.Div(all).Round(4).InexactFloat64()
		}
		out = append(out, CategoryShare{Category: cat, Spend: Amount{spend}, Share: share})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Spend.Cmp(out[j].Spend.Decimal); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// basketStats returns the mean and median spend per receipt id. Lines
// without a receipt id belong to no basket.
func basketStats(records []model.Receipt) (decimal.Decimal, decimal.Decimal) {
	baskets := make(map[string]decimal.Decimal)
	for _, r := range records {
		id := strings.TrimSpace(r.ReceiptID)
		if id == "" {
			continue
		}
		baskets[id] = baskets[id].Add(r.Spend())
	}
	if len(baskets) == 0 {
		return decimal.Zero, decimal.Zero
	}

	totals := make([]decimal.Decimal, 0, len(baskets))
	sum := decimal.Zero
	for _, t := range baskets {
		totals = append(totals, t)
		sum = sum.Add(t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].LessThan(totals[j]) })

	n := len(totals)
	median := totals[n/2]
	if n%2 == 0 {
		median = totals[n/2-1].Add(totals[n/2]).Div(decimal.NewFromInt(2))
	}
	return sum.Div(decimal.NewFromInt(int64(n))), median
}

// homeCity is the most frequent non-empty city, alphabetically first on
// ties.
func homeCity(records []model.Receipt) (string, bool) {
	counts := make(map[string]int)
	for _, r := range records {
		if city := strings.TrimSpace(r.City); city != "" {
			counts[city]++
		}
	}

	best, bestN := "", 0
	for city, n := range counts {
		if n > bestN || (n == bestN && city < best) {
			best, bestN = city, n
		}
	}
	return best, bestN > 0
}

// cityStays finds, for every city other than home, its longest run of
// consecutive receipt days. Runs shorter than MinStayDays are dropped.
// Longer stays come first, then cities by name.
func cityStays(records []model.Receipt, home string) []CityStay {
	days := make(map[string]map[time.Time]struct{})
	for _, r := range records {
		city := strings.TrimSpace(r.City)
		if city == "" || city == home {
			continue
		}
		v, ok := r.Visit()
		if !ok {
			continue
		}
		if days[city] == nil {
			days[city] = make(map[time.Time]struct{})
		}
		days[city][v.Day()] = struct{}{}
	}

	out := make([]CityStay, 0)
	for city, set := range days {
		start, end, n := longestRun(set)
		if n < MinStayDays {
			continue
		}
		out = append(out, CityStay{
			City:         city,
			Start:        start.Format(dateLayout),
			End:          end.Format(dateLayout),
			WeekdayRange: start.Format("Mon") + "-" + end.Format("Mon"),
			Days:         n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Days != out[j].Days {
			return out[i].Days > out[j].Days
		}
		return out[i].City < out[j].City
	})
	return out
}

// longestRun returns the earliest longest run of consecutive days.
func longestRun(set map[time.Time]struct{}) (time.Time, time.Time, int) {
	sorted := make([]time.Time, 0, len(set))
	for d := range set {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	if len(sorted) == 0 {
		return time.Time{}, time.Time{}, 0
	}

	bestStart, bestEnd, best := sorted[0], sorted[0], 1
	curStart, cur := sorted[0], 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == 24*time.Hour {
			cur++
		} else {
			curStart, cur = sorted[i], 1
		}
		if cur > best {
			bestStart, bestEnd, best = curStart, sorted[i], cur
		}
	}
	return bestStart, bestEnd, best
}
