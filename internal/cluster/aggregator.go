// Package cluster groups raw receipts into location clusters.
package cluster

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/receipt-atlas/internal/geo"
	"github.com/Veraticus/receipt-atlas/internal/model"
)

// DefaultPrecision is the number of decimals coordinates are rounded to
// when building cluster keys (about 0.1 m).
const DefaultPrecision = 6

// Aggregator builds location clusters from receipts.
type Aggregator struct {
	Precision int
}

// NewAggregator creates an aggregator keying clusters at the given precision.
func NewAggregator(precision int) *Aggregator {
	return &Aggregator{Precision: precision}
}

// Set is the immutable output of one aggregation run.
type Set struct {
	clusters []*model.LocationCluster
	index    map[string]int
	records  map[string][]model.Receipt

	// Skipped counts receipts dropped for unusable coordinates.
	Skipped int
}

// accumulator collects one cluster's state before finalization.
type accumulator struct {
	cluster *model.LocationCluster
	days    map[time.Time]*dayVisits
}

// dayVisits is every timestamp seen at a location on one calendar day.
type dayVisits struct {
	clocks map[time.Time]struct{}
	rep    model.Visit
}

// Aggregate groups records by rounded coordinate. Records without finite
// coordinates are skipped. Accumulation and the finalizing sort of visit
// dates are separate passes; no partially built cluster escapes.
func (a *Aggregator) Aggregate(records []model.Receipt) *Set {
	precision := a.Precision
	if precision < 0 {
		precision = DefaultPrecision
	}

	order := make([]string, 0)
	accs := make(map[string]*accumulator)
	raw := make(map[string][]model.Receipt)
	skipped := 0

	for _, r := range records {
		coord, ok := r.Coordinate()
		if !ok {
			skipped++
			slog.Debug("Skipping receipt without usable coordinates",
				"receipt_id", r.ReceiptID,
				"latitude", r.Latitude,
				"longitude", r.Longitude)
			continue
		}

		key := geo.Key(coord, precision)
		acc, seen := accs[key]
		if !seen {
			name := strings.TrimSpace(r.OrgName)
			if name == "" {
				name = model.UnknownStore
			}
			acc = &accumulator{
				cluster: &model.LocationCluster{
					Key:        key,
					Coordinate: coord,
					StoreName:  name,
					TotalSpend: decimal.Zero,
				},
				days: make(map[time.Time]*dayVisits),
			}
			accs[key] = acc
			order = append(order, key)
		}

		acc.cluster.TotalSpend = acc.cluster.TotalSpend.Add(r.Spend())
		acc.cluster.VisitCount++
		if v, ok := r.Visit(); ok {
			acc.addVisit(v)
		} else if strings.TrimSpace(r.IssuedAt) != "" {
			slog.Debug("Ignoring unparseable issue date",
				"receipt_id", r.ReceiptID,
				"issued_at", r.IssuedAt)
		}
		raw[key] = append(raw[key], r)
	}

	set := &Set{
		clusters: make([]*model.LocationCluster, 0, len(order)),
		index:    make(map[string]int, len(order)),
		records:  raw,
		Skipped:  skipped,
	}
	for _, key := range order {
		set.index[key] = len(set.clusters)
		set.clusters = append(set.clusters, accs[key].finalize())
	}

	slog.Debug("Aggregated receipts",
		"records", len(records),
		"clusters", len(set.clusters),
		"skipped", skipped)

	return set
}

// earlierVisit reports whether v should represent its day instead of prev:
// clocked timestamps win over date-only ones, then the earlier one wins.
func earlierVisit(v, prev model.Visit) bool {
	if v.HasClock != prev.HasClock {
		return v.HasClock
	}
	return v.At.Before(prev.At)
}

// addVisit folds v into its calendar day. The day keeps one representative
// visit and remembers every distinct clock time.
func (acc *accumulator) addVisit(v model.Visit) {
	d := v.Day()
	day, ok := acc.days[d]
	if !ok {
		day = &dayVisits{rep: v, clocks: make(map[time.Time]struct{})}
		acc.days[d] = day
	} else if earlierVisit(v, day.rep) {
		day.rep = v
	}
	if v.HasClock {
		day.clocks[v.At] = struct{}{}
	}
}

func (acc *accumulator) finalize() *model.LocationCluster {
	visits := make([]model.Visit, 0, len(acc.days))
	for _, day := range acc.days {
		v := day.rep
		v.Clocks = nil
		if len(day.clocks) > 0 {
			v.Clocks = make([]time.Time, 0, len(day.clocks))
			for t := range day.clocks {
				v.Clocks = append(v.Clocks, t)
			}
			sort.Slice(v.Clocks, func(i, j int) bool {
				return v.Clocks[i].Before(v.Clocks[j])
			})
		}
		visits = append(visits, v)
	}
	sort.Slice(visits, func(i, j int) bool {
		return visits[i].At.Before(visits[j].At)
	})
	acc.cluster.Visits = visits
	return acc.cluster
}

// Clusters returns the clusters in first-seen order. The slice is a copy;
// the clusters themselves are shared and must not be modified.
func (s *Set) Clusters() []*model.LocationCluster {
	out := make([]*model.LocationCluster, len(s.clusters))
	copy(out, s.clusters)
	return out
}

// Len returns the number of clusters.
func (s *Set) Len() int {
	return len(s.clusters)
}

// Get returns the cluster with the given key.
func (s *Set) Get(key string) (*model.LocationCluster, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return s.clusters[i], true
}

// Records returns a copy of the receipts that contributed to the cluster key.
func (s *Set) Records(key string) []model.Receipt {
	src := s.records[key]
	out := make([]model.Receipt, len(src))
	copy(out, src)
	return out
}

// TotalSpend sums spend across every cluster.
func (s *Set) TotalSpend() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.clusters {
		total = total.Add(c.TotalSpend)
	}
	return total
}
