// Package export packages inference output for the presentation layer.
package export

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/receipt-atlas/internal/cluster"
	"github.com/Veraticus/receipt-atlas/internal/model"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// Result is the exported view of one inference run.
type Result struct {
	Detection Detection           `json:"detection"`
	Records   map[string][]Record `json:"records"`
	Clusters  []Cluster           `json:"clusters"`
}

// Cluster is one location as shown on the map.
type Cluster struct {
	Key        string          `json:"key"`
	StoreName  string          `json:"store_name"`
	Role       model.Role      `json:"role,omitempty"`
	TotalSpend decimal.Decimal `json:"total_spend"`
	VisitDates []string        `json:"visit_dates"`
	Lat        float64         `json:"lat"`
	Lon        float64         `json:"lon"`
	VisitCount int             `json:"visit_count"`
}

// Detection holds the cluster key of each detected role, or null.
type Detection struct {
	Home     *string `json:"home"`
	Work     *string `json:"work"`
	Vacation *string `json:"vacation"`
}

// Record is a raw receipt line enriched with its computed spend.
type Record struct {
	ReceiptID string          `json:"receipt_id,omitempty"`
	IssuedAt  string          `json:"issued_at"`
	OrgName   string          `json:"org_name"`
	ItemName  string          `json:"item_name"`
	Category  string          `json:"category"`
	Address   string          `json:"address"`
	City      string          `json:"city"`
	Price     string          `json:"price"`
	Quantity  string          `json:"quantity"`
	Spend     decimal.Decimal `json:"spend"`
}

// Build assembles the export from a cluster set and its detection result.
// Clusters keep the set's first-seen order.
func Build(set *cluster.Set, detection model.DetectionResult) *Result {
	clusters := set.Clusters()
	out := &Result{
		Clusters: make([]Cluster, 0, len(clusters)),
		Records:  make(map[string][]Record, len(clusters)),
		Detection: Detection{
			Home:     keyRef(detection.Home),
			Work:     keyRef(detection.Work),
			Vacation: keyRef(detection.Vacation),
		},
	}

	for _, c := range clusters {
		role, _ := detection.RoleOf(c.Key)
		out.Clusters = append(out.Clusters, Cluster{
			Key:        c.Key,
			Lat:        c.Coordinate.Lat,
			Lon:        c.Coordinate.Lon,
			StoreName:  c.StoreName,
			TotalSpend: c.TotalSpend,
			VisitCount: c.VisitCount,
			VisitDates: visitDates(c.Visits),
			Role:       role,
		})

		raw := set.Records(c.Key)
		records := make([]Record, 0, len(raw))
		for _, r := range raw {
			records = append(records, recordFrom(r))
		}
		out.Records[c.Key] = records
	}

	return out
}

// Cluster returns the exported cluster with the given key.
func (r *Result) Cluster(key string) (Cluster, bool) {
	for _, c := range r.Clusters {
		if c.Key == key {
			return c, true
		}
	}
	return Cluster{}, false
}

func recordFrom(r model.Receipt) Record {
	return Record{
		ReceiptID: r.ReceiptID,
		IssuedAt:  r.IssuedAt,
		OrgName:   r.OrgName,
		ItemName:  r.ItemName,
		Category:  r.Category,
		Address:   r.Address,
		City:      r.City,
		Price:     r.Price,
		Quantity:  r.Quantity,
		Spend:     r.Spend(),
	}
}

func visitDates(visits []model.Visit) []string {
	out := make([]string, 0, len(visits))
	for _, v := range visits {
		if v.HasClock {
			out = append(out, v.At.Format(dateTimeLayout))
		} else {
			out = append(out, v.At.Format(dateLayout))
		}
	}
	return out
}

func keyRef(c *model.LocationCluster) *string {
	if c == nil {
		return nil
	}
	key := c.Key
	return &key
}
