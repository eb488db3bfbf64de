package roles

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/receipt-atlas/internal/geo"
	"github.com/Veraticus/receipt-atlas/internal/model"
)

const kmPerDegree = geo.EarthRadiusKm * math.Pi / 180

var homeCoord = model.Coordinate{Lat: 48.0, Lon: 17.0}

// north returns the coordinate km kilometres due north of homeCoord.
func north(km float64) model.Coordinate {
	return model.Coordinate{Lat: homeCoord.Lat + km/kmPerDegree, Lon: homeCoord.Lon}
}

func clusterAt(c model.Coordinate, count int, spend float64, visits ...model.Visit) *model.LocationCluster {
	return &model.LocationCluster{
		Key:        geo.Key(c, 6),
		Coordinate: c,
		StoreName:  "Store " + geo.Key(c, 3),
		TotalSpend: decimal.NewFromFloat(spend),
		VisitCount: count,
		Visits:     visits,
	}
}

func at(y int, m time.Month, d, hour int) model.Visit {
	return model.Visit{At: time.Date(y, m, d, hour, 0, 0, 0, time.UTC), HasClock: true}
}

func dateOnly(y int, m time.Month, d int) model.Visit {
	return model.Visit{At: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// receiptsAt builds one receipt per timestamp at coordinate c.
func receiptsAt(c model.Coordinate, org, price string, issued ...string) []model.Receipt {
	out := make([]model.Receipt, 0, len(issued))
	for i, ts := range issued {
		out = append(out, model.Receipt{
			ReceiptID: fmt.Sprintf("%s-%d", org, i),
			Latitude:  fmt.Sprintf("%.7f", c.Lat),
			Longitude: fmt.Sprintf("%.7f", c.Lon),
			Price:     price,
			Quantity:  "1",
			IssuedAt:  ts,
			OrgName:   org,
		})
	}
	return out
}
