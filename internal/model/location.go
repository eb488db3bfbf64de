package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownStore is used when the first record of a cluster carries no store name.
const UnknownStore = "Unknown"

// Coordinate is a WGS 84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Visit is one distinct calendar day on which a location was visited.
type Visit struct {
	At       time.Time   // wall clock, always UTC-located
	Clocks   []time.Time // every distinct clocked timestamp of the day, ascending
	HasClock bool        // false for date-only source timestamps
}

// ClockTimes returns the clocked timestamps seen on the visit's day. A
// clocked visit built without Clocks reports At alone.
func (v Visit) ClockTimes() []time.Time {
	if len(v.Clocks) > 0 {
		return v.Clocks
	}
	if v.HasClock {
		return []time.Time{v.At}
	}
	return nil
}

// Day returns the visit's calendar date at midnight.
func (v Visit) Day() time.Time {
	return time.Date(v.At.Year(), v.At.Month(), v.At.Day(), 0, 0, 0, 0, time.UTC)
}

// LocationCluster aggregates every receipt issued at one physical location.
// Clusters are built by the aggregator and are read-only afterwards.
type LocationCluster struct {
	Key        string
	Coordinate Coordinate
	StoreName  string
	TotalSpend decimal.Decimal
	VisitCount int
	Visits     []Visit // ascending, one per calendar day
}

// Spend returns the total spend as a float for scoring.
func (c *LocationCluster) Spend() float64 {
	return c.TotalSpend.InexactFloat64()
}

// AverageSpend returns spend per visit. Aggregation never produces a
// cluster without records, but a zero count still yields zero.
func (c *LocationCluster) AverageSpend() float64 {
	if c.VisitCount < 1 {
		return 0
	}
	return c.Spend() / float64(c.VisitCount)
}

// SpanDays is the number of whole calendar days between the first and
// last visit. It is zero for fewer than two visits.
func (c *LocationCluster) SpanDays() int {
	if len(c.Visits) < 2 {
		return 0
	}
	first := c.Visits[0].Day()
	last := c.Visits[len(c.Visits)-1].Day()
	return int(last.Sub(first).Hours() / 24)
}

// WeekendRatio is the share of visit days falling on Saturday or Sunday.
func (c *LocationCluster) WeekendRatio() float64 {
	if len(c.Visits) == 0 {
		return 0
	}
	weekend := 0
	for _, v := range c.Visits {
		if d := v.At.Weekday(); d == time.Saturday || d == time.Sunday {
			weekend++
		}
	}
	return float64(weekend) / float64(len(c.Visits))
}
