// Package geo provides great-circle distance and coordinate keying.
package geo

import (
	"fmt"
	"math"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// Distance returns the haversine great-circle distance between a and b
// in the unit of radius.
func Distance(a, b model.Coordinate, radius float64) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return radius * c
}

// DistanceKm is Distance on a sphere of EarthRadiusKm.
func DistanceKm(a, b model.Coordinate) float64 {
	return Distance(a, b, EarthRadiusKm)
}

// Key returns the canonical cluster key for c: both coordinates rounded to
// precision decimal places and joined by a comma.
func Key(c model.Coordinate, precision int) string {
	return fmt.Sprintf("%.*f,%.*f", precision, c.Lat, precision, c.Lon)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
