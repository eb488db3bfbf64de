package geo

import (
	"github.com/twpayne/go-geom"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

// SRIDWGS84 is the spatial reference id of longitude/latitude coordinates.
const SRIDWGS84 = 4326

// Point converts c to a go-geom point in (lon, lat) order with SRID 4326.
func Point(c model.Coordinate) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.Lon, c.Lat}).SetSRID(SRIDWGS84)
}

// Bounds returns the bounding box covering coords, or nil when coords is empty.
func Bounds(coords []model.Coordinate) *geom.Bounds {
	if len(coords) == 0 {
		return nil
	}
	b := geom.NewBounds(geom.XY)
	for _, c := range coords {
		b.Extend(Point(c))
	}
	return b
}
