package export

import (
	"fmt"

	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/Veraticus/receipt-atlas/internal/geo"
	"github.com/Veraticus/receipt-atlas/internal/model"
)

// FeatureCollection renders the clusters as GeoJSON point features. Each
// feature's id is the cluster key.
func (r *Result) FeatureCollection() *geojson.FeatureCollection {
	features := make([]*geojson.Feature, 0, len(r.Clusters))
	coords := make([]model.Coordinate, 0, len(r.Clusters))

	for _, c := range r.Clusters {
		coord := model.Coordinate{Lat: c.Lat, Lon: c.Lon}
		coords = append(coords, coord)

		props := map[string]interface{}{
			"store_name":  c.StoreName,
			"total_spend": c.TotalSpend.InexactFloat64(),
			"visit_count": c.VisitCount,
			"visit_days":  len(c.VisitDates),
		}
		if c.Role != "" {
			props["role"] = string(c.Role)
		}

		features = append(features, &geojson.Feature{
			ID:         c.Key,
			Geometry:   geo.Point(coord),
			Properties: props,
		})
	}

	return &geojson.FeatureCollection{
		BBox:     geo.Bounds(coords),
		Features: features,
	}
}

// GeoJSON encodes FeatureCollection.
func (r *Result) GeoJSON() ([]byte, error) {
	data, err := r.FeatureCollection().MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode geojson: %w", err)
	}
	return data, nil
}
