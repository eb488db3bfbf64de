// Package roles scores location clusters and assigns the Home, Work and
// Vacation roles.
package roles

import (
	"errors"
	"fmt"

	"github.com/Veraticus/receipt-atlas/internal/cluster"
	"github.com/Veraticus/receipt-atlas/internal/geo"
	"github.com/Veraticus/receipt-atlas/internal/model"
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid inference parameters")

// Params holds every threshold and weight used by aggregation and scoring.
type Params struct {
	CoordinatePrecision int     `json:"coordinate_precision" mapstructure:"coordinate_precision"`
	EarthRadiusKm       float64 `json:"earth_radius_km" mapstructure:"earth_radius_km"`

	HomeVisitWeight float64 `json:"home_visit_weight" mapstructure:"home_visit_weight"`
	HomeSpendWeight float64 `json:"home_spend_weight" mapstructure:"home_spend_weight"`

	WorkMinDistanceKm float64 `json:"work_min_distance_km" mapstructure:"work_min_distance_km"`
	WorkMaxDistanceKm float64 `json:"work_max_distance_km" mapstructure:"work_max_distance_km"`
	WorkStartHour     int     `json:"work_start_hour" mapstructure:"work_start_hour"`
	WorkEndHour       int     `json:"work_end_hour" mapstructure:"work_end_hour"`
	WorkVisitWeight   float64 `json:"work_visit_weight" mapstructure:"work_visit_weight"`
	WorkHourWeight    float64 `json:"work_hour_weight" mapstructure:"work_hour_weight"`
	WorkWeekWeight    float64 `json:"work_week_weight" mapstructure:"work_week_weight"`

	VacationMinDistanceKm    float64 `json:"vacation_min_distance_km" mapstructure:"vacation_min_distance_km"`
	VacationWeekendRatio     float64 `json:"vacation_weekend_ratio" mapstructure:"vacation_weekend_ratio"`
	VacationSpendThreshold   float64 `json:"vacation_spend_threshold" mapstructure:"vacation_spend_threshold"`
	VacationMinSpanDays      int     `json:"vacation_min_span_days" mapstructure:"vacation_min_span_days"`
	VacationSpendWeight      float64 `json:"vacation_spend_weight" mapstructure:"vacation_spend_weight"`
	VacationHighWeekendRatio float64 `json:"vacation_high_weekend_ratio" mapstructure:"vacation_high_weekend_ratio"`
	VacationHighWeekendBonus float64 `json:"vacation_high_weekend_bonus" mapstructure:"vacation_high_weekend_bonus"`
	VacationLowWeekendBonus  float64 `json:"vacation_low_weekend_bonus" mapstructure:"vacation_low_weekend_bonus"`
	VacationAvgSpendScale    float64 `json:"vacation_avg_spend_scale" mapstructure:"vacation_avg_spend_scale"`
	VacationAvgSpendWeight   float64 `json:"vacation_avg_spend_weight" mapstructure:"vacation_avg_spend_weight"`
	VacationSpanWeight       float64 `json:"vacation_span_weight" mapstructure:"vacation_span_weight"`
}

// DefaultParams returns the stock thresholds and weights.
func DefaultParams() Params {
	return Params{
		CoordinatePrecision: cluster.DefaultPrecision,
		EarthRadiusKm:       geo.EarthRadiusKm,

		HomeVisitWeight: 0.7,
		HomeSpendWeight: 0.0003,

		WorkMinDistanceKm: 0.5,
		WorkMaxDistanceKm: 30,
		WorkStartHour:     8,
		WorkEndHour:       18,
		WorkVisitWeight:   0.4,
		WorkHourWeight:    0.3,
		WorkWeekWeight:    0.3,

		VacationMinDistanceKm:    20,
		VacationWeekendRatio:     0.4,
		VacationSpendThreshold:   25,
		VacationMinSpanDays:      1,
		VacationSpendWeight:      0.45,
		VacationHighWeekendRatio: 0.5,
		VacationHighWeekendBonus: 0.3,
		VacationLowWeekendBonus:  0.15,
		VacationAvgSpendScale:    80,
		VacationAvgSpendWeight:   0.2,
		VacationSpanWeight:       0.05,
	}
}

// Validate checks that the parameters describe a usable configuration.
func (p Params) Validate() error {
	switch {
	case p.CoordinatePrecision < 0:
		return fmt.Errorf("%w: coordinate precision %d is negative", ErrInvalidParams, p.CoordinatePrecision)
	case p.EarthRadiusKm <= 0:
		return fmt.Errorf("%w: earth radius must be positive", ErrInvalidParams)
	case p.WorkMinDistanceKm < 0 || p.WorkMaxDistanceKm <= p.WorkMinDistanceKm:
		return fmt.Errorf("%w: work distance band %.2f-%.2f km", ErrInvalidParams, p.WorkMinDistanceKm, p.WorkMaxDistanceKm)
	case p.WorkStartHour < 0 || p.WorkEndHour > 23 || p.WorkEndHour < p.WorkStartHour:
		return fmt.Errorf("%w: work hours %d-%d", ErrInvalidParams, p.WorkStartHour, p.WorkEndHour)
	case p.VacationMinDistanceKm < 0:
		return fmt.Errorf("%w: vacation distance is negative", ErrInvalidParams)
	case p.VacationWeekendRatio < 0 || p.VacationWeekendRatio > 1:
		return fmt.Errorf("%w: vacation weekend ratio %.2f outside [0,1]", ErrInvalidParams, p.VacationWeekendRatio)
	case p.VacationMinSpanDays < 0:
		return fmt.Errorf("%w: vacation span is negative", ErrInvalidParams)
	case p.VacationAvgSpendScale <= 0:
		return fmt.Errorf("%w: vacation average spend scale must be positive", ErrInvalidParams)
	}
	return nil
}

func (p Params) distance(a, b *model.LocationCluster) float64 {
	return geo.Distance(a.Coordinate, b.Coordinate, p.EarthRadiusKm)
}
