package roles

import (
	"time"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

// WorkScorer ranks clusters near home that are visited on weekdays during
// working hours across many weeks.
type WorkScorer struct {
	Params Params
}

// Role implements Scorer.
func (s *WorkScorer) Role() model.Role { return model.RoleWork }

// Score implements Scorer. Without a home there are no candidates.
func (s *WorkScorer) Score(clusters []*model.LocationCluster, detected *model.DetectionResult) []model.ScoredCandidate {
	if detected == nil || detected.Home == nil {
		return nil
	}
	home := detected.Home

	candidates := make([]model.ScoredCandidate, 0)
	for _, c := range clusters {
		if detected.Excludes(c.Key) {
			continue
		}
		d := s.Params.distance(home, c)
		if d <= s.Params.WorkMinDistanceKm || d >= s.Params.WorkMaxDistanceKm {
			continue
		}
		candidates = append(candidates, model.ScoredCandidate{
			Cluster: c,
			Role:    model.RoleWork,
			Score:   s.WorkScore(c),
		})
	}
	return rank(candidates)
}

// WorkScore combines visit count, working-hour visits and distinct weeks.
func (s *WorkScorer) WorkScore(c *model.LocationCluster) float64 {
	return float64(c.VisitCount)*s.Params.WorkVisitWeight +
		float64(s.WorkHours(c))*s.Params.WorkHourWeight +
		float64(DistinctWeeks(c))*s.Params.WorkWeekWeight
}

// WorkHours counts weekday visit days with at least one clocked timestamp
// whose hour lies within the work window, bounds inclusive. Every clock
// time of the day is checked, not only the representative one. Date-only
// visits carry no hour and never count.
func (s *WorkScorer) WorkHours(c *model.LocationCluster) int {
	n := 0
	for _, v := range c.Visits {
		wd := v.At.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for _, t := range v.ClockTimes() {
			if h := t.Hour(); h >= s.Params.WorkStartHour && h <= s.Params.WorkEndHour {
				n++
				break
			}
		}
	}
	return n
}

// DistinctWeeks counts distinct (year, week-of-month) buckets over the
// visits, where week-of-month is (day+6)/7. Months are not part of the
// bucket, so the same week-of-month in different months collapses.
func DistinctWeeks(c *model.LocationCluster) int {
	type bucket struct{ year, week int }
	seen := make(map[bucket]struct{}, len(c.Visits))
	for _, v := range c.Visits {
		seen[bucket{year: v.At.Year(), week: (v.At.Day() + 6) / 7}] = struct{}{}
	}
	return len(seen)
}
