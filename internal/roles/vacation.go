package roles

import (
	"math"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

// VacationScorer ranks distant clusters visited over at least two days that
// show weekend concentration or elevated spend per visit.
type VacationScorer struct {
	Params Params
}

// Role implements Scorer.
func (s *VacationScorer) Role() model.Role { return model.RoleVacation }

// Score implements Scorer. Without a home there are no candidates.
func (s *VacationScorer) Score(clusters []*model.LocationCluster, detected *model.DetectionResult) []model.ScoredCandidate {
	if detected == nil || detected.Home == nil {
		return nil
	}

	candidates := make([]model.ScoredCandidate, 0)
	for _, c := range clusters {
		if detected.Excludes(c.Key) || !s.Qualifies(c, detected.Home) {
			continue
		}
		candidates = append(candidates, model.ScoredCandidate{
			Cluster: c,
			Role:    model.RoleVacation,
			Score:   s.VacationScore(c),
		})
	}
	return rank(candidates)
}

// Qualifies applies the vacation gate relative to home.
func (s *VacationScorer) Qualifies(c, home *model.LocationCluster) bool {
	if len(c.Visits) == 0 {
		return false
	}
	if c.SpanDays() < s.Params.VacationMinSpanDays {
		return false
	}
	if s.Params.distance(home, c) <= s.Params.VacationMinDistanceKm {
		return false
	}
	return c.WeekendRatio() >= s.Params.VacationWeekendRatio ||
		c.AverageSpend() > s.Params.VacationSpendThreshold
}

// VacationScore weighs total spend, weekend concentration, average spend
// and a preference for short stays.
func (s *VacationScorer) VacationScore(c *model.LocationCluster) float64 {
	p := s.Params

	weekendBonus := p.VacationLowWeekendBonus
	if c.WeekendRatio() > p.VacationHighWeekendRatio {
		weekendBonus = p.VacationHighWeekendBonus
	}

	return c.Spend()*p.VacationSpendWeight +
		weekendBonus +
		math.Min(c.AverageSpend()/p.VacationAvgSpendScale, 1)*p.VacationAvgSpendWeight +
		(1/float64(c.SpanDays()+1))*p.VacationSpanWeight
}
