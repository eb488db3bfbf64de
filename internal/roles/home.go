package roles

import "github.com/Veraticus/receipt-atlas/internal/model"

// HomeScorer ranks clusters by visit frequency with spend as a minor signal.
type HomeScorer struct {
	Params Params
}

// Role implements Scorer.
func (s *HomeScorer) Role() model.Role { return model.RoleHome }

// Score implements Scorer.
func (s *HomeScorer) Score(clusters []*model.LocationCluster, detected *model.DetectionResult) []model.ScoredCandidate {
	candidates := make([]model.ScoredCandidate, 0, len(clusters))
	for _, c := range clusters {
		if detected != nil && detected.Excludes(c.Key) {
			continue
		}
		candidates = append(candidates, model.ScoredCandidate{
			Cluster: c,
			Role:    model.RoleHome,
			Score:   s.HomeScore(c),
		})
	}
	return rank(candidates)
}

// HomeScore is visitCount × HomeVisitWeight + totalSpend × HomeSpendWeight.
func (s *HomeScorer) HomeScore(c *model.LocationCluster) float64 {
	return float64(c.VisitCount)*s.Params.HomeVisitWeight + c.Spend()*s.Params.HomeSpendWeight
}
