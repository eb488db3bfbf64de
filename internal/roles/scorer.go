package roles

import (
	"sort"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

// Scorer ranks clusters for one role. It receives the detection built by
// earlier pipeline stages and must not return clusters that already hold
// a role.
type Scorer interface {
	Role() model.Role
	Score(clusters []*model.LocationCluster, detected *model.DetectionResult) []model.ScoredCandidate
}

// rank sorts candidates by descending score. Equal scores are ordered by
// cluster key so the ranking never depends on input order.
func rank(candidates []model.ScoredCandidate) []model.ScoredCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Cluster.Key < candidates[j].Cluster.Key
	})
	return candidates
}
