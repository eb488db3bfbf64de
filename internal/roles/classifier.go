package roles

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/receipt-atlas/internal/cluster"
	"github.com/Veraticus/receipt-atlas/internal/model"
)

// ErrNilClusterSet is returned when Classify is called without a cluster set.
var ErrNilClusterSet = errors.New("cluster set is nil")

// Report is the outcome of one classification run.
type Report struct {
	Candidates map[model.Role][]model.ScoredCandidate
	Result     model.DetectionResult
}

// Classifier runs scorers in order, threading the detection built so far
// through each stage. A stage only sees clusters not yet assigned.
type Classifier struct {
	stages []Scorer
}

// NewClassifier builds the Home, Work, Vacation pipeline.
func NewClassifier(p Params) *Classifier {
	return NewClassifierWithScorers(
		&HomeScorer{Params: p},
		&WorkScorer{Params: p},
		&VacationScorer{Params: p},
	)
}

// NewClassifierWithScorers builds a pipeline from custom stages. Stages run
// in the given order.
func NewClassifierWithScorers(stages ...Scorer) *Classifier {
	return &Classifier{stages: stages}
}

// Classify assigns at most one cluster per role. Roles without a
// qualifying candidate stay absent. An error signals misuse, never a
// property of the data.
func (c *Classifier) Classify(set *cluster.Set) (*Report, error) {
	if set == nil {
		return nil, ErrNilClusterSet
	}

	clusters := set.Clusters()
	report := &Report{
		Candidates: make(map[model.Role][]model.ScoredCandidate, len(c.stages)),
	}

	for _, stage := range c.stages {
		role := stage.Role()
		candidates := stage.Score(clusters, &report.Result)
		report.Candidates[role] = candidates

		pick := firstUnassigned(candidates, &report.Result)
		if pick == nil {
			slog.Debug("No candidate for role", "role", role, "candidates", len(candidates))
			continue
		}
		if err := report.Result.Assign(role, pick.Cluster); err != nil {
			return nil, fmt.Errorf("assign %s: %w", role, err)
		}
		slog.Debug("Assigned role",
			"role", role,
			"key", pick.Cluster.Key,
			"store", pick.Cluster.StoreName,
			"score", pick.Score)
	}

	if err := report.Result.Validate(); err != nil {
		return nil, err
	}
	return report, nil
}

// firstUnassigned returns the best candidate whose cluster holds no role yet.
func firstUnassigned(candidates []model.ScoredCandidate, detected *model.DetectionResult) *model.ScoredCandidate {
	for i := range candidates {
		if !detected.Excludes(candidates[i].Cluster.Key) {
			return &candidates[i]
		}
	}
	return nil
}
