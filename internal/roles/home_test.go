package roles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/receipt-atlas/internal/model"
)

func TestHomeScorer_Score(t *testing.T) {
	s := &HomeScorer{Params: DefaultParams()}

	frequent := clusterAt(north(0), 10, 50)
	expensive := clusterAt(north(3), 2, 10000)
	rare := clusterAt(north(6), 1, 5)

	got := s.Score([]*model.LocationCluster{rare, expensive, frequent}, &model.DetectionResult{})

	require.Len(t, got, 3)
	assert.Equal(t, frequent.Key, got[0].Cluster.Key)
	assert.InDelta(t, 10*0.7+50*0.0003, got[0].Score, 1e-9)
	assert.Equal(t, expensive.Key, got[1].Cluster.Key)
	assert.InDelta(t, 2*0.7+10000*0.0003, got[1].Score, 1e-9)
	assert.Equal(t, rare.Key, got[2].Cluster.Key)
	for _, c := range got {
		assert.Equal(t, model.RoleHome, c.Role)
	}
}

func TestHomeScorer_Empty(t *testing.T) {
	s := &HomeScorer{Params: DefaultParams()}
	assert.Empty(t, s.Score(nil, &model.DetectionResult{}))
}

func TestHomeScorer_TiesBrokenByKey(t *testing.T) {
	s := &HomeScorer{Params: DefaultParams()}
	a := clusterAt(north(1), 3, 10, dateOnly(2024, time.January, 1))
	b := clusterAt(north(2), 3, 10)

	forward := s.Score([]*model.LocationCluster{a, b}, nil)
	backward := s.Score([]*model.LocationCluster{b, a}, nil)

	require.Len(t, forward, 2)
	assert.Equal(t, forward[0].Cluster.Key, backward[0].Cluster.Key)
	assert.Less(t, forward[0].Cluster.Key, forward[1].Cluster.Key)
}

func TestHomeScorer_Dominance(t *testing.T) {
	s := &HomeScorer{Params: DefaultParams()}
	clusters := []*model.LocationCluster{
		clusterAt(north(0), 4, 120.5),
		clusterAt(north(1), 7, 3),
		clusterAt(north(2), 7, 2.99),
		clusterAt(north(3), 1, 40000),
		clusterAt(north(4), 6, 1500),
	}

	got := s.Score(clusters, nil)
	require.NotEmpty(t, got)
	top := s.HomeScore(got[0].Cluster)
	for _, c := range clusters {
		assert.GreaterOrEqual(t, top, s.HomeScore(c))
	}
}
