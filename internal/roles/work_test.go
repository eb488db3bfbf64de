package roles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/receipt-atlas/internal/cluster"
	"github.com/Veraticus/receipt-atlas/internal/geo"
	"github.com/Veraticus/receipt-atlas/internal/model"
)

func TestWorkScorer_NoHome(t *testing.T) {
	s := &WorkScorer{Params: DefaultParams()}
	clusters := []*model.LocationCluster{clusterAt(north(5), 3, 10)}

	assert.Empty(t, s.Score(clusters, &model.DetectionResult{}))
	assert.Empty(t, s.Score(clusters, nil))
}

func TestWorkScorer_DistanceBand(t *testing.T) {
	p := DefaultParams()
	home := clusterAt(homeCoord, 20, 100)

	tests := []struct {
		name   string
		km     float64
		wantIn bool
	}{
		{name: "too close", km: 0.2, wantIn: false},
		{name: "inside band", km: 5, wantIn: true},
		{name: "near upper bound", km: 29.9, wantIn: true},
		{name: "too far", km: 45, wantIn: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := clusterAt(north(tt.km), 2, 10)
			s := &WorkScorer{Params: p}
			got := s.Score([]*model.LocationCluster{home, c}, &model.DetectionResult{Home: home})
			if tt.wantIn {
				require.Len(t, got, 1)
				assert.Equal(t, c.Key, got[0].Cluster.Key)
				assert.Equal(t, model.RoleWork, got[0].Role)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestWorkScorer_BoundaryIsExclusive(t *testing.T) {
	home := clusterAt(homeCoord, 20, 100)
	c := clusterAt(north(0.5), 5, 10)

	p := DefaultParams()
	exact := geo.Distance(home.Coordinate, c.Coordinate, p.EarthRadiusKm)
	require.InDelta(t, 0.5, exact, 1e-6)

	p.WorkMinDistanceKm = exact
	got := (&WorkScorer{Params: p}).Score([]*model.LocationCluster{home, c}, &model.DetectionResult{Home: home})
	assert.Empty(t, got, "a cluster exactly at the lower bound is not a work candidate")

	p.WorkMinDistanceKm = 0
	p.WorkMaxDistanceKm = exact
	got = (&WorkScorer{Params: p}).Score([]*model.LocationCluster{home, c}, &model.DetectionResult{Home: home})
	assert.Empty(t, got, "a cluster exactly at the upper bound is not a work candidate")
}

func TestWorkScorer_ExcludesAssignedClusters(t *testing.T) {
	home := clusterAt(homeCoord, 20, 100)
	taken := clusterAt(north(4), 5, 10)
	free := clusterAt(north(6), 1, 1)

	detected := &model.DetectionResult{Home: home, Vacation: taken}
	got := (&WorkScorer{Params: DefaultParams()}).Score([]*model.LocationCluster{home, taken, free}, detected)

	require.Len(t, got, 1)
	assert.Equal(t, free.Key, got[0].Cluster.Key)
}

func TestWorkScorer_WorkHours(t *testing.T) {
	s := &WorkScorer{Params: DefaultParams()}

	// 2024-06-03 is a Monday.
	c := clusterAt(north(5), 8, 0,
		at(2024, time.June, 3, 8),  // Monday at start of window
		at(2024, time.June, 4, 18), // Tuesday at end of window
		at(2024, time.June, 5, 7),  // before window
		at(2024, time.June, 6, 19), // after window
		at(2024, time.June, 7, 12), // Friday midday
		at(2024, time.June, 8, 12), // Saturday
		at(2024, time.June, 9, 12), // Sunday
		dateOnly(2024, time.June, 10),
	)

	assert.Equal(t, 3, s.WorkHours(c))
}

func TestWorkScorer_WorkHoursChecksEveryClockOfTheDay(t *testing.T) {
	s := &WorkScorer{Params: DefaultParams()}

	// 2024-05-06 is a Monday.
	office := north(5)
	records := receiptsAt(homeCoord, "Home Market", "10",
		"2024-05-06 19:00:00", "2024-05-07 19:00:00", "2024-05-08 19:00:00")
	records = append(records, receiptsAt(office, "Office Cafe", "4",
		"2024-05-06 07:45:00", "2024-05-06 12:00:00",
		"2024-05-07 07:45:00", "2024-05-07 12:00:00",
		"2024-05-08 07:45:00", "2024-05-08 12:00:00")...)

	set := cluster.NewAggregator(cluster.DefaultPrecision).Aggregate(records)
	c, ok := set.Get(geo.Key(office, cluster.DefaultPrecision))
	require.True(t, ok)
	require.Len(t, c.Visits, 3)
	assert.Equal(t, 7, c.Visits[0].At.Hour(), "earliest clock still represents the day")

	assert.Equal(t, 3, s.WorkHours(c))

	tests := []struct {
		name  string
		visit model.Visit
		want  int
	}{
		{
			name: "one in-window clock among several counts once",
			visit: model.Visit{
				At:       time.Date(2024, 5, 6, 7, 45, 0, 0, time.UTC),
				HasClock: true,
				Clocks: []time.Time{
					time.Date(2024, 5, 6, 7, 45, 0, 0, time.UTC),
					time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC),
					time.Date(2024, 5, 6, 15, 0, 0, 0, time.UTC),
				},
			},
			want: 1,
		},
		{
			name: "all clocks outside window",
			visit: model.Visit{
				At:       time.Date(2024, 5, 6, 6, 0, 0, 0, time.UTC),
				HasClock: true,
				Clocks: []time.Time{
					time.Date(2024, 5, 6, 6, 0, 0, 0, time.UTC),
					time.Date(2024, 5, 6, 20, 0, 0, 0, time.UTC),
				},
			},
			want: 0,
		},
		{
			name: "weekend day with in-window clock",
			visit: model.Visit{
				At:       time.Date(2024, 5, 11, 12, 0, 0, 0, time.UTC),
				HasClock: true,
				Clocks:   []time.Time{time.Date(2024, 5, 11, 12, 0, 0, 0, time.UTC)},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.WorkHours(clusterAt(office, 1, 0, tt.visit)))
		})
	}
}

func TestDistinctWeeks(t *testing.T) {
	tests := []struct {
		name   string
		visits []model.Visit
		want   int
	}{
		{name: "none", want: 0},
		{
			name:   "same bucket",
			visits: []model.Visit{dateOnly(2024, time.June, 1), dateOnly(2024, time.June, 7)},
			want:   1,
		},
		{
			name:   "bucket edge",
			visits: []model.Visit{dateOnly(2024, time.June, 7), dateOnly(2024, time.June, 8)},
			want:   2,
		},
		{
			name:   "same week of month in different months collapses",
			visits: []model.Visit{dateOnly(2024, time.June, 3), dateOnly(2024, time.July, 3)},
			want:   1,
		},
		{
			name:   "different years",
			visits: []model.Visit{dateOnly(2023, time.June, 3), dateOnly(2024, time.June, 3)},
			want:   2,
		},
		{
			name: "fifth bucket",
			visits: []model.Visit{
				dateOnly(2024, time.January, 29),
				dateOnly(2024, time.January, 31),
				dateOnly(2024, time.January, 22),
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DistinctWeeks(&model.LocationCluster{Visits: tt.visits}))
		})
	}
}

func TestWorkScorer_Ranking(t *testing.T) {
	s := &WorkScorer{Params: DefaultParams()}
	home := clusterAt(homeCoord, 30, 100)

	office := clusterAt(north(8), 4, 40,
		at(2024, time.June, 3, 9),
		at(2024, time.June, 10, 9),
		at(2024, time.June, 17, 9),
		at(2024, time.June, 24, 9),
	)
	gym := clusterAt(north(3), 5, 60,
		at(2024, time.June, 1, 20),
		at(2024, time.June, 2, 20),
		at(2024, time.June, 3, 21),
		at(2024, time.June, 4, 21),
		at(2024, time.June, 5, 21),
	)

	got := s.Score([]*model.LocationCluster{home, gym, office}, &model.DetectionResult{Home: home})

	require.Len(t, got, 2)
	assert.Equal(t, office.Key, got[0].Cluster.Key)
	assert.InDelta(t, 4*0.4+4*0.3+4*0.3, got[0].Score, 1e-9)
	assert.Equal(t, gym.Key, got[1].Cluster.Key)
	assert.InDelta(t, 5*0.4+0*0.3+1*0.3, got[1].Score, 1e-9)
}
