package trending

import (
	"testing"
	"time"

	"nexus/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	d := Today(now).AddDate(0, 0, -n)
	return &d
}

func movie(id int64, avg float64, votes int64, release *time.Time, created time.Time) domain.Movie {
	return domain.Movie{
		ID:          id,
		ExternalID:  id * 10,
		Title:       "movie",
		VoteAverage: avg,
		VoteCount:   votes,
		ReleaseDate: release,
		CreatedAt:   created,
	}
}

func ids(scored []Scored) []int64 {
	out := make([]int64, 0, len(scored))
	for _, s := range scored {
		out = append(out, s.Movie.ID)
	}
	return out
}

func TestDaily_ConcreteExample(t *testing.T) {
	fresh := movie(1, 8.2, 1200, daysAgo(5), now.Add(-12*time.Hour))
	classic := movie(2, 9.0, 20, daysAgo(730), now.AddDate(0, -1, 0))

	assert.InDelta(t, 184.5, Daily.Score(&fresh, now), 1e-9)
	assert.InDelta(t, 18.0, Daily.Score(&classic, now), 1e-9)

	ranked := Daily.Rank([]domain.Movie{classic, fresh}, now, DefaultLimit)
	assert.Equal(t, []int64{1, 2}, ids(ranked))
}

func TestDaily_EligibilityGating(t *testing.T) {
	movies := []domain.Movie{
		movie(1, 9.9, 9, daysAgo(0), now),       // too few votes
		movie(2, 3.9, 5000, daysAgo(0), now),    // rating too low
		movie(3, 4.0, 10, daysAgo(400), now),    // exactly at both gates
		movie(4, 10.0, 100000, daysAgo(1), now), // best everything
	}

	ranked := Daily.Rank(movies, now, DefaultLimit)
	assert.ElementsMatch(t, []int64{3, 4}, ids(ranked))

	for _, m := range movies[:2] {
		assert.False(t, Daily.Eligible(&m))
	}
}

func TestWeekly_EligibilityGating(t *testing.T) {
	movies := []domain.Movie{
		movie(1, 9.0, 49, daysAgo(1), now),
		movie(2, 4.99, 500, daysAgo(1), now),
		movie(3, 5.0, 50, daysAgo(1), now),
	}
	assert.Equal(t, []int64{3}, ids(Weekly.Rank(movies, now, DefaultLimit)))
}

func TestDaily_InclusiveThresholds(t *testing.T) {
	old := now.AddDate(-1, 0, 0)

	tests := []struct {
		name string
		m    domain.Movie
		want float64
	}{
		// 8.0 × recency 1.0 × momentum 1.0 × quality 2.0 × freshness 1.0
		{"quality boundary 8.0", movie(1, 8.0, 10, daysAgo(400), old), 16.0},
		{"quality just below 8.0", movie(1, 7.5, 10, daysAgo(400), old), 7.5 * 1.5},
		{"quality below 5.0 uses default", movie(1, 4.5, 10, daysAgo(400), old), 4.5 * 0.5},
		{"recency boundary 7 days", movie(1, 5.0, 10, daysAgo(7), old), 5.0 * 3.0},
		{"recency 8 days", movie(1, 5.0, 10, daysAgo(8), old), 5.0 * 2.0},
		{"recency boundary 90 days", movie(1, 5.0, 10, daysAgo(90), old), 5.0 * 1.5},
		{"recency 91 days", movie(1, 5.0, 10, daysAgo(91), old), 5.0},
		{"future release", movie(1, 5.0, 10, daysAgo(-30), old), 5.0 * 3.0},
		{"unknown release", movie(1, 5.0, 10, nil, old), 5.0},
		{"momentum boundary 1000", movie(1, 5.0, 1000, daysAgo(400), old), 5.0 * 2.5},
		{"momentum 999", movie(1, 5.0, 999, daysAgo(400), old), 5.0 * 2.0},
		{"momentum boundary 50", movie(1, 5.0, 50, daysAgo(400), old), 5.0 * 1.2},
		{"fresh within a day", movie(1, 5.0, 10, daysAgo(400), now.Add(-23*time.Hour)), 5.0 * 1.5},
		{"fresh within a week", movie(1, 5.0, 10, daysAgo(400), now.Add(-6*24*time.Hour)), 5.0 * 1.2},
		{"older than a week", movie(1, 5.0, 10, daysAgo(400), now.Add(-8*24*time.Hour)), 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Daily.Score(&tt.m, now), 1e-9)
		})
	}
}

func TestWeekly_Factors(t *testing.T) {
	old := now.AddDate(-1, 0, 0)

	tests := []struct {
		name string
		m    domain.Movie
		want float64
	}{
		{"top buckets", movie(1, 8.5, 2000, daysAgo(14), old), 8.5 * 2.5 * 3.0 * 2.5},
		{"middle buckets", movie(1, 7.0, 600, daysAgo(60), old), 7.0 * 1.8 * 2.0 * 1.5},
		{"low buckets", movie(1, 5.5, 100, daysAgo(180), old), 5.5 * 1.3 * 1.2 * 1.0},
		{"defaults", movie(1, 5.0, 99, daysAgo(181), old), 5.0 * 1.0 * 1.0 * 0.7},
		{"freshness is not a factor", movie(1, 5.0, 99, daysAgo(181), now), 5.0 * 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Weekly.Score(&tt.m, now), 1e-9)
		})
	}
}

func TestRank_TieBreakOnVoteCount(t *testing.T) {
	old := now.AddDate(-1, 0, 0)
	// Same vote average and the same buckets give bit-identical scores.
	a := movie(1, 6.0, 200, daysAgo(400), old)
	b := movie(2, 6.0, 300, daysAgo(400), old)
	require.Equal(t, Daily.Score(&a, now), Daily.Score(&b, now))

	assert.Equal(t, []int64{2, 1}, ids(Daily.Rank([]domain.Movie{a, b}, now, 0)))
}

func TestRank_TieBreakOnVoteAverage(t *testing.T) {
	v := Variant{
		Recency:  Table{Default: 1.0},
		Momentum: Table{Default: 1.0},
		Quality:  Table{Steps: []Step{{2.0, 1.0}}, Default: 2.0},
	}
	a := movie(1, 1.0, 40, nil, now) // 1.0 × 2.0
	b := movie(2, 2.0, 40, nil, now) // 2.0 × 1.0
	c := movie(3, 2.0, 40, nil, now) // identical to b, lower id wins
	require.Equal(t, v.Score(&a, now), v.Score(&b, now))

	assert.Equal(t, []int64{2, 3, 1}, ids(v.Rank([]domain.Movie{a, c, b}, now, 0)))
}

func TestRank_Limit(t *testing.T) {
	var movies []domain.Movie
	for i := int64(1); i <= 30; i++ {
		movies = append(movies, movie(i, 5.0+float64(i)/10, 100, daysAgo(3), now))
	}

	ranked := Daily.Rank(movies, now, DefaultLimit)
	require.Len(t, ranked, DefaultLimit)
	assert.Equal(t, int64(30), ranked[0].Movie.ID)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestForPeriod(t *testing.T) {
	v, ok := ForPeriod(domain.PeriodDay)
	assert.True(t, ok)
	assert.Equal(t, domain.PeriodDay, v.Name)

	v, ok = ForPeriod(domain.PeriodWeek)
	assert.True(t, ok)
	assert.Equal(t, int64(50), v.MinVotes)

	_, ok = ForPeriod("month")
	assert.False(t, ok)
}

func TestSQL_Shape(t *testing.T) {
	expr, args := Daily.SQL(now)

	// 3 recency + 4 momentum + 4 quality + 2 freshness bounds
	assert.Len(t, args, 13)
	assert.Contains(t, expr, "WHEN movies.release_date >= ? THEN 3.0")
	assert.Contains(t, expr, "WHEN movies.vote_count >= ? THEN 2.5")
	assert.Contains(t, expr, "ELSE 0.5 END")
	assert.Contains(t, expr, "WHEN movies.created_at >= ? THEN 1.5")
	assert.Equal(t, Today(now).AddDate(0, 0, -7), args[0])
	assert.Equal(t, int64(1000), args[3])

	expr, args = Weekly.SQL(now)
	assert.Len(t, args, 12)
	assert.NotContains(t, expr, "created_at")

	where, whereArgs := Weekly.EligibilitySQL()
	assert.Contains(t, where, "vote_count >= ?")
	assert.Equal(t, []any{int64(50), 5.0}, whereArgs)
}
