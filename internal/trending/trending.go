// Package trending scores movies for the daily and weekly trending lists.
//
// A score is vote_average multiplied by a fixed set of factors, each looked
// up in an ordered threshold table where the first matching step wins.
// The same tables drive both the in-process Score and the SQL expression
// used to rank inside the database, so both paths order identically.
package trending

import (
	"sort"
	"time"

	"nexus/internal/domain"
)

const DefaultLimit = 20

// Step is one row of a threshold table.
type Step struct {
	Bound float64
	Value float64
}

// Table holds steps ordered from the strictest bound to the loosest.
type Table struct {
	Steps   []Step
	Default float64
}

// AtLeast returns the value of the first step with x >= Bound.
func (t Table) AtLeast(x float64) float64 {
	for _, s := range t.Steps {
		if x >= s.Bound {
			return s.Value
		}
	}
	return t.Default
}

// Variant describes one trending list.
//
// Recency bounds are whole days since release. Freshness bounds are
// durations since the row was first stored; a variant without freshness
// steps leaves that factor out.
type Variant struct {
	Name      domain.TrendingPeriod
	MinVotes  int64
	MinRating float64
	Recency   Table
	Momentum  Table
	Quality   Table
	Freshness Table
}

var Daily = Variant{
	Name:      domain.PeriodDay,
	MinVotes:  10,
	MinRating: 4.0,
	Recency: Table{
		Steps:   []Step{{7, 3.0}, {30, 2.0}, {90, 1.5}},
		Default: 1.0,
	},
	Momentum: Table{
		Steps:   []Step{{1000, 2.5}, {500, 2.0}, {100, 1.5}, {50, 1.2}},
		Default: 1.0,
	},
	Quality: Table{
		Steps:   []Step{{8.0, 2.0}, {7.0, 1.5}, {6.0, 1.2}, {5.0, 1.0}},
		Default: 0.5,
	},
	Freshness: Table{
		Steps:   []Step{{float64(24 * time.Hour), 1.5}, {float64(7 * 24 * time.Hour), 1.2}},
		Default: 1.0,
	},
}

var Weekly = Variant{
	Name:      domain.PeriodWeek,
	MinVotes:  50,
	MinRating: 5.0,
	Recency: Table{
		Steps:   []Step{{14, 2.5}, {60, 1.8}, {180, 1.3}},
		Default: 1.0,
	},
	Momentum: Table{
		Steps:   []Step{{2000, 3.0}, {1000, 2.5}, {500, 2.0}, {200, 1.5}, {100, 1.2}},
		Default: 1.0,
	},
	Quality: Table{
		Steps:   []Step{{8.5, 2.5}, {7.5, 2.0}, {6.5, 1.5}, {5.5, 1.0}},
		Default: 0.7,
	},
}

// ForPeriod resolves "day" or "week".
func ForPeriod(p domain.TrendingPeriod) (Variant, bool) {
	switch p {
	case domain.PeriodDay:
		return Daily, true
	case domain.PeriodWeek:
		return Weekly, true
	}
	return Variant{}, false
}

// Cutoffs are the time bounds a variant compares against at a given instant.
type Cutoffs struct {
	// ReleasedOnOrAfter[i] pairs with Recency.Steps[i].
	ReleasedOnOrAfter []time.Time
	// CreatedOnOrAfter[i] pairs with Freshness.Steps[i].
	CreatedOnOrAfter []time.Time
}

// Today truncates now to the start of its UTC calendar day.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Cutoffs converts the day and duration bounds into absolute times.
// "released at most N days ago" becomes release_date >= today - N days, so
// future releases fall into the strictest bucket.
func (v Variant) Cutoffs(now time.Time) Cutoffs {
	today := Today(now)
	c := Cutoffs{
		ReleasedOnOrAfter: make([]time.Time, len(v.Recency.Steps)),
		CreatedOnOrAfter:  make([]time.Time, len(v.Freshness.Steps)),
	}
	for i, s := range v.Recency.Steps {
		c.ReleasedOnOrAfter[i] = today.AddDate(0, 0, -int(s.Bound))
	}
	for i, s := range v.Freshness.Steps {
		c.CreatedOnOrAfter[i] = now.UTC().Add(-time.Duration(s.Bound))
	}
	return c
}

func (v Variant) recency(release *time.Time, c Cutoffs) float64 {
	if release == nil {
		return v.Recency.Default
	}
	for i, s := range v.Recency.Steps {
		if !release.Before(c.ReleasedOnOrAfter[i]) {
			return s.Value
		}
	}
	return v.Recency.Default
}

func (v Variant) freshness(created time.Time, c Cutoffs) float64 {
	for i, s := range v.Freshness.Steps {
		if !created.Before(c.CreatedOnOrAfter[i]) {
			return s.Value
		}
	}
	return v.Freshness.Default
}

// Eligible reports whether a movie passes the variant's vote gates.
func (v Variant) Eligible(m *domain.Movie) bool {
	return m.VoteCount >= v.MinVotes && m.VoteAverage >= v.MinRating
}

// Score computes the trending score of m at instant now.
func (v Variant) Score(m *domain.Movie, now time.Time) float64 {
	return v.score(m, v.Cutoffs(now))
}

func (v Variant) score(m *domain.Movie, c Cutoffs) float64 {
	s := m.VoteAverage *
		v.recency(m.ReleaseDate, c) *
		v.Momentum.AtLeast(float64(m.VoteCount)) *
		v.Quality.AtLeast(m.VoteAverage)
	if len(v.Freshness.Steps) > 0 {
		s *= v.freshness(m.CreatedAt, c)
	}
	return s
}

// Scored pairs a movie with its score.
type Scored struct {
	Movie domain.Movie
	Score float64
}

// Rank drops ineligible movies, orders the rest by score, vote count and
// vote average (all descending, then id ascending) and keeps the top limit.
// A non-positive limit keeps everything.
func (v Variant) Rank(movies []domain.Movie, now time.Time, limit int) []Scored {
	c := v.Cutoffs(now)
	out := make([]Scored, 0, len(movies))
	for i := range movies {
		if !v.Eligible(&movies[i]) {
			continue
		}
		out = append(out, Scored{Movie: movies[i], Score: v.score(&movies[i], c)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Movie.VoteCount != b.Movie.VoteCount {
			return a.Movie.VoteCount > b.Movie.VoteCount
		}
		if a.Movie.VoteAverage != b.Movie.VoteAverage {
			return a.Movie.VoteAverage > b.Movie.VoteAverage
		}
		return a.Movie.ID < b.Movie.ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
