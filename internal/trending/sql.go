package trending

import (
	"strconv"
	"strings"
	"time"
)

// SQL renders the variant's score over the movies table as an expression
// with positional parameters, evaluated at instant now. Factors multiply in
// the same order as Score.
func (v Variant) SQL(now time.Time) (string, []any) {
	c := v.Cutoffs(now)
	var (
		b    strings.Builder
		args []any
	)

	b.WriteString("movies.vote_average")

	b.WriteString(" * CASE")
	for i, s := range v.Recency.Steps {
		b.WriteString(" WHEN movies.release_date >= ? THEN ")
		b.WriteString(literal(s.Value))
		args = append(args, c.ReleasedOnOrAfter[i])
	}
	b.WriteString(" ELSE " + literal(v.Recency.Default) + " END")

	writeAtLeast(&b, &args, "movies.vote_count", v.Momentum, func(f float64) any { return int64(f) })
	writeAtLeast(&b, &args, "movies.vote_average", v.Quality, func(f float64) any { return f })

	if len(v.Freshness.Steps) > 0 {
		b.WriteString(" * CASE")
		for i, s := range v.Freshness.Steps {
			b.WriteString(" WHEN movies.created_at >= ? THEN ")
			b.WriteString(literal(s.Value))
			args = append(args, c.CreatedOnOrAfter[i])
		}
		b.WriteString(" ELSE " + literal(v.Freshness.Default) + " END")
	}

	return b.String(), args
}

// EligibilitySQL is the WHERE clause matching Eligible.
func (v Variant) EligibilitySQL() (string, []any) {
	return "movies.vote_count >= ? AND movies.vote_average >= ?", []any{v.MinVotes, v.MinRating}
}

func writeAtLeast(b *strings.Builder, args *[]any, column string, t Table, bound func(float64) any) {
	b.WriteString(" * CASE")
	for _, s := range t.Steps {
		b.WriteString(" WHEN " + column + " >= ? THEN ")
		b.WriteString(literal(s.Value))
		*args = append(*args, bound(s.Bound))
	}
	b.WriteString(" ELSE " + literal(t.Default) + " END")
}

// literal always carries a decimal point so both Postgres and SQLite treat
// the factor as a real number.
func literal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
