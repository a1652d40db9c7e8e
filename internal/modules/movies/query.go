package movies

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"nexus/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// maxPage keeps (page-1)*page_size inside a 32-bit offset.
	maxPage = math.MaxInt32 / maxPageSize
)

var orderingFields = map[string]bool{
	"release_date": true,
	"vote_average": true,
	"vote_count":   true,
	"created_at":   true,
	"title":        true,
}

// ListQuery is the parsed query string of the movie list endpoint.
type ListQuery struct {
	Filter   repository.MovieFilter
	Ordering []repository.OrderField
	Page     int
	PageSize int
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// ParseListQuery never fails: values that do not parse are dropped.
func ParseListQuery(v url.Values) ListQuery {
	q := ListQuery{
		Filter:   parseFilter(v),
		Ordering: parseOrdering(v.Get("ordering")),
		Page:     1,
		PageSize: defaultPageSize,
	}
	q.Filter.Search = strings.TrimSpace(v.Get("search"))
	q.Filter.Title = strings.TrimSpace(v.Get("title"))

	if p, err := strconv.Atoi(v.Get("page")); err == nil && p > 0 {
		q.Page = min(p, maxPage)
	}
	if s, err := strconv.Atoi(v.Get("page_size")); err == nil && s > 0 {
		q.PageSize = min(s, maxPageSize)
	}
	return q
}

// ParseSearchQuery reads q, genre, min_rating and year. Unparseable
// numeric filters are ignored.
func ParseSearchQuery(v url.Values) repository.MovieFilter {
	f := repository.MovieFilter{
		Search: strings.TrimSpace(v.Get("q")),
	}
	if id, ok := parseInt64(v.Get("genre")); ok {
		f.GenreID = &id
	}
	if r, ok := parseFloat(v.Get("min_rating")); ok {
		f.MinRating = &r
	}
	if y, ok := parseInt64(v.Get("year")); ok {
		year := int(y)
		f.Year = &year
	}
	return f
}

func parseFilter(v url.Values) repository.MovieFilter {
	f := ParseSearchQuery(url.Values{
		"genre":      v["genre"],
		"min_rating": v["min_rating"],
		"year":       v["year"],
	})
	if r, ok := parseFloat(v.Get("max_rating")); ok {
		f.MaxRating = &r
	}
	return f
}

func parseOrdering(raw string) []repository.OrderField {
	var out []repository.OrderField
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if !orderingFields[name] || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, repository.OrderField{Column: name, Desc: desc})
	}
	return out
}

func parseInt64(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
