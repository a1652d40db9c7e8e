package movies

import "errors"

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrGenreNotFound = errors.New("genre not found")
	ErrUnknownPeriod = errors.New("unknown trending period")
)
