package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"nexus/internal/database"
	"nexus/internal/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func strPtr(s string) *string { return &s }

func createUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func createGenre(t *testing.T, db *gorm.DB, externalID int64, name string) *domain.Genre {
	t.Helper()
	g, _, err := NewGenreRepository(db).GetOrCreate(context.Background(), externalID, name)
	require.NoError(t, err)
	return g
}

type movieOpt func(*MovieUpsert)

func withVotes(avg float64, count int64) movieOpt {
	return func(m *MovieUpsert) { m.VoteAverage, m.VoteCount = avg, count }
}

func withRelease(d *time.Time) movieOpt {
	return func(m *MovieUpsert) { m.ReleaseDate = d }
}

func withGenres(ids ...int64) movieOpt {
	return func(m *MovieUpsert) { m.GenreIDs = ids }
}

func withOverview(s string) movieOpt {
	return func(m *MovieUpsert) { m.Overview = s }
}

func createMovie(t *testing.T, db *gorm.DB, externalID int64, title string, opts ...movieOpt) *domain.Movie {
	t.Helper()
	in := MovieUpsert{
		ExternalID: externalID,
		Title:      title,
		Overview:   fmt.Sprintf("overview of %s", title),
	}
	for _, opt := range opts {
		opt(&in)
	}
	m, _, err := NewMovieRepository(db).Upsert(context.Background(), in)
	require.NoError(t, err)
	return m
}

func movieIDs(movies []domain.Movie) []int64 {
	out := make([]int64, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.ID)
	}
	return out
}
