package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nexus/internal/domain"
	"nexus/internal/trending"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// NowPlayingWindow bounds "now playing" to releases of the last 180 days.
	NowPlayingWindow = 180
	SearchLimit      = 50
)

type MovieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// OrderField is a movies column with a direction.
type OrderField struct {
	Column string
	Desc   bool
}

// MovieFilter narrows list and search queries. Nil pointers are ignored.
type MovieFilter struct {
	// Search matches title or overview, case-insensitively.
	Search string
	// Title matches title only, case-insensitively.
	Title     string
	GenreID   *int64
	Year      *int
	MinRating *float64
	MaxRating *float64
}

var defaultOrdering = []OrderField{
	{Column: "vote_average", Desc: true},
	{Column: "vote_count", Desc: true},
}

func (r *MovieRepository) GetByID(ctx context.Context, id int64) (*domain.Movie, error) {
	var m domain.Movie
	err := r.db.WithContext(ctx).
		Preload("Genres", orderGenres).
		First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MovieRepository) GetByExternalID(ctx context.Context, externalID int64) (*domain.Movie, error) {
	var m domain.Movie
	err := r.db.WithContext(ctx).
		Preload("Genres", orderGenres).
		Where("external_id = ?", externalID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MovieRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Movie{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *MovieRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Movie{}).Count(&count).Error
	return count, err
}

// Popular lists movies with at least minVotes votes and minRating average,
// best rated first.
func (r *MovieRepository) Popular(ctx context.Context, minVotes int64, minRating float64, limit int) ([]domain.Movie, error) {
	q := r.base(ctx).
		Where("movies.vote_count >= ? AND movies.vote_average >= ?", minVotes, minRating)
	return r.find(applyOrdering(q, defaultOrdering).Limit(limit))
}

// TopRated orders by vote average among movies with at least minVotes votes.
func (r *MovieRepository) TopRated(ctx context.Context, minVotes int64, limit int) ([]domain.Movie, error) {
	q := r.base(ctx).Where("movies.vote_count >= ?", minVotes)
	return r.find(applyOrdering(q, defaultOrdering).Limit(limit))
}

// Upcoming lists releases from today on, soonest first.
func (r *MovieRepository) Upcoming(ctx context.Context, today time.Time, limit int) ([]domain.Movie, error) {
	return r.find(r.base(ctx).
		Where("movies.release_date >= ?", today).
		Order("movies.release_date ASC").
		Limit(limit))
}

// NowPlaying lists releases within the last NowPlayingWindow days, latest first.
func (r *MovieRepository) NowPlaying(ctx context.Context, today time.Time, limit int) ([]domain.Movie, error) {
	return r.find(r.base(ctx).
		Where("movies.release_date >= ? AND movies.release_date <= ?", today.AddDate(0, 0, -NowPlayingWindow), today).
		Order("movies.release_date DESC").
		Limit(limit))
}

// Recent lists the most recently ingested movies.
func (r *MovieRepository) Recent(ctx context.Context, limit int) ([]domain.Movie, error) {
	return r.find(r.base(ctx).
		Order("movies.created_at DESC").
		Order("movies.id DESC").
		Limit(limit))
}

// Trending ranks eligible movies by the variant's score inside the database.
func (r *MovieRepository) Trending(ctx context.Context, v trending.Variant, now time.Time, limit int) ([]domain.Movie, error) {
	expr, args := v.SQL(now)
	where, whereArgs := v.EligibilitySQL()

	q := r.base(ctx).
		Select("movies.*, ("+expr+") AS trending_score", args...).
		Where(where, whereArgs...).
		Order("trending_score DESC").
		Order("movies.vote_count DESC").
		Order("movies.vote_average DESC").
		Order("movies.id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return r.find(q)
}

// Eligible returns every movie passing the variant's vote gates, unordered.
func (r *MovieRepository) Eligible(ctx context.Context, v trending.Variant) ([]domain.Movie, error) {
	where, args := v.EligibilitySQL()
	var movies []domain.Movie
	err := r.base(ctx).Where(where, args...).Find(&movies).Error
	return movies, err
}

// Search applies f, orders by rating and caps the result at limit.
func (r *MovieRepository) Search(ctx context.Context, f MovieFilter, limit int) ([]domain.Movie, error) {
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}
	q := applyFilter(r.base(ctx), f)
	q = applyOrdering(q, defaultOrdering).Limit(limit)
	return r.find(q)
}

// List returns one page of movies matching f and the total match count.
func (r *MovieRepository) List(ctx context.Context, f MovieFilter, ordering []OrderField, limit, offset int) ([]domain.Movie, int64, error) {
	var total int64
	if err := applyFilter(r.base(ctx).Model(&domain.Movie{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	ordering = append(append([]OrderField{}, ordering...), OrderField{Column: "id"})

	q := applyOrdering(applyFilter(r.base(ctx), f), ordering).
		Limit(limit).
		Offset(offset)
	movies, err := r.find(q)
	if err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

// ListByGenre returns movies tagged with the genre, best rated first.
func (r *MovieRepository) ListByGenre(ctx context.Context, genreID int64, limit int) ([]domain.Movie, error) {
	q := applyFilter(r.base(ctx), MovieFilter{GenreID: &genreID})
	return r.find(applyOrdering(q, defaultOrdering).Limit(limit))
}

// MovieUpsert is the full set of fields ingestion writes for one movie.
type MovieUpsert struct {
	ExternalID   int64
	Title        string
	Overview     string
	ReleaseDate  *time.Time
	PosterPath   *string
	BackdropPath *string
	VoteAverage  float64
	VoteCount    int64
	GenreIDs     []int64 // local genre ids
}

// Upsert creates the movie or updates it in place by external id and
// replaces its genre set. created_at is kept, updated_at advances.
func (r *MovieRepository) Upsert(ctx context.Context, in MovieUpsert) (*domain.Movie, bool, error) {
	var (
		movie   domain.Movie
		created bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("external_id = ?", in.ExternalID).First(&movie).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			movie = domain.Movie{
				ExternalID:   in.ExternalID,
				Title:        in.Title,
				Overview:     in.Overview,
				ReleaseDate:  in.ReleaseDate,
				PosterPath:   in.PosterPath,
				BackdropPath: in.BackdropPath,
				VoteAverage:  in.VoteAverage,
				VoteCount:    in.VoteCount,
			}
			if err := tx.Omit(clause.Associations).Create(&movie).Error; err != nil {
				return fmt.Errorf("create movie %d: %w", in.ExternalID, err)
			}
			created = true
		case err != nil:
			return fmt.Errorf("lookup movie %d: %w", in.ExternalID, err)
		default:
			updates := map[string]any{
				"title":         in.Title,
				"overview":      in.Overview,
				"release_date":  in.ReleaseDate,
				"poster_path":   in.PosterPath,
				"backdrop_path": in.BackdropPath,
				"vote_average":  in.VoteAverage,
				"vote_count":    in.VoteCount,
				"updated_at":    tx.NowFunc(),
			}
			if err := tx.Model(&movie).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return fmt.Errorf("update movie %d: %w", in.ExternalID, err)
			}
		}

		genres := make([]domain.Genre, 0, len(in.GenreIDs))
		if len(in.GenreIDs) > 0 {
			if err := tx.Where("id IN ?", in.GenreIDs).Find(&genres).Error; err != nil {
				return fmt.Errorf("load genres: %w", err)
			}
		}
		assoc := tx.Model(&movie).Association("Genres")
		if len(genres) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(genres)
		}
		if err != nil {
			return fmt.Errorf("replace genres of movie %d: %w", in.ExternalID, err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	saved, err := r.GetByID(ctx, movie.ID)
	if err != nil {
		return nil, false, err
	}
	return saved, created, nil
}

func (r *MovieRepository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Movie{})
}

func (r *MovieRepository) find(q *gorm.DB) ([]domain.Movie, error) {
	movies := make([]domain.Movie, 0)
	if err := q.Preload("Genres", orderGenres).Find(&movies).Error; err != nil {
		return nil, err
	}
	return movies, nil
}

func applyFilter(q *gorm.DB, f MovieFilter) *gorm.DB {
	if s := strings.TrimSpace(f.Search); s != "" {
		like := containsPattern(s)
		q = q.Where(`(LOWER(movies.title) LIKE ? ESCAPE '\' OR LOWER(movies.overview) LIKE ? ESCAPE '\')`, like, like)
	}
	if s := strings.TrimSpace(f.Title); s != "" {
		q = q.Where(`LOWER(movies.title) LIKE ? ESCAPE '\'`, containsPattern(s))
	}
	if f.GenreID != nil {
		// A subquery keeps one row per movie without DISTINCT.
		q = q.Where("movies.id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).
				Table("movie_genres").
				Select("movie_id").
				Where("genre_id = ?", *f.GenreID))
	}
	if f.Year != nil {
		from := time.Date(*f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("movies.release_date >= ? AND movies.release_date < ?", from, from.AddDate(1, 0, 0))
	}
	if f.MinRating != nil {
		q = q.Where("movies.vote_average >= ?", *f.MinRating)
	}
	if f.MaxRating != nil {
		q = q.Where("movies.vote_average <= ?", *f.MaxRating)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching s literally
// anywhere in the column. Callers must pair it with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func applyOrdering(q *gorm.DB, ordering []OrderField) *gorm.DB {
	for _, o := range ordering {
		q = q.Order(clause.OrderByColumn{
			Column: clause.Column{Table: "movies", Name: o.Column},
			Desc:   o.Desc,
		})
	}
	return q
}

func orderGenres(db *gorm.DB) *gorm.DB {
	return db.Order("genres.name ASC")
}
