package domain

// Models lists every entity managed by database migrations, parents first.
func Models() []any {
	return []any{
		&User{},
		&UserProfile{},
		&AuthToken{},
		&Genre{},
		&Movie{},
		&Favorite{},
		&TrendingMovie{},
	}
}
