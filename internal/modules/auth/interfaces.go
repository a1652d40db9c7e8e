package auth

import (
	"context"

	"nexus/internal/domain"
)

// UserRepositoryInterface lists only the methods the auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, userID int64, fields map[string]any) (*domain.UserProfile, error)
}

// TokenRepositoryInterface covers the server side half of issued tokens
type TokenRepositoryInterface interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.AuthToken, error)
	DeleteByUser(ctx context.Context, userID int64) error
}

// WelcomeSender queues the registration email. It must not block.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, username, email string) error
}

type jwtService interface {
	GenerateToken(userID int64, key string) (string, error)
}
