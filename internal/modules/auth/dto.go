package auth

import (
	"time"

	"nexus/internal/domain"
)

const dateLayout = "2006-01-02"

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateProfileRequest is a partial update; absent fields are left alone.
// An empty date_of_birth clears it.
type UpdateProfileRequest struct {
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
	DateOfBirth *string `json:"date_of_birth"`
}

type ProfileResponse struct {
	Bio         string    `json:"bio"`
	DateOfBirth *string   `json:"date_of_birth"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserResponse struct {
	ID         int64            `json:"id"`
	Username   string           `json:"username"`
	Email      string           `json:"email"`
	FirstName  string           `json:"first_name"`
	LastName   string           `json:"last_name"`
	DateJoined time.Time        `json:"date_joined"`
	Profile    *ProfileResponse `json:"profile,omitempty"`
}

// PublicUserResponse omits contact details.
type PublicUserResponse struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	DateJoined time.Time `json:"date_joined"`
}

func toProfileResponse(p *domain.UserProfile) *ProfileResponse {
	if p == nil {
		return nil
	}
	out := &ProfileResponse{
		Bio:       p.Bio,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.DateOfBirth != nil {
		s := p.DateOfBirth.Format(dateLayout)
		out.DateOfBirth = &s
	}
	return out
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		DateJoined: u.DateJoined,
		Profile:    toProfileResponse(u.Profile),
	}
}

func toPublicUserResponse(u *domain.User) PublicUserResponse {
	return PublicUserResponse{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		DateJoined: u.DateJoined,
	}
}
