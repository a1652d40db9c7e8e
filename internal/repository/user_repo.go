package repository

import (
	"context"
	"strings"

	"nexus/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user together with an empty profile.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile := u.Profile
		u.Profile = nil
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		if profile == nil {
			profile = &domain.UserProfile{}
		}
		profile.UserID = u.ID
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		u.Profile = profile
		return nil
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("username = ?", strings.TrimSpace(username)).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("username = ?", strings.TrimSpace(username)).
		Count(&count).Error
	return count > 0, err
}

// UpdateProfile writes the given profile columns, creating the profile row
// for users that predate profiles.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, fields map[string]any) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(domain.UserProfile{UserID: userID}).FirstOrCreate(&p).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&p).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&p, p.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
