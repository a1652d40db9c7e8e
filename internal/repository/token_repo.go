package repository

import (
	"context"

	"nexus/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenRepository stores the per-user AuthToken rows backing issued JWTs.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// GetOrCreate returns the user's token, generating a new key when none exists.
func (r *TokenRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.AuthToken, error) {
	var t domain.AuthToken
	err := r.db.WithContext(ctx).
		Where(domain.AuthToken{UserID: userID}).
		Attrs(domain.AuthToken{Key: uuid.NewString()}).
		FirstOrCreate(&t).Error
	if err != nil {
		if IsUniqueViolation(err) {
			err = r.db.WithContext(ctx).Where("user_id = ?", userID).First(&t).Error
			if err != nil {
				return nil, err
			}
			return &t, nil
		}
		return nil, err
	}
	return &t, nil
}

// Exists reports whether key is the live token of userID. Both must be non-zero.
func (r *TokenRepository) Exists(ctx context.Context, userID int64, key string) (bool, error) {
	if userID == 0 || key == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.AuthToken{}).
		Where(&domain.AuthToken{UserID: userID, Key: key}).
		Count(&count).Error
	return count > 0, err
}

// DeleteByUser revokes the user's token.
func (r *TokenRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.AuthToken{}).Error
}

// DeleteAll revokes every token and reports how many were removed.
func (r *TokenRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&domain.AuthToken{})
	return res.RowsAffected, res.Error
}
