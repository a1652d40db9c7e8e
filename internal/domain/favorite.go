package domain

import (
	"time"
)

// Favorite links a user to a movie. The pair (UserID, MovieID) is unique.
type Favorite struct {
	ID      int64     `json:"id" gorm:"primaryKey"`
	UserID  int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_favorites_user_movie"`
	MovieID int64     `json:"movie_id" gorm:"not null;index;uniqueIndex:idx_favorites_user_movie"`
	AddedAt time.Time `json:"added_at" gorm:"autoCreateTime;index"`

	User  *User  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Movie *Movie `json:"movie,omitempty" gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
}

func (Favorite) TableName() string {
	return "favorites"
}
