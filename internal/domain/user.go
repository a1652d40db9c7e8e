package domain

import "time"

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:254"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	FirstName    string    `json:"first_name" gorm:"size:150"`
	LastName     string    `json:"last_name" gorm:"size:150"`
	IsStaff      bool      `json:"is_staff" gorm:"not null;default:false"`
	DateJoined   time.Time `json:"date_joined" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Profile *UserProfile `json:"profile,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// UserProfile is created in the same transaction as its User.
type UserProfile struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	UserID      int64      `json:"user_id" gorm:"uniqueIndex;not null"`
	Bio         string     `json:"bio" gorm:"type:text"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// AuthToken is the server side half of a bearer credential: one row per user.
// Issued JWTs carry Key as their jti and stop working once the row is deleted.
type AuthToken struct {
	ID        int64     `json:"-" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"uniqueIndex;not null"`
	Key       string    `json:"-" gorm:"size:36;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
