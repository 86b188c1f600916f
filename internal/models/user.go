// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// MaxAboutMeLength is the maximum number of characters in a profile's about-me text.
const MaxAboutMeLength = 140

// User is an account in the user directory.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	AboutMe      string    `gorm:"size:140" json:"about_me"`
	LastSeen     time.Time `json:"last_seen"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Posts   []Post   `gorm:"foreignKey:UserID" json:"-"`
	Metrics []Metric `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// Profile is the public view of a user together with follow-graph context for the viewer.
type Profile struct {
	User           *User `json:"user"`
	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`
	IsFollowing    bool  `json:"is_following"`
	IsSelf         bool  `json:"is_self"`
}
