package models

import (
	"encoding/json"
	"time"
)

// MaxPostLength is the maximum number of characters in a post body.
const MaxPostLength = 140

// Post is a short text update authored by a user. Posts are never edited.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Body      string    `gorm:"size:140;not null" json:"body"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Author    *User     `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// Newer reports whether p sorts before other in reverse-chronological order.
// Ties on timestamp are broken by the higher id first.
func (p *Post) Newer(other *Post) bool {
	if p.Timestamp.Equal(other.Timestamp) {
		return p.ID > other.ID
	}
	return p.Timestamp.After(other.Timestamp)
}

// AuthorRef is the public part of a post's author.
type AuthorRef struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// MarshalJSON exposes only the author's id and username.
func (p Post) MarshalJSON() ([]byte, error) {
	type plain Post
	out := struct {
		plain
		Author *AuthorRef `json:"author,omitempty"`
	}{plain: plain(p)}
	if p.Author != nil {
		out.Author = &AuthorRef{ID: p.Author.ID, Username: p.Author.Username}
	}
	return json.Marshal(out)
}
