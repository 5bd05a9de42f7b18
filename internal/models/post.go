package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxTitleLength is the longest title a post may carry, in characters.
const MaxTitleLength = 100

// Post represents a blog post.
type Post struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title    string `gorm:"size:100;not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Image    string `json:"image,omitempty"`
	Tags     Tags   `gorm:"type:text;serializer:json" json:"tags"`
	AuthorID string `gorm:"type:varchar(36);not null;index" json:"author_id"`
	// AuthorUser is the preloaded row; Author is what clients see.
	AuthorUser *User   `gorm:"foreignKey:AuthorID" json:"-"`
	Author     *Author `gorm:"-" json:"author,omitempty"`
	// LikeRows backs Likes, which is filled most-recent-first by the repository.
	LikeRows  []Like    `gorm:"foreignKey:PostID" json:"-"`
	Likes     []string  `gorm:"-" json:"likes"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a store-generated id.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Hydrate copies preloaded associations into their JSON-facing fields.
func (p *Post) Hydrate() {
	if p.AuthorUser != nil {
		p.Author = AuthorOf(p.AuthorUser)
	}
	likes := make([]string, 0, len(p.LikeRows))
	for _, l := range p.LikeRows {
		likes = append(likes, l.UserID)
	}
	p.Likes = likes
	if p.Tags == nil {
		p.Tags = Tags{}
	}
}

// LikedBy reports whether userID is in the likes set.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Tags is an ordered set of tag strings.
type Tags []string

// NormalizeTags trims each tag, drops empties and keeps the first
// occurrence of every duplicate.
func NormalizeTags(in []string) Tags {
	out := make(Tags, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Like is one membership row of a post's likes set.
type Like struct {
	PostID    string    `gorm:"primaryKey;type:varchar(36)" json:"post_id"`
	UserID    string    `gorm:"primaryKey;type:varchar(36);index" json:"user_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName keeps likes in post_likes.
func (Like) TableName() string { return "post_likes" }
