package models

import (
	"time"

	"github.com/google/uuid"
)

type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
)

const (
	DefaultFeaturedImage = "default-post.jpg"
	MaxExcerptLength     = 500
)

// Valid reports whether s is one of the two known statuses.
func (s PostStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

type Post struct {
	ID            uuid.UUID
	Title         string
	Content       string
	Excerpt       string
	AuthorID      uuid.UUID
	Tags          []string
	FeaturedImage string
	Status        PostStatus
	Views         int64
	Likes         []uuid.UUID
	Slug          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// VisibleTo reports whether viewer may read the post. Published posts are
// public; drafts are limited to admins and the post's author.
func (p *Post) VisibleTo(viewer *User) bool {
	if p.Status == StatusPublished {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.IsAdmin() || viewer.ID == p.AuthorID
}

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID uuid.UUID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
