package database

import (
	"context"
	"math"
	"strings"

	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/google/uuid"
)

// Store is everything the HTTP layer and actors need from persistence.
// MongoDB implements it; tests use an in-memory implementation.
type Store interface {
	UserStore
	PostStore
	CommentStore
	Ping(ctx context.Context) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByLogin matches login against both username and email.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
	HasAdmin(ctx context.Context) (bool, error)
}

type PostStore interface {
	InsertPost(ctx context.Context, post *models.Post) error
	// UpdatePost writes the editable fields only; views and likes are left alone.
	UpdatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	IncrementPostViews(ctx context.Context, id uuid.UUID) (*models.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) error
	ListPosts(ctx context.Context, q PostQuery) ([]*models.Post, int64, error)
	// SlugExists ignores the post identified by exclude (uuid.Nil excludes nothing).
	SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	SetPostLike(ctx context.Context, postID, userID uuid.UUID, liked bool) (*models.Post, error)
}

type CommentStore interface {
	InsertComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	// GetPostComments returns every comment on a post, oldest first.
	GetPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	CommentIDsByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
	ListCommentAuthors(ctx context.Context) ([]CommentAuthorRef, error)
	SetCommentAuthor(ctx context.Context, commentID, authorID uuid.UUID) error
	DeletePostComments(ctx context.Context, postID uuid.UUID) (int64, error)
}

// CommentAuthorRef is the minimal projection the reconciler scans.
type CommentAuthorRef struct {
	CommentID uuid.UUID
	AuthorID  uuid.UUID
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type PostQuery struct {
	Page     int64
	Limit    int64
	Sort     PostSort
	Search   string
	Statuses []models.PostStatus // empty means any status
}

// Normalize clamps paging to sane bounds.
func (q *PostQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	// Keep (Page-1)*Limit within int64; such a page is empty either way.
	if maxPage := math.MaxInt64 / q.Limit; q.Page > maxPage {
		q.Page = maxPage
	}
	if q.Sort.Field == "" {
		q.Sort = DefaultPostSort
	}
}

func (q PostQuery) Skip() int64 {
	return (q.Page - 1) * q.Limit
}

type PostSort struct {
	Field string
	Desc  bool
}

var DefaultPostSort = PostSort{Field: "createdAt", Desc: true}

var sortableFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"views":     true,
	"title":     true,
}

// ParsePostSort accepts "field" or "-field". An empty string yields the newest-first default.
func ParsePostSort(raw string) (PostSort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPostSort, nil
	}
	s := PostSort{Field: strings.TrimPrefix(raw, "-"), Desc: strings.HasPrefix(raw, "-")}
	if !sortableFields[s.Field] {
		return PostSort{}, utils.NewValidationError("Invalid sort field: " + s.Field)
	}
	return s, nil
}
