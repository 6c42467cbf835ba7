package api

import (
	"time"

	"blog-platform/internal/authors"
	"blog-platform/internal/database"
	"blog-platform/internal/engine/actors"
	"blog-platform/internal/models"

	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Content       string   `json:"content" validate:"required"`
	Excerpt       string   `json:"excerpt" validate:"max=500"`
	Tags          []string `json:"tags" validate:"max=50,dive,max=50"`
	FeaturedImage string   `json:"featuredImage"`
	Status        string   `json:"status" validate:"omitempty,oneof=draft published"`
}

func (r *CreatePostRequest) ToMsg(authorID uuid.UUID) *actors.CreatePostMsg {
	return &actors.CreatePostMsg{
		Title:         r.Title,
		Content:       r.Content,
		Excerpt:       r.Excerpt,
		AuthorID:      authorID,
		Tags:          r.Tags,
		FeaturedImage: r.FeaturedImage,
		Status:        models.PostStatus(r.Status),
	}
}

// UpdatePostRequest distinguishes an omitted field (nil) from one sent empty.
type UpdatePostRequest struct {
	Title         *string   `json:"title" validate:"omitempty,max=200"`
	Content       *string   `json:"content"`
	Excerpt       *string   `json:"excerpt" validate:"omitempty,max=500"`
	Tags          *[]string `json:"tags" validate:"omitempty,max=50"`
	FeaturedImage *string   `json:"featuredImage"`
	Status        *string   `json:"status" validate:"omitempty,oneof=draft published"`
}

func (r *UpdatePostRequest) ToMsg(postID uuid.UUID) *actors.UpdatePostMsg {
	msg := &actors.UpdatePostMsg{
		PostID:        postID,
		Title:         r.Title,
		Content:       r.Content,
		Excerpt:       r.Excerpt,
		Tags:          r.Tags,
		FeaturedImage: r.FeaturedImage,
	}
	if r.Status != nil {
		status := models.PostStatus(*r.Status)
		msg.Status = &status
	}
	return msg
}

type PostResponse struct {
	ID            uuid.UUID            `json:"id"`
	Title         string               `json:"title"`
	Content       string               `json:"content"`
	Excerpt       string               `json:"excerpt"`
	Author        models.AuthorSummary `json:"author"`
	Tags          []string             `json:"tags"`
	FeaturedImage string               `json:"featuredImage"`
	Status        models.PostStatus    `json:"status"`
	Views         int64                `json:"views"`
	Likes         []uuid.UUID          `json:"likes"`
	Comments      []uuid.UUID          `json:"comments"`
	Slug          string               `json:"slug"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

func NewPostResponse(p *models.Post, author models.AuthorSummary, comments []uuid.UUID) PostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	likes := p.Likes
	if likes == nil {
		likes = []uuid.UUID{}
	}
	if comments == nil {
		comments = []uuid.UUID{}
	}
	return PostResponse{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		Author:        author,
		Tags:          tags,
		FeaturedImage: p.FeaturedImage,
		Status:        p.Status,
		Views:         p.Views,
		Likes:         likes,
		Comments:      comments,
		Slug:          p.Slug,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// NewPostResponses shapes a page of posts with their authors resolved through dir.
func NewPostResponses(posts []*models.Post, dir *authors.Directory, comments map[uuid.UUID][]uuid.UUID) []PostResponse {
	out := make([]PostResponse, len(posts))
	for i, p := range posts {
		out[i] = NewPostResponse(p, dir.Author(p.AuthorID), comments[p.ID])
	}
	return out
}

type PostEnvelope struct {
	Success bool         `json:"success"`
	Data    PostResponse `json:"data"`
}

type Pagination struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func NewPagination(q database.PostQuery, total int64) Pagination {
	pages := total / q.Limit
	if total%q.Limit != 0 {
		pages++
	}
	return Pagination{Page: q.Page, Limit: q.Limit, Total: total, Pages: pages}
}

type PostListResponse struct {
	Success    bool           `json:"success"`
	Count      int            `json:"count"`
	Pagination Pagination     `json:"pagination"`
	Data       []PostResponse `json:"data"`
}

type DeleteResponse struct {
	Success bool     `json:"success"`
	Data    struct{} `json:"data"`
}

type LikeResponse struct {
	Success bool `json:"success"`
	Liked   bool `json:"liked"`
	Likes   int  `json:"likes"`
}
