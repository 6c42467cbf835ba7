package api

import (
	"strings"
	"time"

	"blog-platform/internal/authors"
	"blog-platform/internal/models"

	"github.com/google/uuid"
)

type CreateCommentRequest struct {
	Content string  `json:"content" validate:"required,max=5000"`
	Parent  *string `json:"parent"`
}

func (r *CreateCommentRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
	if r.Parent != nil && strings.TrimSpace(*r.Parent) == "" {
		r.Parent = nil
	}
}

type CommentResponse struct {
	ID        uuid.UUID            `json:"id"`
	Content   string               `json:"content"`
	Author    models.AuthorSummary `json:"author"`
	Post      uuid.UUID            `json:"post"`
	Parent    *uuid.UUID           `json:"parent"`
	Likes     []uuid.UUID          `json:"likes"`
	CreatedAt time.Time            `json:"createdAt"`
}

// CommentThread is a top-level comment with its replies.
type CommentThread struct {
	CommentResponse
	Replies []CommentResponse `json:"replies"`
}

func NewCommentResponse(c *models.Comment, author models.AuthorSummary) CommentResponse {
	likes := c.Likes
	if likes == nil {
		likes = []uuid.UUID{}
	}
	return CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		Author:    author,
		Post:      c.PostID,
		Parent:    c.ParentID,
		Likes:     likes,
		CreatedAt: c.CreatedAt,
	}
}

// NewCommentThreads groups comments into top-level threads, keeping the
// given order. Replies whose parent is not a top-level comment in the same
// slice are dropped.
func NewCommentThreads(comments []*models.Comment, dir *authors.Directory) []CommentThread {
	threads := make([]CommentThread, 0)
	index := make(map[uuid.UUID]int)
	for _, c := range comments {
		if c.IsReply() {
			continue
		}
		index[c.ID] = len(threads)
		threads = append(threads, CommentThread{
			CommentResponse: NewCommentResponse(c, dir.Author(c.AuthorID)),
			Replies:         []CommentResponse{},
		})
	}
	for _, c := range comments {
		if !c.IsReply() {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			threads[i].Replies = append(threads[i].Replies, NewCommentResponse(c, dir.Author(c.AuthorID)))
		}
	}
	return threads
}

type ReconcileResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Fixed   int    `json:"fixed"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Uptime    string    `json:"uptime"`
}

type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}
