package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID
	Content   string
	AuthorID  uuid.UUID
	PostID    uuid.UUID
	ParentID  *uuid.UUID // nil for top-level comments
	Likes     []uuid.UUID
	CreatedAt time.Time
}

func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
