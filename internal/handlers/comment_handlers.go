package handlers

import (
	"net/http"
	"strings"
	"time"

	"blog-platform/internal/api"
	"blog-platform/internal/middleware"
	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/google/uuid"
)

// HandleGetPostComments returns the post's top-level comments, each with its replies.
func (s *Server) HandleGetPostComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathID(r, "Post")
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		viewer, _ := middleware.UserFromContext(r.Context())

		ctx, cancel := s.requestContext(r)
		defer cancel()

		post, err := s.Store.GetPost(ctx, postID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if !post.VisibleTo(viewer) {
			s.respondError(w, r, utils.NewNotFoundError("Post"))
			return
		}

		comments, err := s.Store.GetPostComments(ctx, postID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		authorIDs := make([]uuid.UUID, len(comments))
		for i, c := range comments {
			authorIDs[i] = c.AuthorID
		}
		dir, err := s.Authors.Resolve(ctx, authorIDs)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, api.NewCommentThreads(comments, dir))
	}
}

// HandleCreateComment adds a comment, or a reply when parent is set. A reply
// to a reply is attached to the top-level comment so threads stay one level deep.
func (s *Server) HandleCreateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathID(r, "Post")
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		user, _ := middleware.UserFromContext(r.Context())

		var req api.CreateCommentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		req.Normalize()
		if err := api.Validate(&req); err != nil {
			s.respondError(w, r, err)
			return
		}

		ctx, cancel := s.requestContext(r)
		defer cancel()

		post, err := s.Store.GetPost(ctx, postID)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if !post.VisibleTo(user) {
			s.respondError(w, r, utils.NewNotFoundError("Post"))
			return
		}

		comment := &models.Comment{
			ID:        uuid.New(),
			Content:   req.Content,
			AuthorID:  user.ID,
			PostID:    postID,
			Likes:     []uuid.UUID{},
			CreatedAt: time.Now().UTC(),
		}

		if req.Parent != nil {
			parentID, err := uuid.Parse(strings.TrimSpace(*req.Parent))
			if err != nil {
				s.respondError(w, r, utils.NewValidationError("Invalid parent comment id"))
				return
			}
			parent, err := s.Store.GetComment(ctx, parentID)
			if utils.IsNotFound(err) {
				s.respondError(w, r, utils.NewNotFoundError("Parent comment"))
				return
			}
			if err != nil {
				s.respondError(w, r, err)
				return
			}
			if parent.PostID != postID {
				s.respondError(w, r, utils.NewValidationError("Parent comment belongs to a different post"))
				return
			}
			if parent.IsReply() {
				parentID = *parent.ParentID
			}
			comment.ParentID = &parentID
		}

		if err := s.Store.InsertComment(ctx, comment); err != nil {
			s.respondError(w, r, err)
			return
		}

		api.WriteJSON(w, http.StatusCreated, api.NewCommentResponse(comment, models.SummaryOf(user)))
	}
}
