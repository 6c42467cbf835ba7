package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"blog-platform/internal/api"
	"blog-platform/internal/database"
	"blog-platform/internal/engine/actors"
	"blog-platform/internal/middleware"
	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/google/uuid"
)

// parsePostQuery reads paging, sort, search and the status filter. Only
// admins may look past published posts.
func parsePostQuery(r *http.Request, viewer *models.User) (database.PostQuery, error) {
	values := r.URL.Query()
	q := database.PostQuery{
		Page:     positiveInt(values.Get("page"), 1),
		Limit:    positiveInt(values.Get("limit"), database.DefaultPageSize),
		Search:   strings.TrimSpace(values.Get("search")),
		Statuses: []models.PostStatus{models.StatusPublished},
	}

	sort, err := database.ParsePostSort(values.Get("sort"))
	if err != nil {
		return q, err
	}
	q.Sort = sort

	if raw := values.Get("status"); raw != "" && viewer.IsAdmin() {
		switch status := models.PostStatus(raw); {
		case raw == "all":
			q.Statuses = nil
		case status.Valid():
			q.Statuses = []models.PostStatus{status}
		default:
			return q, utils.NewValidationError("status must be draft, published or all")
		}
	}

	q.Normalize()
	return q, nil
}

func positiveInt(raw string, fallback int64) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// HandleListPosts serves one page of posts with authors resolved.
func (s *Server) HandleListPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := middleware.UserFromContext(r.Context())
		q, err := parsePostQuery(r, viewer)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		ctx, cancel := s.requestContext(r)
		defer cancel()

		posts, total, err := s.Store.ListPosts(ctx, q)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		data, err := s.postResponses(ctx, posts)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		api.WriteJSON(w, http.StatusOK, api.PostListResponse{
			Success:    true,
			Count:      len(data),
			Pagination: api.NewPagination(q, total),
			Data:       data,
		})
	}
}

// HandleGetPost returns one post and counts the fetch as a view.
func (s *Server) HandleGetPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "Post")
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		viewer, _ := middleware.UserFromContext(r.Context())

		ctx, cancel := s.requestContext(r)
		defer cancel()

		post, err := s.Store.GetPost(ctx, id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if !post.VisibleTo(viewer) {
			s.respondError(w, r, utils.NewNotFoundError("Post"))
			return
		}

		post, err = s.Store.IncrementPostViews(ctx, id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.respondPost(ctx, w, r, http.StatusOK, post)
	}
}

func (s *Server) HandleCreatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.UserFromContext(r.Context())

		var req api.CreatePostRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		if err := api.Validate(&req); err != nil {
			s.respondError(w, r, err)
			return
		}

		post, err := s.Engine.CreatePost(req.ToMsg(user.ID))
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		api.WriteJSON(w, http.StatusCreated, api.PostEnvelope{
			Success: true,
			Data:    api.NewPostResponse(post, models.SummaryOf(user), nil),
		})
	}
}

// HandleUpdatePost applies a partial update. Omitted fields are left unchanged.
func (s *Server) HandleUpdatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "Post")
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		var req api.UpdatePostRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.respondError(w, r, err)
			return
		}
		if err := api.Validate(&req); err != nil {
			s.respondError(w, r, err)
			return
		}

		post, err := s.Engine.UpdatePost(req.ToMsg(id))
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		ctx, cancel := s.requestContext(r)
		defer cancel()
		s.respondPost(ctx, w, r, http.StatusOK, post)
	}
}

// HandleDeletePost removes the post and its comments.
func (s *Server) HandleDeletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "Post")
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		result, err := s.Engine.DeletePost(&actors.DeletePostMsg{PostID: id})
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.Logger.Info("post deleted", "post_id", id, "comments_deleted", result.CommentsDeleted)
		api.WriteJSON(w, http.StatusOK, api.DeleteResponse{Success: true})
	}
}

// HandleToggleLike adds the caller to the post's likes, or removes them if already there.
func (s *Server) HandleToggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "Post")
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		user, _ := middleware.UserFromContext(r.Context())

		ctx, cancel := s.requestContext(r)
		defer cancel()
		post, err := s.Store.GetPost(ctx, id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if !post.VisibleTo(user) {
			s.respondError(w, r, utils.NewNotFoundError("Post"))
			return
		}

		post, err = s.Engine.ToggleLike(&actors.ToggleLikeMsg{PostID: id, UserID: user.ID})
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, api.LikeResponse{
			Success: true,
			Liked:   post.LikedBy(user.ID),
			Likes:   len(post.Likes),
		})
	}
}

func (s *Server) respondPost(ctx context.Context, w http.ResponseWriter, r *http.Request, status int, post *models.Post) {
	data, err := s.postResponses(ctx, []*models.Post{post})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	api.WriteJSON(w, status, api.PostEnvelope{Success: true, Data: data[0]})
}

// postResponses resolves authors and derives comment lists for a batch of posts in two queries.
func (s *Server) postResponses(ctx context.Context, posts []*models.Post) ([]api.PostResponse, error) {
	authorIDs := make([]uuid.UUID, len(posts))
	postIDs := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		authorIDs[i] = p.AuthorID
		postIDs[i] = p.ID
	}

	dir, err := s.Authors.Resolve(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	if missing := dir.Missing(authorIDs); len(missing) > 0 {
		s.Logger.Debug("posts reference deleted authors", "authors", missing)
	}
	comments, err := s.Store.CommentIDsByPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	return api.NewPostResponses(posts, dir, comments), nil
}
