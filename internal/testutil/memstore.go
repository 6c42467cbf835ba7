// Package testutil provides an in-memory database.Store for tests.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"blog-platform/internal/database"
	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/google/uuid"
)

// MemoryStore mirrors the MongoDB repositories, including the unique
// indexes on username, email and slug.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*models.User
	posts    map[uuid.UUID]*models.Post
	comments map[uuid.UUID]*models.Comment

	// PingErr is returned by Ping when set.
	PingErr error
	// SlugRaces makes the next n post writes fail with a duplicate-slug error,
	// as if another process had taken the slug between check and write.
	SlugRaces int
	// FailCommentAuthorAfter makes SetCommentAuthor fail once this many calls
	// have succeeded. Zero disables it.
	FailCommentAuthorAfter int
	commentAuthorWrites    int
}

var _ database.Store = (*MemoryStore)(nil)

var ErrInjected = errors.New("injected failure")

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]*models.User),
		posts:    make(map[uuid.UUID]*models.Post),
		comments: make(map[uuid.UUID]*models.Comment),
	}
}

func (s *MemoryStore) Ping(context.Context) error { return s.PingErr }

// DeleteUser removes a user without touching their posts or comments.
func (s *MemoryStore) DeleteUser(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	c.Likes = append([]uuid.UUID(nil), p.Likes...)
	return &c
}

func cloneComment(cm *models.Comment) *models.Comment {
	c := *cm
	c.Likes = append([]uuid.UUID(nil), cm.Likes...)
	if cm.ParentID != nil {
		parent := *cm.ParentID
		c.ParentID = &parent
	}
	return &c
}

// Users

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) || u.ID == user.ID {
			return utils.NewAppError(utils.ErrUserAlreadyExists, "User already exists", nil)
		}
	}
	c := cloneUser(user)
	if c.Role == "" {
		c.Role = models.RoleUser
	}
	s.users[c.ID] = c
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
}

func (s *MemoryStore) findUser(match func(*models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Username == username })
}

func (s *MemoryStore) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool {
		return u.Username == login || u.Email == strings.ToLower(login)
	})
}

func (s *MemoryStore) UserExists(_ context.Context, username, email string) (bool, error) {
	_, err := s.findUser(func(u *models.User) bool {
		return u.Username == username || u.Email == strings.ToLower(email)
	})
	return err == nil, nil
}

func (s *MemoryStore) GetUsersByIDs(_ context.Context, ids []uuid.UUID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (s *MemoryStore) ListUserIDs(context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) HasAdmin(context.Context) (bool, error) {
	_, err := s.findUser(func(u *models.User) bool { return u.IsAdmin() })
	return err == nil, nil
}

// Posts

func (s *MemoryStore) slugTakenLocked(slug string, exclude uuid.UUID) bool {
	for id, p := range s.posts {
		if id != exclude && p.Slug == slug {
			return true
		}
	}
	return false
}

func (s *MemoryStore) raceLocked() bool {
	if s.SlugRaces > 0 {
		s.SlugRaces--
		return true
	}
	return false
}

func (s *MemoryStore) InsertPost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raceLocked() || s.slugTakenLocked(post.Slug, uuid.Nil) {
		return utils.NewAppError(utils.ErrDuplicate, "Slug already in use", nil)
	}
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (s *MemoryStore) UpdatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.posts[post.ID]
	if !ok {
		return utils.NewNotFoundError("Post")
	}
	if s.raceLocked() || s.slugTakenLocked(post.Slug, post.ID) {
		return utils.NewAppError(utils.ErrDuplicate, "Slug already in use", nil)
	}
	updated := clonePost(post)
	updated.Views = existing.Views
	updated.Likes = existing.Likes
	updated.CreatedAt = existing.CreatedAt
	s.posts[post.ID] = updated
	return nil
}

func (s *MemoryStore) GetPost(_ context.Context, id uuid.UUID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.posts[id]; ok {
		return clonePost(p), nil
	}
	return nil, utils.NewNotFoundError("Post")
}

func (s *MemoryStore) IncrementPostViews(_ context.Context, id uuid.UUID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, utils.NewNotFoundError("Post")
	}
	p.Views++
	return clonePost(p), nil
}

func (s *MemoryStore) SetPostLike(_ context.Context, postID, userID uuid.UUID, liked bool) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil, utils.NewNotFoundError("Post")
	}
	likes := make([]uuid.UUID, 0, len(p.Likes)+1)
	for _, id := range p.Likes {
		if id != userID {
			likes = append(likes, id)
		}
	}
	if liked {
		likes = append(likes, userID)
	}
	p.Likes = likes
	return clonePost(p), nil
}

func (s *MemoryStore) DeletePost(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return utils.NewNotFoundError("Post")
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) ListPosts(_ context.Context, q database.PostQuery) ([]*models.Post, int64, error) {
	q.Normalize()
	s.mu.RLock()
	var matched []*models.Post
	for _, p := range s.posts {
		if matchesQuery(p, q) {
			matched = append(matched, clonePost(p))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if q.Sort.Desc {
			a, b = b, a
		}
		less, equal := comparePosts(a, b, q.Sort.Field)
		if equal {
			return a.ID.String() < b.ID.String()
		}
		return less
	})

	total := int64(len(matched))
	start := q.Skip()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func matchesQuery(p *models.Post, q database.PostQuery) bool {
	if len(q.Statuses) > 0 {
		ok := false
		for _, st := range q.Statuses {
			if p.Status == st {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	if strings.Contains(strings.ToLower(p.Title), needle) || strings.Contains(strings.ToLower(p.Content), needle) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func comparePosts(a, b *models.Post, field string) (less, equal bool) {
	switch field {
	case "updatedAt":
		return a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
	case "views":
		return a.Views < b.Views, a.Views == b.Views
	case "title":
		return a.Title < b.Title, a.Title == b.Title
	default:
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	}
}

func (s *MemoryStore) SlugExists(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slugTakenLocked(slug, exclude), nil
}

// Comments

func (s *MemoryStore) InsertComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.ID] = cloneComment(comment)
	return nil
}

func (s *MemoryStore) GetComment(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.comments[id]; ok {
		return cloneComment(c), nil
	}
	return nil, utils.NewNotFoundError("Comment")
}

func (s *MemoryStore) sortedComments(match func(*models.Comment) bool) []*models.Comment {
	var out []*models.Comment
	for _, c := range s.comments {
		if match(c) {
			out = append(out, cloneComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) GetPostComments(_ context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedComments(func(c *models.Comment) bool { return c.PostID == postID }), nil
}

func (s *MemoryStore) CommentIDsByPosts(_ context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	want := make(map[uuid.UUID]bool, len(postIDs))
	for _, id := range postIDs {
		want[id] = true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID][]uuid.UUID)
	for _, c := range s.sortedComments(func(c *models.Comment) bool { return want[c.PostID] }) {
		out[c.PostID] = append(out[c.PostID], c.ID)
	}
	return out, nil
}

func (s *MemoryStore) ListCommentAuthors(context.Context) ([]database.CommentAuthorRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]database.CommentAuthorRef, 0, len(s.comments))
	for _, c := range s.sortedComments(func(*models.Comment) bool { return true }) {
		refs = append(refs, database.CommentAuthorRef{CommentID: c.ID, AuthorID: c.AuthorID})
	}
	return refs, nil
}

func (s *MemoryStore) SetCommentAuthor(_ context.Context, commentID, authorID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCommentAuthorAfter > 0 && s.commentAuthorWrites >= s.FailCommentAuthorAfter {
		return ErrInjected
	}
	c, ok := s.comments[commentID]
	if !ok {
		return utils.NewNotFoundError("Comment")
	}
	c.AuthorID = authorID
	s.commentAuthorWrites++
	return nil
}

func (s *MemoryStore) DeletePostComments(_ context.Context, postID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, c := range s.comments {
		if c.PostID == postID {
			delete(s.comments, id)
			n++
		}
	}
	return n, nil
}
