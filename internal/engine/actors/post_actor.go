package actors

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"blog-platform/internal/database"
	"blog-platform/internal/models"
	"blog-platform/internal/slug"
	"blog-platform/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// MaxSlugAttempts bounds retries when a slug is taken between the existence check and the write.
const MaxSlugAttempts = 5

// Message types for Post operations
type (
	CreatePostMsg struct {
		Title         string
		Content       string
		Excerpt       string
		AuthorID      uuid.UUID
		Tags          []string
		FeaturedImage string
		Status        models.PostStatus // empty means published
	}

	// UpdatePostMsg carries a partial update. Nil fields are left unchanged.
	UpdatePostMsg struct {
		PostID        uuid.UUID
		Title         *string
		Content       *string
		Excerpt       *string
		Tags          *[]string
		FeaturedImage *string
		Status        *models.PostStatus
	}

	DeletePostMsg struct {
		PostID uuid.UUID
	}

	ToggleLikeMsg struct {
		PostID uuid.UUID
		UserID uuid.UUID
	}

	DeletePostResult struct {
		CommentsDeleted int64
	}
)

// PostActor serializes every post write in the process, so slug allocation
// never races with itself. Races with other processes are caught by the
// unique slug index and retried.
type PostActor struct {
	store     database.PostStore
	comments  database.CommentStore
	metrics   *utils.MetricsCollector
	logger    *slog.Logger
	dbTimeout time.Duration
}

func NewPostActor(store database.Store, metrics *utils.MetricsCollector, logger *slog.Logger, dbTimeout time.Duration) actor.Actor {
	return &PostActor{
		store:     store,
		comments:  store,
		metrics:   metrics,
		logger:    logger.With("actor", "post"),
		dbTimeout: dbTimeout,
	}
}

func (a *PostActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		a.logger.Debug("PostActor started")
	case *actor.Stopping:
		a.logger.Debug("PostActor stopping")
	case *CreatePostMsg:
		a.handleCreatePost(context, msg)
	case *UpdatePostMsg:
		a.handleUpdatePost(context, msg)
	case *DeletePostMsg:
		a.handleDeletePost(context, msg)
	case *ToggleLikeMsg:
		a.handleToggleLike(context, msg)
	}
}

func (a *PostActor) dbContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.dbTimeout)
}

func (a *PostActor) handleCreatePost(context actor.Context, msg *CreatePostMsg) {
	startTime := time.Now()

	now := time.Now().UTC()
	post := &models.Post{
		ID:            uuid.New(),
		Title:         strings.TrimSpace(msg.Title),
		Content:       msg.Content,
		Excerpt:       strings.TrimSpace(msg.Excerpt),
		AuthorID:      msg.AuthorID,
		Tags:          cleanTags(msg.Tags),
		FeaturedImage: strings.TrimSpace(msg.FeaturedImage),
		Status:        msg.Status,
		Likes:         []uuid.UUID{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if post.FeaturedImage == "" {
		post.FeaturedImage = models.DefaultFeaturedImage
	}
	if post.Status == "" {
		post.Status = models.StatusPublished
	}
	if err := validatePost(post); err != nil {
		context.Respond(err)
		return
	}

	if err := a.writeWithSlug(post, uuid.Nil, a.store.InsertPost); err != nil {
		context.Respond(err)
		return
	}

	a.logger.Info("post created", "post_id", post.ID, "slug", post.Slug)
	a.metrics.AddOperationLatency("create_post", time.Since(startTime))
	context.Respond(post)
}

func (a *PostActor) handleUpdatePost(context actor.Context, msg *UpdatePostMsg) {
	startTime := time.Now()

	ctx, cancel := a.dbContext()
	post, err := a.store.GetPost(ctx, msg.PostID)
	cancel()
	if err != nil {
		context.Respond(err)
		return
	}

	titleChanged := false
	if msg.Title != nil {
		title := strings.TrimSpace(*msg.Title)
		titleChanged = title != post.Title
		post.Title = title
	}
	if msg.Content != nil {
		post.Content = *msg.Content
	}
	if msg.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*msg.Excerpt)
	}
	if msg.Tags != nil {
		post.Tags = cleanTags(*msg.Tags)
	}
	if msg.FeaturedImage != nil {
		post.FeaturedImage = strings.TrimSpace(*msg.FeaturedImage)
		if post.FeaturedImage == "" {
			post.FeaturedImage = models.DefaultFeaturedImage
		}
	}
	if msg.Status != nil {
		post.Status = *msg.Status
	}
	post.UpdatedAt = time.Now().UTC()

	if err := validatePost(post); err != nil {
		context.Respond(err)
		return
	}

	if titleChanged {
		err = a.writeWithSlug(post, post.ID, a.store.UpdatePost)
	} else {
		ctx, cancel := a.dbContext()
		err = a.store.UpdatePost(ctx, post)
		cancel()
	}
	if err != nil {
		context.Respond(err)
		return
	}

	a.metrics.AddOperationLatency("update_post", time.Since(startTime))
	context.Respond(post)
}

func (a *PostActor) handleDeletePost(context actor.Context, msg *DeletePostMsg) {
	startTime := time.Now()
	ctx, cancel := a.dbContext()
	defer cancel()

	if err := a.store.DeletePost(ctx, msg.PostID); err != nil {
		context.Respond(err)
		return
	}
	// The post is already gone; leftover comments are unreachable, so a failure here is only logged.
	n, err := a.comments.DeletePostComments(ctx, msg.PostID)
	if err != nil {
		a.logger.Error("failed to delete comments of deleted post", "post_id", msg.PostID, "error", err)
	}

	a.metrics.AddOperationLatency("delete_post", time.Since(startTime))
	context.Respond(&DeletePostResult{CommentsDeleted: n})
}

func (a *PostActor) handleToggleLike(context actor.Context, msg *ToggleLikeMsg) {
	ctx, cancel := a.dbContext()
	defer cancel()

	post, err := a.store.GetPost(ctx, msg.PostID)
	if err != nil {
		context.Respond(err)
		return
	}
	updated, err := a.store.SetPostLike(ctx, msg.PostID, msg.UserID, !post.LikedBy(msg.UserID))
	if err != nil {
		context.Respond(err)
		return
	}
	context.Respond(updated)
}

// writeWithSlug allocates a slug for post.Title and writes the post, retrying
// with a freshly allocated slug when the write reports a duplicate.
func (a *PostActor) writeWithSlug(post *models.Post, exclude uuid.UUID, write func(context.Context, *models.Post) error) error {
	base := slug.Make(post.Title)
	exists := func(ctx context.Context, s string) (bool, error) {
		return a.store.SlugExists(ctx, s, exclude)
	}

	for attempt := 1; attempt <= MaxSlugAttempts; attempt++ {
		ctx, cancel := a.dbContext()
		candidate, collisions, err := slug.Unique(ctx, base, exists)
		a.metrics.AddSlugCollisions(collisions)
		if err != nil {
			cancel()
			return err
		}

		post.Slug = candidate
		err = write(ctx, post)
		cancel()
		if err == nil {
			return nil
		}
		if !utils.IsErrorCode(err, utils.ErrDuplicate) {
			return err
		}
		a.metrics.AddSlugCollisions(1)
		a.logger.Warn("slug taken before write, retrying", "slug", candidate, "attempt", attempt)
	}
	return utils.NewAppError(utils.ErrDuplicate, "Could not allocate a unique slug", nil)
}

func validatePost(post *models.Post) error {
	switch {
	case post.Title == "":
		return utils.NewValidationError("Title is required")
	case strings.TrimSpace(post.Content) == "":
		return utils.NewValidationError("Content is required")
	case utf8.RuneCountInString(post.Excerpt) > models.MaxExcerptLength:
		return utils.NewValidationError("Excerpt cannot be more than 500 characters")
	case !post.Status.Valid():
		return utils.NewValidationError("Status must be draft or published")
	}
	return nil
}

// cleanTags trims tags and drops empty and repeated ones, keeping order.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
