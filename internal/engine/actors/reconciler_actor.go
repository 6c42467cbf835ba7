package actors

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blog-platform/internal/database"
	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel account that orphaned comments are reassigned to.
const (
	SentinelUsername = "deleted_user"
	SentinelEmail    = "deleted@example.com"
	SentinelBio      = "Deleted user"
)

type (
	FixOrphanedCommentsMsg struct{}

	ReconcileResult struct {
		Fixed      int
		SentinelID uuid.UUID // uuid.Nil when nothing needed fixing
	}
)

// ReconcilerActor repoints comments whose author no longer exists to the
// sentinel account. Runs are serialized by the mailbox.
type ReconcilerActor struct {
	store   database.Store
	metrics *utils.MetricsCollector
	logger  *slog.Logger
	timeout time.Duration
}

func NewReconcilerActor(store database.Store, metrics *utils.MetricsCollector, logger *slog.Logger, timeout time.Duration) actor.Actor {
	return &ReconcilerActor{
		store:   store,
		metrics: metrics,
		logger:  logger.With("actor", "reconciler"),
		timeout: timeout,
	}
}

func (a *ReconcilerActor) Receive(context actor.Context) {
	switch context.Message().(type) {
	case *FixOrphanedCommentsMsg:
		startTime := time.Now()
		result, err := a.fixOrphanedComments()
		if err != nil {
			context.Respond(err)
			return
		}
		a.metrics.AddOperationLatency("fix_orphaned_comments", time.Since(startTime))
		context.Respond(result)
	}
}

func (a *ReconcilerActor) fixOrphanedComments() (*ReconcileResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	refs, err := a.store.ListCommentAuthors(ctx)
	if err != nil {
		return nil, err
	}
	userIDs, err := a.store.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		known[id] = struct{}{}
	}
	var orphans []database.CommentAuthorRef
	for _, ref := range refs {
		if _, ok := known[ref.AuthorID]; !ok {
			orphans = append(orphans, ref)
		}
	}

	if len(orphans) == 0 {
		a.logger.Info("no orphaned comments found", "comments", len(refs))
		return &ReconcileResult{}, nil
	}

	sentinel, err := a.sentinelUser(ctx)
	if err != nil {
		return nil, err
	}

	fixed := 0
	for _, ref := range orphans {
		if err := a.store.SetCommentAuthor(ctx, ref.CommentID, sentinel.ID); err != nil {
			// Already rewritten comments stay rewritten; a rerun picks up the rest.
			a.logger.Error("orphan repair aborted", "fixed", fixed, "remaining", len(orphans)-fixed, "error", err)
			a.metrics.AddOrphansFixed(fixed)
			return nil, fmt.Errorf("failed to reassign comment %s: %w", ref.CommentID, err)
		}
		fixed++
	}

	a.metrics.AddOrphansFixed(fixed)
	a.logger.Info("orphaned comments reassigned", "fixed", fixed, "sentinel_id", sentinel.ID)
	return &ReconcileResult{Fixed: fixed, SentinelID: sentinel.ID}, nil
}

// sentinelUser finds or creates the deleted-user account. A concurrent
// create by another process is resolved by reading the winner back.
func (a *ReconcilerActor) sentinelUser(ctx context.Context) (*models.User, error) {
	user, err := a.store.GetUserByUsername(ctx, SentinelUsername)
	if err == nil {
		return user, nil
	}
	if !utils.IsNotFound(err) {
		return nil, err
	}

	// Nobody knows this password, so the account cannot be logged into.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash sentinel password: %w", err)
	}
	user = &models.User{
		ID:             uuid.New(),
		Username:       SentinelUsername,
		Email:          SentinelEmail,
		HashedPassword: string(hash),
		Role:           models.RoleUser,
		Bio:            SentinelBio,
		CreatedAt:      time.Now().UTC(),
	}
	err = a.store.CreateUser(ctx, user)
	if utils.IsErrorCode(err, utils.ErrUserAlreadyExists) {
		return a.store.GetUserByUsername(ctx, SentinelUsername)
	}
	if err != nil {
		return nil, err
	}
	a.logger.Info("created sentinel user", "user_id", user.ID)
	return user, nil
}
