package engine

import (
	"fmt"
	"log/slog"
	"time"

	"blog-platform/internal/database"
	"blog-platform/internal/engine/actors"
	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// reconcileTimeout covers a full scan of the comment collection.
const reconcileTimeout = 2 * time.Minute

// Engine coordinates communication between actors
type Engine struct {
	context        *actor.RootContext
	postActor      *actor.PID
	reconciler     *actor.PID
	requestTimeout time.Duration
}

func NewEngine(system *actor.ActorSystem, store database.Store, metrics *utils.MetricsCollector, logger *slog.Logger, requestTimeout time.Duration) *Engine {
	postProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewPostActor(store, metrics, logger, requestTimeout)
	})
	reconcilerProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewReconcilerActor(store, metrics, logger, reconcileTimeout)
	})

	return &Engine{
		context:        system.Root,
		postActor:      system.Root.Spawn(postProps),
		reconciler:     system.Root.Spawn(reconcilerProps),
		requestTimeout: requestTimeout,
	}
}

// Stop stops both actors, letting in-flight messages finish.
func (e *Engine) Stop() {
	e.context.Stop(e.postActor)
	e.context.Stop(e.reconciler)
}

func (e *Engine) request(pid *actor.PID, name string, msg interface{}, timeout time.Duration) (interface{}, error) {
	// The actor gets the full request timeout for its own store calls, so
	// the future is given a little more.
	result, err := e.context.RequestFuture(pid, msg, timeout+time.Second).Result()
	if err != nil {
		return nil, utils.NewActorTimeoutError(name, err)
	}
	if err, ok := result.(error); ok {
		return nil, err
	}
	return result, nil
}

func (e *Engine) CreatePost(msg *actors.CreatePostMsg) (*models.Post, error) {
	result, err := e.request(e.postActor, "post", msg, e.writeTimeout())
	if err != nil {
		return nil, err
	}
	return asPost(result)
}

func (e *Engine) UpdatePost(msg *actors.UpdatePostMsg) (*models.Post, error) {
	result, err := e.request(e.postActor, "post", msg, e.writeTimeout())
	if err != nil {
		return nil, err
	}
	return asPost(result)
}

func (e *Engine) DeletePost(msg *actors.DeletePostMsg) (*actors.DeletePostResult, error) {
	result, err := e.request(e.postActor, "post", msg, 2*e.requestTimeout)
	if err != nil {
		return nil, err
	}
	res, ok := result.(*actors.DeletePostResult)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T from post actor", result)
	}
	return res, nil
}

func (e *Engine) ToggleLike(msg *actors.ToggleLikeMsg) (*models.Post, error) {
	result, err := e.request(e.postActor, "post", msg, e.requestTimeout)
	if err != nil {
		return nil, err
	}
	return asPost(result)
}

func (e *Engine) FixOrphanedComments() (*actors.ReconcileResult, error) {
	result, err := e.request(e.reconciler, "reconciler", &actors.FixOrphanedCommentsMsg{}, reconcileTimeout)
	if err != nil {
		return nil, err
	}
	res, ok := result.(*actors.ReconcileResult)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T from reconciler", result)
	}
	return res, nil
}

// writeTimeout allows for every slug retry plus the initial read of an update.
func (e *Engine) writeTimeout() time.Duration {
	return time.Duration(actors.MaxSlugAttempts+1) * e.requestTimeout
}

func asPost(result interface{}) (*models.Post, error) {
	post, ok := result.(*models.Post)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T from post actor", result)
	}
	return post, nil
}
