package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostDocument represents the MongoDB schema for a post.
type PostDocument struct {
	ID            string    `bson:"_id"`
	Title         string    `bson:"title"`
	Content       string    `bson:"content"`
	Excerpt       string    `bson:"excerpt,omitempty"`
	AuthorID      string    `bson:"author"`
	Tags          []string  `bson:"tags"`
	FeaturedImage string    `bson:"featuredImage"`
	Status        string    `bson:"status"`
	Views         int64     `bson:"views"`
	Likes         []string  `bson:"likes"`
	Slug          string    `bson:"slug"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// PostToDocument converts a Post model to a MongoDB document.
func PostToDocument(post *models.Post) *PostDocument {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	return &PostDocument{
		ID:            post.ID.String(),
		Title:         post.Title,
		Content:       post.Content,
		Excerpt:       post.Excerpt,
		AuthorID:      post.AuthorID.String(),
		Tags:          tags,
		FeaturedImage: post.FeaturedImage,
		Status:        string(post.Status),
		Views:         post.Views,
		Likes:         uuidStrings(post.Likes),
		Slug:          post.Slug,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
}

// DocumentToPost converts a MongoDB document to a Post model.
func DocumentToPost(doc *PostDocument) (*models.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %w", err)
	}
	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %w", err)
	}
	likes, err := parseUUIDs(doc.Likes)
	if err != nil {
		return nil, fmt.Errorf("invalid like reference: %w", err)
	}

	return &models.Post{
		ID:            id,
		Title:         doc.Title,
		Content:       doc.Content,
		Excerpt:       doc.Excerpt,
		AuthorID:      authorID,
		Tags:          doc.Tags,
		FeaturedImage: doc.FeaturedImage,
		Status:        models.PostStatus(doc.Status),
		Views:         doc.Views,
		Likes:         likes,
		Slug:          doc.Slug,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

func duplicateSlugError(err error) error {
	return utils.NewAppError(utils.ErrDuplicate, "Slug already in use", err)
}

// InsertPost stores a new post. A slug collision is reported as DUPLICATE so callers can retry.
func (m *MongoDB) InsertPost(ctx context.Context, post *models.Post) error {
	_, err := m.Posts.InsertOne(ctx, PostToDocument(post))
	if mongo.IsDuplicateKeyError(err) {
		return duplicateSlugError(err)
	}
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (m *MongoDB) UpdatePost(ctx context.Context, post *models.Post) error {
	doc := PostToDocument(post)
	update := bson.M{"$set": bson.M{
		"title":         doc.Title,
		"content":       doc.Content,
		"excerpt":       doc.Excerpt,
		"tags":          doc.Tags,
		"featuredImage": doc.FeaturedImage,
		"status":        doc.Status,
		"slug":          doc.Slug,
		"updatedAt":     doc.UpdatedAt,
	}}

	result, err := m.Posts.UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if mongo.IsDuplicateKeyError(err) {
		return duplicateSlugError(err)
	}
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("Post")
	}
	return nil
}

// GetPost retrieves a post by its ID.
func (m *MongoDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc PostDocument
	err := m.Posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return DocumentToPost(&doc)
}

// IncrementPostViews bumps the view counter atomically and returns the post as stored afterwards.
func (m *MongoDB) IncrementPostViews(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return m.findAndUpdatePost(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
}

func (m *MongoDB) SetPostLike(ctx context.Context, postID, userID uuid.UUID, liked bool) (*models.Post, error) {
	op := "$pull"
	if liked {
		op = "$addToSet"
	}
	return m.findAndUpdatePost(ctx, postID, bson.M{op: bson.M{"likes": userID.String()}})
}

func (m *MongoDB) findAndUpdatePost(ctx context.Context, id uuid.UUID, update bson.M) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc PostDocument
	err := m.Posts.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return DocumentToPost(&doc)
}

func (m *MongoDB) DeletePost(ctx context.Context, id uuid.UUID) error {
	result, err := m.Posts.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("Post")
	}
	return nil
}

// ListPosts returns one page of posts matching q and the total number of matches.
func (m *MongoDB) ListPosts(ctx context.Context, q PostQuery) ([]*models.Post, int64, error) {
	q.Normalize()
	filter := postFilter(q)

	total, err := m.Posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	opts := options.Find().
		SetSort(postSortDoc(q.Sort)).
		SetSkip(q.Skip()).
		SetLimit(q.Limit)

	cursor, err := m.Posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("database query failed: %w", err)
	}
	defer cursor.Close(ctx)

	posts := make([]*models.Post, 0, q.Limit)
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode post: %w", err)
		}
		post, err := DocumentToPost(&doc)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor iteration failed: %w", err)
	}
	return posts, total, nil
}

// postFilter builds the status and search conditions. Search text is matched literally.
func postFilter(q PostQuery) bson.M {
	filter := bson.M{}
	switch len(q.Statuses) {
	case 0:
	case 1:
		filter["status"] = string(q.Statuses[0])
	default:
		statuses := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			statuses[i] = string(s)
		}
		filter["status"] = bson.M{"$in": statuses}
	}

	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = []bson.M{
			{"title": pattern},
			{"content": pattern},
			{"tags": pattern},
		}
	}
	return filter
}

func postSortDoc(s PostSort) bson.D {
	dir := 1
	if s.Desc {
		dir = -1
	}
	// _id breaks ties so paging is stable.
	return bson.D{{Key: s.Field, Value: dir}, {Key: "_id", Value: dir}}
}

func (m *MongoDB) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	filter := bson.M{"slug": slug}
	if exclude != uuid.Nil {
		filter["_id"] = bson.M{"$ne": exclude.String()}
	}
	err := m.Posts.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return true, nil
}

func parseUUIDs(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
