package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentDocument represents comment data in MongoDB
type CommentDocument struct {
	ID        string    `bson:"_id"`
	Content   string    `bson:"content"`
	AuthorID  string    `bson:"author"`
	PostID    string    `bson:"post"`
	ParentID  *string   `bson:"parent"` // null for top-level comments
	Likes     []string  `bson:"likes"`
	CreatedAt time.Time `bson:"createdAt"`
}

func commentToDocument(comment *models.Comment) *CommentDocument {
	doc := &CommentDocument{
		ID:        comment.ID.String(),
		Content:   comment.Content,
		AuthorID:  comment.AuthorID.String(),
		PostID:    comment.PostID.String(),
		Likes:     uuidStrings(comment.Likes),
		CreatedAt: comment.CreatedAt,
	}
	if comment.ParentID != nil {
		parent := comment.ParentID.String()
		doc.ParentID = &parent
	}
	return doc
}

func documentToComment(doc *CommentDocument) (*models.Comment, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID: %w", err)
	}
	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid author ID: %w", err)
	}
	postID, err := uuid.Parse(doc.PostID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %w", err)
	}
	likes, err := parseUUIDs(doc.Likes)
	if err != nil {
		return nil, fmt.Errorf("invalid like reference: %w", err)
	}

	comment := &models.Comment{
		ID:        id,
		Content:   doc.Content,
		AuthorID:  authorID,
		PostID:    postID,
		Likes:     likes,
		CreatedAt: doc.CreatedAt,
	}
	if doc.ParentID != nil {
		parentID, err := uuid.Parse(*doc.ParentID)
		if err != nil {
			return nil, fmt.Errorf("invalid parent ID: %w", err)
		}
		comment.ParentID = &parentID
	}
	return comment, nil
}

func (m *MongoDB) InsertComment(ctx context.Context, comment *models.Comment) error {
	if _, err := m.Comments.InsertOne(ctx, commentToDocument(comment)); err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

func (m *MongoDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var doc CommentDocument
	err := m.Comments.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.NewAppError(utils.ErrNotFound, "Comment not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return documentToComment(&doc)
}

func (m *MongoDB) GetPostComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := m.Comments.Find(ctx, bson.M{"post": postID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer cursor.Close(ctx)

	var comments []*models.Comment
	for cursor.Next(ctx) {
		var doc CommentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode comment: %w", err)
		}
		comment, err := documentToComment(&doc)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %w", err)
	}
	return comments, nil
}

// CommentIDsByPosts groups comment ids by post, oldest comment first. Posts without comments are absent.
func (m *MongoDB) CommentIDsByPosts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "post": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := m.Comments.Find(ctx, bson.M{"post": bson.M{"$in": uuidStrings(postIDs)}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query comment ids: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			ID     string `bson:"_id"`
			PostID string `bson:"post"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode comment id: %w", err)
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid comment ID: %w", err)
		}
		postID, err := uuid.Parse(doc.PostID)
		if err != nil {
			return nil, fmt.Errorf("invalid post ID: %w", err)
		}
		out[postID] = append(out[postID], id)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %w", err)
	}
	return out, nil
}

// ListCommentAuthors scans every comment, fetching only the id and author fields.
func (m *MongoDB) ListCommentAuthors(ctx context.Context) ([]CommentAuthorRef, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "author": 1})
	cursor, err := m.Comments.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query comment authors: %w", err)
	}
	defer cursor.Close(ctx)

	var refs []CommentAuthorRef
	for cursor.Next(ctx) {
		var doc struct {
			ID       string `bson:"_id"`
			AuthorID string `bson:"author"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode comment author: %w", err)
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid comment ID: %w", err)
		}
		// An unparseable author can never resolve; uuid.Nil marks it orphaned.
		authorID, err := uuid.Parse(doc.AuthorID)
		if err != nil {
			authorID = uuid.Nil
		}
		refs = append(refs, CommentAuthorRef{CommentID: id, AuthorID: authorID})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %w", err)
	}
	return refs, nil
}

func (m *MongoDB) SetCommentAuthor(ctx context.Context, commentID, authorID uuid.UUID) error {
	result, err := m.Comments.UpdateOne(ctx,
		bson.M{"_id": commentID.String()},
		bson.M{"$set": bson.M{"author": authorID.String()}})
	if err != nil {
		return fmt.Errorf("failed to update comment author: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("Comment")
	}
	return nil
}

func (m *MongoDB) DeletePostComments(ctx context.Context, postID uuid.UUID) (int64, error) {
	result, err := m.Comments.DeleteMany(ctx, bson.M{"post": postID.String()})
	if err != nil {
		return 0, fmt.Errorf("failed to delete comments: %w", err)
	}
	return result.DeletedCount, nil
}
