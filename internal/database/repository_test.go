package database

import (
	"context"
	"math"
	"testing"
	"time"

	"blog-platform/internal/models"
	"blog-platform/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func toBSOND(t *testing.T, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func mockDB(mt *mtest.T) *MongoDB {
	return &MongoDB{
		Client:   mt.Client,
		Users:    mt.Coll,
		Posts:    mt.Coll,
		Comments: mt.Coll,
	}
}

func samplePost() *models.Post {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &models.Post{
		ID:            uuid.New(),
		Title:         "Hello World",
		Content:       "body",
		Excerpt:       "short",
		AuthorID:      uuid.New(),
		Tags:          []string{"go", "mongo"},
		FeaturedImage: models.DefaultFeaturedImage,
		Status:        models.StatusPublished,
		Views:         7,
		Likes:         []uuid.UUID{uuid.New()},
		Slug:          "hello-world",
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

func TestPostDocumentConversion(t *testing.T) {
	post := samplePost()
	back, err := DocumentToPost(PostToDocument(post))
	require.NoError(t, err)
	assert.Equal(t, post, back)

	doc := PostToDocument(&models.Post{ID: uuid.New(), AuthorID: uuid.New()})
	assert.NotNil(t, doc.Tags, "tags are stored as an empty array, not null")

	_, err = DocumentToPost(&PostDocument{ID: "not-a-uuid"})
	assert.Error(t, err)
}

func TestCommentDocumentConversion(t *testing.T) {
	parent := uuid.New()
	reply := &models.Comment{
		ID:        uuid.New(),
		Content:   "reply",
		AuthorID:  uuid.New(),
		PostID:    uuid.New(),
		ParentID:  &parent,
		Likes:     []uuid.UUID{},
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	back, err := documentToComment(commentToDocument(reply))
	require.NoError(t, err)
	assert.Equal(t, reply, back)

	top := *reply
	top.ParentID = nil
	doc := commentToDocument(&top)
	assert.Nil(t, doc.ParentID)
}

func TestRepositories(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get post", func(mt *mtest.T) {
		post := samplePost()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "blog.posts", mtest.FirstBatch,
			toBSOND(t, PostToDocument(post))))

		got, err := mockDB(mt).GetPost(context.Background(), post.ID)
		require.NoError(mt, err)
		assert.Equal(mt, post.Slug, got.Slug)
		assert.Equal(mt, post.Tags, got.Tags)
		assert.Equal(mt, post.Likes, got.Likes)
		assert.True(mt, post.CreatedAt.Equal(got.CreatedAt))
	})

	mt.Run("get post not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "blog.posts", mtest.FirstBatch))

		_, err := mockDB(mt).GetPost(context.Background(), uuid.New())
		assert.True(mt, utils.IsNotFound(err))
	})

	mt.Run("insert post duplicate slug", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: blog.posts index: slug_1",
		}))

		err := mockDB(mt).InsertPost(context.Background(), samplePost())
		assert.True(mt, utils.IsErrorCode(err, utils.ErrDuplicate))
	})

	mt.Run("insert post", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, mockDB(mt).InsertPost(context.Background(), samplePost()))
	})

	mt.Run("update missing post", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := mockDB(mt).UpdatePost(context.Background(), samplePost())
		assert.True(mt, utils.IsNotFound(err))
	})

	mt.Run("increment views returns updated post", func(mt *mtest.T) {
		post := samplePost()
		post.Views = 8
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: toBSOND(t, PostToDocument(post))},
		))

		got, err := mockDB(mt).IncrementPostViews(context.Background(), post.ID)
		require.NoError(mt, err)
		assert.Equal(mt, int64(8), got.Views)
	})

	mt.Run("slug exists", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "blog.posts", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: uuid.NewString()}}))

		taken, err := mockDB(mt).SlugExists(context.Background(), "hello-world", uuid.Nil)
		require.NoError(mt, err)
		assert.True(mt, taken)
	})

	mt.Run("slug free", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "blog.posts", mtest.FirstBatch))

		taken, err := mockDB(mt).SlugExists(context.Background(), "hello-world", uuid.New())
		require.NoError(mt, err)
		assert.False(mt, taken)
	})

	mt.Run("create user duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: blog.users index: email_1",
		}))

		err := mockDB(mt).CreateUser(context.Background(), &models.User{ID: uuid.New(), Username: "alice"})
		assert.True(mt, utils.IsErrorCode(err, utils.ErrUserAlreadyExists))
	})

	mt.Run("get user by login", func(mt *mtest.T) {
		user := &models.User{
			ID:             uuid.New(),
			Username:       "alice",
			Email:          "a@x.com",
			HashedPassword: "hash",
			Role:           models.RoleAdmin,
			CreatedAt:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "blog.users", mtest.FirstBatch,
			toBSOND(t, userToDocument(user))))

		got, err := mockDB(mt).GetUserByLogin(context.Background(), "A@X.com")
		require.NoError(mt, err)
		assert.Equal(mt, user.ID, got.ID)
		assert.Equal(mt, "hash", got.HashedPassword)
		assert.True(mt, got.IsAdmin())
	})

	mt.Run("get user not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "blog.users", mtest.FirstBatch))

		_, err := mockDB(mt).GetUser(context.Background(), uuid.New())
		assert.True(mt, utils.IsErrorCode(err, utils.ErrUserNotFound))
	})

	mt.Run("has admin false", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "blog.users", mtest.FirstBatch))

		ok, err := mockDB(mt).HasAdmin(context.Background())
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("list comment authors", func(mt *mtest.T) {
		c1, a1 := uuid.New(), uuid.New()
		c2 := uuid.New()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "blog.comments", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: c1.String()}, {Key: "author", Value: a1.String()}},
			bson.D{{Key: "_id", Value: c2.String()}, {Key: "author", Value: "garbage"}},
		))

		refs, err := mockDB(mt).ListCommentAuthors(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []CommentAuthorRef{
			{CommentID: c1, AuthorID: a1},
			{CommentID: c2, AuthorID: uuid.Nil},
		}, refs)
	})

	mt.Run("post comments", func(mt *mtest.T) {
		postID := uuid.New()
		top := &models.Comment{ID: uuid.New(), Content: "first", AuthorID: uuid.New(), PostID: postID,
			Likes: []uuid.UUID{}, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "blog.comments", mtest.FirstBatch,
			toBSOND(t, commentToDocument(top))))

		comments, err := mockDB(mt).GetPostComments(context.Background(), postID)
		require.NoError(mt, err)
		require.Len(mt, comments, 1)
		assert.Equal(mt, "first", comments[0].Content)
		assert.False(mt, comments[0].IsReply())
	})
}

func TestPostFilter(t *testing.T) {
	f := postFilter(PostQuery{Statuses: []models.PostStatus{models.StatusPublished}})
	assert.Equal(t, bson.M{"status": "published"}, f)

	f = postFilter(PostQuery{Statuses: []models.PostStatus{models.StatusDraft, models.StatusPublished}})
	assert.Equal(t, bson.M{"$in": []string{"draft", "published"}}, f["status"])

	f = postFilter(PostQuery{Search: "c++ (beta)"})
	assert.NotContains(t, f, "status")
	or, ok := f["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, 3)
	re := or[0]["title"].(primitive.Regex)
	assert.Equal(t, `c\+\+ \(beta\)`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestParsePostSort(t *testing.T) {
	tests := []struct {
		raw     string
		want    PostSort
		wantErr bool
	}{
		{"", DefaultPostSort, false},
		{"-createdAt", PostSort{Field: "createdAt", Desc: true}, false},
		{"views", PostSort{Field: "views"}, false},
		{"-title", PostSort{Field: "title", Desc: true}, false},
		{"password", PostSort{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePostSort(tt.raw)
			if tt.wantErr {
				assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostQueryNormalize(t *testing.T) {
	q := PostQuery{Page: 0, Limit: 1000}
	q.Normalize()
	assert.Equal(t, int64(1), q.Page)
	assert.Equal(t, int64(MaxPageSize), q.Limit)
	assert.Equal(t, DefaultPostSort, q.Sort)

	q = PostQuery{Page: 3, Limit: 0}
	q.Normalize()
	assert.Equal(t, int64(DefaultPageSize), q.Limit)
	assert.Equal(t, int64(20), q.Skip())

	q = PostQuery{Page: math.MaxInt64, Limit: 100}
	q.Normalize()
	assert.Equal(t, int64(math.MaxInt64/100), q.Page)
	assert.Positive(t, q.Skip())

	q = PostQuery{Page: 100000000000000000, Limit: 7}
	q.Normalize()
	assert.Positive(t, q.Skip())
}
