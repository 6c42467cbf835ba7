package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"blog-platform/internal/api"
	"blog-platform/internal/config"
	"blog-platform/internal/engine"
	"blog-platform/internal/models"
	"blog-platform/internal/testutil"
	"blog-platform/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	t       *testing.T
	server  *Server
	handler http.Handler
	store   *testutil.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server:         config.DefaultConfig(),
		Database:       config.DefaultDatabaseConfig(),
		Auth:           &config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		AllowedOrigins: []string{"*"},
	}
	cfg.Server.UploadsDir = t.TempDir()

	store := testutil.NewMemoryStore()
	metrics := utils.NewMetricsCollector()
	logger := utils.DiscardLogger()
	eng := engine.NewEngine(actor.NewActorSystem(), store, metrics, logger, 2*time.Second)
	t.Cleanup(eng.Stop)

	server := NewServer(cfg, eng, store, metrics, logger)
	return &testEnv{t: t, server: server, handler: server.NewRouter(), store: store}
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

// seedUser stores a user directly and returns it with a valid token.
func (e *testEnv) seedUser(username string, role models.Role) (*models.User, string) {
	e.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(e.t, err)
	user := &models.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: string(hash),
		Role:           role,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(e.t, e.store.CreateUser(context.Background(), user))
	token, err := e.server.Tokens.GenerateToken(user.ID)
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) createPost(token string, body map[string]interface{}) api.PostResponse {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/posts", token, body)
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	var env api.PostEnvelope
	decode(e.t, rec, &env)
	return env.Data
}

func (e *testEnv) createComment(token string, postID uuid.UUID, body map[string]interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.do(http.MethodPost, "/api/posts/"+postID.String()+"/comments", token, body)
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	decode(t, rec, &resp)
	assert.False(t, resp.Success)
	return resp
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "A@X.com", "password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg api.AuthResponse
	decode(t, rec, &reg)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice", reg.User.Username)
	assert.Equal(t, "a@x.com", reg.User.Email)
	assert.Equal(t, models.RoleUser, reg.User.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "other@x.com", "password": "pw123456",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", errorOf(t, rec).Error)

	rec = env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob", "email": "bob@x.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, login := range []string{"alice", "a@x.com"} {
		rec = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": login, "password": "pw123456"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp api.AuthResponse
		decode(t, rec, &resp)
		assert.Equal(t, "Login successful", resp.Message)
		assert.Equal(t, reg.User.ID, resp.User.ID)
	}

	rec = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@x.com", "password": "pw123456"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid credentials", errorOf(t, rec).Error)

	rec = env.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "nobody", "password": "pw123456"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/auth/me", reg.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me api.UserResponse
	decode(t, rec, &me)
	assert.Equal(t, "alice", me.Username)

	rec = env.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePost_SlugScenario(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser("admin", models.RoleAdmin)

	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "email": "a@x.com", "password": "pw123456",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var alice api.AuthResponse
	decode(t, rec, &alice)

	first := env.createPost(adminToken, map[string]interface{}{"title": "Hello World", "content": "..."})
	second := env.createPost(adminToken, map[string]interface{}{"title": "Hello World", "content": "..."})
	assert.Equal(t, "hello-world", first.Slug)
	assert.Equal(t, "hello-world-1", second.Slug)
	assert.Equal(t, models.StatusPublished, first.Status)
	assert.Equal(t, models.DefaultFeaturedImage, first.FeaturedImage)
	assert.Equal(t, "admin", first.Author.Username)
	assert.Empty(t, first.Comments)

	rec = env.do(http.MethodPost, "/api/posts", alice.Token, map[string]interface{}{"title": "Mine", "content": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(http.MethodPost, "/api/posts", "", map[string]interface{}{"title": "Mine", "content": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/posts", adminToken, map[string]interface{}{"content": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title is required", errorOf(t, rec).Error)
}

func TestGetPost_IncrementsViews(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser("admin", models.RoleAdmin)
	post := env.createPost(adminToken, map[string]interface{}{"title": "Counted", "content": "c"})

	var last api.PostEnvelope
	for i := 0; i < 3; i++ {
		rec := env.do(http.MethodGet, "/api/posts/"+post.ID.String(), "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &last)
	}
	assert.Equal(t, post.Views+3, last.Data.Views)

	rec := env.do(http.MethodGet, "/api/posts/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(http.MethodGet, "/api/posts/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", errorOf(t, rec).Error)
}

func TestDraftVisibility(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser("admin", models.RoleAdmin)
	_, memberToken := env.seedUser("member", models.RoleUser)

	env.createPost(adminToken, map[string]interface{}{"title": "Public", "content": "c"})
	draft := env.createPost(adminToken, map[string]interface{}{"title": "Secret", "content": "c", "status": "draft"})

	list := func(path, token string) api.PostListResponse {
		rec := env.do(http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp api.PostListResponse
		decode(t, rec, &resp)
		return resp
	}

	for _, token := range []string{"", memberToken} {
		resp := list("/api/posts?status=draft", token)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Public", resp.Data[0].Title)
		for _, p := range resp.Data {
			assert.NotEqual(t, models.StatusDraft, p.Status)
		}

		rec := env.do(http.MethodGet, "/api/posts/"+draft.ID.String(), token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	resp := list("/api/posts?status=draft", adminToken)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Secret", resp.Data[0].Title)
	assert.Len(t, list("/api/posts?status=all", adminToken).Data, 2)
	assert.Len(t, list("/api/posts", adminToken).Data, 1)

	rec := env.do(http.MethodGet, "/api/posts/"+draft.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/posts?status=bogus", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPosts_PaginationSearchSort(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser("admin", models.RoleAdmin)

	titles := []string{"Go generics", "Rust lifetimes", "Go channels", "Mongo indexes", "Tagged"}
	for _, title := range titles {
		body := map[string]interface{}{"title": title, "content": "body text"}
		if title == "Tagged" {
			body["tags"] = []string{"golang"}
		}
		env.createPost(adminToken, body)
		time.Sleep(2 * time.Millisecond)
	}

	rec := env.do(http.MethodGet, "/api/posts?page=2&limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page api.PostListResponse
	decode(t, rec, &page)
	assert.True(t, page.Success)
	assert.Equal(t, 2, page.Count)
	assert.Equal(t, api.Pagination{Page: 2, Limit: 2, Total: 5, Pages: 3}, page.Pagination)
	assert.Equal(t, "Go channels", page.Data[0].Title, "newest first by default")

	rec = env.do(http.MethodGet, "/api/posts?search=GO", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found api.PostListResponse
	decode(t, rec, &found)
	assert.Equal(t, int64(4), found.Pagination.Total, "title and tag matches, case-insensitive")

	rec = env.do(http.MethodGet, "/api/posts?search=.*", "", nil)
	var literal api.PostListResponse
	decode(t, rec, &literal)
	assert.Zero(t, literal.Pagination.Total, "search text is not a pattern")

	rec = env.do(http.MethodGet, "/api/posts?sort=title&limit=1", "", nil)
	var sorted api.PostListResponse
	decode(t, rec, &sorted)
	require.Len(t, sorted.Data, 1)
	assert.Equal(t, "Go channels", sorted.Data[0].Title)

	rec = env.do(http.MethodGet, "/api/posts?sort=password", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, path := range []string{
		"/api/posts?page=100000000000000000&limit=100",
		"/api/posts?page=9223372036854775807",
	} {
		rec = env.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		var far api.PostListResponse
		decode(t, rec, &far)
		assert.Equal(t, 0, far.Count)
		assert.Equal(t, int64(5), far.Pagination.Total)
		assert.Contains(t, rec.Body.String(), `"data":[]`)
	}
}

func TestUpdatePost(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser("admin", models.RoleAdmin)
	_, memberToken := env.seedUser("member", models.RoleUser)
	post := env.createPost(adminToken, map[string]interface{}{
		"title": "First Title", "content": "c", "excerpt": "ex", "tags": []string{"a", "b"},
	})
	path := "/api/posts/" + post.ID.String()

	update := func(body map[string]interface{}) api.PostResponse {
		rec := env.do(http.MethodPut, path, adminToken, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp api.PostEnvelope
		decode(t, rec, &resp)
		return resp.Data
	}

	got := update(map[string]interface{}{"content": "new content"})
	assert.Equal(t, "first-title", got.Slug)
	assert.Equal(t, "new content", got.Content)
	assert.Equal(t, []string{"a", "b"}, got.Tags)

	got = update(map[string]interface{}{"title": "Second Title"})
	assert.Equal(t, "second-title", got.Slug)
	assert.Equal(t, "new content", got.Content)

	got = update(map[string]interface{}{"excerpt": "", "tags": []string{}})
	assert.Empty(t, got.Excerpt)
	assert.Empty(t, got.Tags)

	rec := env.do(http.MethodPut, path, adminToken, map[string]interface{}{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(http.MethodPut, path, adminToken, map[string]interface{}{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(http.MethodPut, path, memberToken, map[string]interface{}{"content": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(http.MethodPut, "/api/posts/"+uuid.NewString(), adminToken, map[string]interface{}{"content": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser("admin", models.RoleAdmin)
	_, memberToken := env.seedUser("member", models.RoleUser)
	post := env.createPost(adminToken, map[string]interface{}{"title": "Gone soon", "content": "c"})
	require.Equal(t, http.StatusCreated, env.createComment(memberToken, post.ID, map[string]interface{}{"content": "hi"}).Code)

	path := "/api/posts/" + post.ID.String()
	rec := env.do(http.MethodDelete, path, memberToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodDelete, path, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{}}`, rec.Body.String())

	rec = env.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	comments, err := env.store.GetPostComments(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	rec = env.do(http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComments_Threading(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser("admin", models.RoleAdmin)
	_, memberToken := env.seedUser("member", models.RoleUser)
	post := env.createPost(adminToken, map[string]interface{}{"title": "Discuss", "content": "c"})
	other := env.createPost(adminToken, map[string]interface{}{"title": "Elsewhere", "content": "c"})

	create := func(body map[string]interface{}) api.CommentResponse {
		time.Sleep(2 * time.Millisecond)
		rec := env.createComment(memberToken, post.ID, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var c api.CommentResponse
		decode(t, rec, &c)
		return c
	}

	top := create(map[string]interface{}{"content": "top level"})
	assert.Nil(t, top.Parent)
	assert.Equal(t, "member", top.Author.Username)
	reply := create(map[string]interface{}{"content": "a reply", "parent": top.ID.String()})
	nested := create(map[string]interface{}{"content": "reply to reply", "parent": reply.ID.String()})
	require.NotNil(t, nested.Parent)
	assert.Equal(t, top.ID, *nested.Parent, "replies to replies attach to the top-level comment")
	create(map[string]interface{}{"content": "second top"})

	rec := env.do(http.MethodGet, "/api/comments/post/"+post.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var threads []api.CommentThread
	decode(t, rec, &threads)
	require.Len(t, threads, 2)
	assert.Equal(t, "top level", threads[0].Content)
	require.Len(t, threads[0].Replies, 2)
	assert.Equal(t, "a reply", threads[0].Replies[0].Content)
	assert.Equal(t, "reply to reply", threads[0].Replies[1].Content)
	assert.Empty(t, threads[1].Replies)
	for _, th := range threads {
		assert.NotEqual(t, reply.ID, th.ID, "a reply never appears at top level")
	}

	rec = env.do(http.MethodGet, "/api/posts/"+post.ID.String(), "", nil)
	var detail api.PostEnvelope
	decode(t, rec, &detail)
	assert.Len(t, detail.Data.Comments, 4, "comment list is derived from the comment store")

	rec = env.createComment(memberToken, post.ID, map[string]interface{}{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.createComment(memberToken, post.ID, map[string]interface{}{"content": "x", "parent": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.createComment(memberToken, post.ID, map[string]interface{}{"content": "x", "parent": "junk"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.createComment(memberToken, other.ID, map[string]interface{}{"content": "x", "parent": top.ID.String()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.createComment(memberToken, uuid.New(), map[string]interface{}{"content": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.createComment("", post.ID, map[string]interface{}{"content": "x"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeletedAuthorPlaceholder(t *testing.T) {
	env := newTestEnv(t)
	admin, adminToken := env.seedUser("admin", models.RoleAdmin)
	member, memberToken := env.seedUser("member", models.RoleUser)
	post := env.createPost(adminToken, map[string]interface{}{"title": "Orphaned", "content": "c"})
	require.Equal(t, http.StatusCreated, env.createComment(memberToken, post.ID, map[string]interface{}{"content": "hi"}).Code)

	env.store.DeleteUser(member.ID)
	env.store.DeleteUser(admin.ID)

	rec := env.do(http.MethodGet, "/api/comments/post/"+post.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"author":{"id":null,"username":"deleted user","avatar":""}`)

	rec = env.do(http.MethodGet, "/api/posts", "", nil)
	var list api.PostListResponse
	decode(t, rec, &list)
	require.Len(t, list.Data, 1)
	assert.Nil(t, list.Data[0].Author.ID)
	assert.Equal(t, models.DeletedUsername, list.Data[0].Author.Username)

	// Read-time substitution does not touch stored data.
	comments, err := env.store.GetPostComments(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, comments[0].AuthorID)
}

func TestFixOrphanedCommentsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser("admin", models.RoleAdmin)
	member, memberToken := env.seedUser("member", models.RoleUser)
	post := env.createPost(adminToken, map[string]interface{}{"title": "Repair", "content": "c"})
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusCreated, env.createComment(memberToken, post.ID, map[string]interface{}{"content": "hi"}).Code)
	}

	rec := env.do(http.MethodPost, "/api/admin/fix-orphaned-comments", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	env.store.DeleteUser(member.ID)

	rec = env.do(http.MethodPost, "/api/admin/fix-orphaned-comments", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res api.ReconcileResponse
	decode(t, rec, &res)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Fixed)

	rec = env.do(http.MethodPost, "/api/admin/fix-orphaned-comments", adminToken, nil)
	decode(t, rec, &res)
	assert.Equal(t, 0, res.Fixed)
	assert.Equal(t, "No orphaned comments found", res.Message)

	rec = env.do(http.MethodGet, "/api/comments/post/"+post.ID.String(), "", nil)
	var threads []api.CommentThread
	decode(t, rec, &threads)
	require.Len(t, threads, 2)
	for _, th := range threads {
		assert.Equal(t, "deleted_user", th.Author.Username)
		assert.NotNil(t, th.Author.ID)
	}
}

func TestToggleLike(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser("admin", models.RoleAdmin)
	_, memberToken := env.seedUser("member", models.RoleUser)
	post := env.createPost(adminToken, map[string]interface{}{"title": "Like me", "content": "c"})
	path := "/api/posts/" + post.ID.String() + "/like"

	var resp api.LikeResponse
	rec := env.do(http.MethodPost, path, memberToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.True(t, resp.Liked)
	assert.Equal(t, 1, resp.Likes)

	rec = env.do(http.MethodPost, path, memberToken, nil)
	decode(t, rec, &resp)
	assert.False(t, resp.Liked)
	assert.Equal(t, 0, resp.Likes)

	rec = env.do(http.MethodPost, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCoreRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var root api.RootResponse
	decode(t, rec, &root)
	assert.Equal(t, "1.0.0", root.Version)
	assert.Equal(t, "running", root.Status)

	rec = env.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health api.HealthResponse
	decode(t, rec, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "connected", health.Database)
	assert.NotEmpty(t, health.Uptime)

	env.store.PingErr = assert.AnError
	rec = env.do(http.MethodGet, "/api/health", "", nil)
	decode(t, rec, &health)
	assert.Equal(t, "disconnected", health.Database)

	rec = env.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", errorOf(t, rec).Error)

	rec = env.do(http.MethodPatch, "/api/posts", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = env.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "blog_http_requests_total")

	assert.NotEmpty(t, env.do(http.MethodGet, "/", "", nil).Header().Get("X-Request-ID"))
}

func TestUploadsServed(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.server.UploadsDir, "default-post.jpg"), []byte("jpeg"), 0o644))

	rec := env.do(http.MethodGet, "/uploads/default-post.jpg", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg", rec.Body.String())
}
