package post

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/devconnect/backend/internal/auth"
	"github.com/devconnect/backend/internal/db"
	apperrors "github.com/devconnect/backend/internal/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePostStore struct {
	posts map[uuid.UUID]*db.Post
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[uuid.UUID]*db.Post)}
}

func (s *fakePostStore) Create(_ context.Context, p *db.Post) error {
	cp := *p
	cp.CreatedAt = time.Now()
	s.posts[p.ID] = &cp
	return nil
}

func (s *fakePostStore) List(_ context.Context) ([]*db.Post, error) {
	var out []*db.Post
	for _, p := range s.posts {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakePostStore) GetByID(_ context.Context, id uuid.UUID) (*db.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, db.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakePostStore) Delete(_ context.Context, postID, userID uuid.UUID) error {
	p, ok := s.posts[postID]
	if !ok {
		return db.ErrPostNotFound
	}
	if p.UserID != userID {
		return db.ErrPostNotOwned
	}
	delete(s.posts, postID)
	return nil
}

func (s *fakePostStore) AddLike(_ context.Context, postID, userID uuid.UUID) error {
	p, ok := s.posts[postID]
	if !ok {
		return db.ErrPostNotFound
	}
	for _, l := range p.Likes {
		if l.UserID == userID {
			return db.ErrAlreadyLiked
		}
	}
	p.Likes = append(p.Likes, db.Like{PostID: postID, UserID: userID, CreatedAt: time.Now()})
	return nil
}

func (s *fakePostStore) RemoveLike(_ context.Context, postID, userID uuid.UUID) error {
	p, ok := s.posts[postID]
	if !ok {
		return db.ErrNotLiked
	}
	for i, l := range p.Likes {
		if l.UserID == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return nil
		}
	}
	return db.ErrNotLiked
}

func (s *fakePostStore) AddComment(_ context.Context, c *db.Comment) error {
	p, ok := s.posts[c.PostID]
	if !ok {
		return db.ErrPostNotFound
	}
	cc := *c
	cc.CreatedAt = time.Now()
	p.Comments = append(p.Comments, cc)
	return nil
}

func (s *fakePostStore) DeleteComment(_ context.Context, postID, commentID, userID uuid.UUID) error {
	p, ok := s.posts[postID]
	if !ok {
		return db.ErrPostNotFound
	}
	for i, c := range p.Comments {
		if c.ID == commentID {
			if c.UserID != userID {
				return db.ErrPostNotOwned
			}
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return db.ErrCommentNotFound
}

type fakeUserStore struct {
	users map[uuid.UUID]*db.User
}

func newFakeUserStore(users ...*db.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uuid.UUID]*db.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*db.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	return u, nil
}

func testUser() *db.User {
	return &db.User{
		ID:     uuid.New(),
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
		Avatar: "https://www.gravatar.com/avatar/abc?s=200&r=pg&d=mm",
	}
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, &auth.UserContext{UserID: userID})
	return req.WithContext(ctx)
}

func createPost(t *testing.T, h *Handlers, userID uuid.UUID, text string) *Response {
	t.Helper()

	req := authedRequest(http.MethodPost, "/api/posts", `{"text":"`+text+`"}`, userID)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Create(rec, req))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return &resp
}

func TestCreatePost(t *testing.T) {
	user := testUser()
	h := NewHandlers(newFakePostStore(), newFakeUserStore(user))

	resp := createPost(t, h, user.ID, "hello world")

	assert.Equal(t, "hello world", resp.Text)
	assert.Equal(t, user.ID.String(), resp.User)
	assert.Equal(t, user.Name, resp.Name)
	assert.Equal(t, user.Avatar, resp.Avatar)
	assert.Empty(t, resp.Likes)
	assert.Empty(t, resp.Comments)
}

func TestCreatePostValidation(t *testing.T) {
	user := testUser()
	h := NewHandlers(newFakePostStore(), newFakeUserStore(user))

	req := authedRequest(http.MethodPost, "/api/posts", `{"text":""}`, user.ID)
	rec := httptest.NewRecorder()

	err := h.Create(rec, req)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
	assert.Contains(t, appErr.Details, "text")
}

func TestDeletePostOwnership(t *testing.T) {
	owner := testUser()
	other := testUser()
	store := newFakePostStore()
	h := NewHandlers(store, newFakeUserStore(owner, other))

	created := createPost(t, h, owner.ID, "mine")
	postID := uuid.MustParse(created.ID)

	req := authedRequest(http.MethodDelete, "/api/posts/"+created.ID, "", other.ID)
	req.SetPathValue("post_id", created.ID)
	rec := httptest.NewRecorder()

	err := h.Delete(rec, req)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)

	req = authedRequest(http.MethodDelete, "/api/posts/"+created.ID, "", owner.ID)
	req.SetPathValue("post_id", created.ID)
	rec = httptest.NewRecorder()

	require.NoError(t, h.Delete(rec, req))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = store.GetByID(context.Background(), postID)
	assert.ErrorIs(t, err, db.ErrPostNotFound)
}

func TestLikeUnlike(t *testing.T) {
	user := testUser()
	h := NewHandlers(newFakePostStore(), newFakeUserStore(user))

	created := createPost(t, h, user.ID, "like me")

	req := authedRequest(http.MethodPut, "/api/posts/like/"+created.ID, "", user.ID)
	req.SetPathValue("post_id", created.ID)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Like(rec, req))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Likes, 1)
	assert.Equal(t, user.ID.String(), resp.Likes[0].User)

	// A second like from the same user conflicts.
	req = authedRequest(http.MethodPut, "/api/posts/like/"+created.ID, "", user.ID)
	req.SetPathValue("post_id", created.ID)
	rec = httptest.NewRecorder()

	err := h.Like(rec, req)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeAlreadyLiked, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)

	req = authedRequest(http.MethodPut, "/api/posts/unlike/"+created.ID, "", user.ID)
	req.SetPathValue("post_id", created.ID)
	rec = httptest.NewRecorder()

	require.NoError(t, h.Unlike(rec, req))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Likes)

	// Unliking again fails.
	req = authedRequest(http.MethodPut, "/api/posts/unlike/"+created.ID, "", user.ID)
	req.SetPathValue("post_id", created.ID)
	rec = httptest.NewRecorder()

	err = h.Unlike(rec, req)
	require.Error(t, err)

	appErr, ok = err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotLiked, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestCommentLifecycle(t *testing.T) {
	author := testUser()
	commenter := testUser()
	h := NewHandlers(newFakePostStore(), newFakeUserStore(author, commenter))

	created := createPost(t, h, author.ID, "discuss")

	req := authedRequest(http.MethodPost, "/api/posts/comment/"+created.ID, `{"text":"nice"}`, commenter.ID)
	req.SetPathValue("post_id", created.ID)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Comment(rec, req))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "nice", resp.Comments[0].Text)
	assert.Equal(t, commenter.ID.String(), resp.Comments[0].User)
	assert.Equal(t, commenter.Name, resp.Comments[0].Name)

	commentID := resp.Comments[0].ID

	// The post author cannot delete someone else's comment.
	req = authedRequest(http.MethodDelete, "/api/posts/comment/"+created.ID+"/"+commentID, "", author.ID)
	req.SetPathValue("post_id", created.ID)
	req.SetPathValue("comment_id", commentID)
	rec = httptest.NewRecorder()

	err := h.DeleteComment(rec, req)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)

	req = authedRequest(http.MethodDelete, "/api/posts/comment/"+created.ID+"/"+commentID, "", commenter.ID)
	req.SetPathValue("post_id", created.ID)
	req.SetPathValue("comment_id", commentID)
	rec = httptest.NewRecorder()

	require.NoError(t, h.DeleteComment(rec, req))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Comments)
}

func TestListNewestFirst(t *testing.T) {
	user := testUser()
	store := newFakePostStore()
	h := NewHandlers(store, newFakeUserStore(user))

	first := &db.Post{ID: uuid.New(), UserID: user.ID, Text: "first", CreatedAt: time.Now().Add(-time.Hour)}
	second := &db.Post{ID: uuid.New(), UserID: user.ID, Text: "second", CreatedAt: time.Now()}
	store.posts[first.ID] = first
	store.posts[second.ID] = second

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.List(rec, req))

	var resp []*Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "second", resp[0].Text)
	assert.Equal(t, "first", resp[1].Text)
}

func TestGetPostNotFound(t *testing.T) {
	user := testUser()
	h := NewHandlers(newFakePostStore(), newFakeUserStore(user))

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/posts/"+id, nil)
	req.SetPathValue("post_id", id)
	rec := httptest.NewRecorder()

	err := h.Get(rec, req)
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}
