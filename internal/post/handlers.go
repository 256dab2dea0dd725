package post

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/devconnect/backend/internal/auth"
	"github.com/devconnect/backend/internal/db"
	apperrors "github.com/devconnect/backend/internal/errors"
	"github.com/devconnect/backend/internal/logger"
	"github.com/devconnect/backend/internal/metrics"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

// PostStore is the slice of the post repository the handlers need.
type PostStore interface {
	Create(ctx context.Context, post *db.Post) error
	List(ctx context.Context) ([]*db.Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*db.Post, error)
	Delete(ctx context.Context, postID, userID uuid.UUID) error
	AddLike(ctx context.Context, postID, userID uuid.UUID) error
	RemoveLike(ctx context.Context, postID, userID uuid.UUID) error
	AddComment(ctx context.Context, comment *db.Comment) error
	DeleteComment(ctx context.Context, postID, commentID, userID uuid.UUID) error
}

// UserStore resolves the author's name and avatar for denormalization.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*db.User, error)
}

type Handlers struct {
	posts PostStore
	users UserStore
	log   *logger.Logger
}

func NewHandlers(posts PostStore, users UserStore) *Handlers {
	return &Handlers{
		posts: posts,
		users: users,
		log:   logger.Default().WithComponent("post"),
	}
}

type CreateRequest struct {
	Text string `json:"text"`
}

// Validate checks the post payload.
func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
	)
}

type CommentRequest struct {
	Text string `json:"text"`
}

// Validate checks the comment payload.
func (r CommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required),
	)
}

type LikeResponse struct {
	User string `json:"user"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

type Response struct {
	ID        string            `json:"id"`
	User      string            `json:"user"`
	Text      string            `json:"text"`
	Name      string            `json:"name"`
	Avatar    string            `json:"avatar"`
	Likes     []LikeResponse    `json:"likes"`
	Comments  []CommentResponse `json:"comments"`
	CreatedAt time.Time         `json:"createdAt"`
}

func newResponse(p *db.Post) *Response {
	resp := &Response{
		ID:        p.ID.String(),
		User:      p.UserID.String(),
		Text:      p.Text,
		Name:      p.Name,
		Avatar:    p.Avatar,
		Likes:     make([]LikeResponse, 0, len(p.Likes)),
		Comments:  make([]CommentResponse, 0, len(p.Comments)),
		CreatedAt: p.CreatedAt,
	}

	for _, l := range p.Likes {
		resp.Likes = append(resp.Likes, LikeResponse{User: l.UserID.String()})
	}
	for _, c := range p.Comments {
		resp.Comments = append(resp.Comments, CommentResponse{
			ID:        c.ID.String(),
			User:      c.UserID.String(),
			Text:      c.Text,
			Name:      c.Name,
			Avatar:    c.Avatar,
			CreatedAt: c.CreatedAt,
		})
	}

	return resp
}

// Create handles POST /api/posts.
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if err := req.Validate(); err != nil {
		return apperrors.FromValidation(err)
	}

	user, err := h.users.GetByID(r.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return apperrors.NotFound("user")
		}
		h.log.Error(r.Context(), "user lookup failed", err)
		return apperrors.DatabaseError("failed to create post").WithCause(err)
	}

	p := &db.Post{
		ID:     uuid.New(),
		UserID: user.ID,
		Text:   req.Text,
		Name:   user.Name,
		Avatar: user.Avatar,
	}

	if err := h.posts.Create(r.Context(), p); err != nil {
		h.log.Error(r.Context(), "post creation failed", err)
		return apperrors.DatabaseError("failed to create post").WithCause(err)
	}

	metrics.Default().IncCounter("posts_created")
	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, newResponse(p))
	return nil
}

// List handles GET /api/posts, newest first.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) error {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "post list failed", err)
		return apperrors.DatabaseError("failed to list posts").WithCause(err)
	}

	out := make([]*Response, 0, len(posts))
	for _, p := range posts {
		out = append(out, newResponse(p))
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, out)
	return nil
}

// Get handles GET /api/posts/{post_id}.
func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) error {
	postID, err := uuid.Parse(r.PathValue("post_id"))
	if err != nil {
		return apperrors.BadRequest("invalid post id")
	}

	p, err := h.posts.GetByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, db.ErrPostNotFound) {
			return apperrors.PostNotFound()
		}
		h.log.Error(r.Context(), "post load failed", err)
		return apperrors.DatabaseError("failed to load post").WithCause(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, newResponse(p))
	return nil
}

// Delete handles DELETE /api/posts/{post_id}. Only the owner may delete.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	postID, err := uuid.Parse(r.PathValue("post_id"))
	if err != nil {
		return apperrors.BadRequest("invalid post id")
	}

	if err := h.posts.Delete(r.Context(), postID, userCtx.UserID); err != nil {
		switch {
		case errors.Is(err, db.ErrPostNotFound):
			return apperrors.PostNotFound()
		case errors.Is(err, db.ErrPostNotOwned):
			return apperrors.Forbidden("post belongs to another user")
		}
		h.log.Error(r.Context(), "post deletion failed", err)
		return apperrors.DatabaseError("failed to delete post").WithCause(err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Like handles PUT /api/posts/like/{post_id}.
func (h *Handlers) Like(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	postID, err := uuid.Parse(r.PathValue("post_id"))
	if err != nil {
		return apperrors.BadRequest("invalid post id")
	}

	if err := h.posts.AddLike(r.Context(), postID, userCtx.UserID); err != nil {
		switch {
		case errors.Is(err, db.ErrPostNotFound):
			return apperrors.PostNotFound()
		case errors.Is(err, db.ErrAlreadyLiked):
			return apperrors.AlreadyLiked()
		}
		h.log.Error(r.Context(), "like failed", err)
		return apperrors.DatabaseError("failed to like post").WithCause(err)
	}

	return h.writePost(w, r, postID)
}

// Unlike handles PUT /api/posts/unlike/{post_id}.
func (h *Handlers) Unlike(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	postID, err := uuid.Parse(r.PathValue("post_id"))
	if err != nil {
		return apperrors.BadRequest("invalid post id")
	}

	if err := h.posts.RemoveLike(r.Context(), postID, userCtx.UserID); err != nil {
		if errors.Is(err, db.ErrNotLiked) {
			return apperrors.NotLiked()
		}
		h.log.Error(r.Context(), "unlike failed", err)
		return apperrors.DatabaseError("failed to unlike post").WithCause(err)
	}

	return h.writePost(w, r, postID)
}

// Comment handles POST /api/posts/comment/{post_id}.
func (h *Handlers) Comment(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	postID, err := uuid.Parse(r.PathValue("post_id"))
	if err != nil {
		return apperrors.BadRequest("invalid post id")
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if err := req.Validate(); err != nil {
		return apperrors.FromValidation(err)
	}

	user, err := h.users.GetByID(r.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return apperrors.NotFound("user")
		}
		h.log.Error(r.Context(), "user lookup failed", err)
		return apperrors.DatabaseError("failed to add comment").WithCause(err)
	}

	comment := &db.Comment{
		ID:     uuid.New(),
		PostID: postID,
		UserID: user.ID,
		Text:   req.Text,
		Name:   user.Name,
		Avatar: user.Avatar,
	}

	if err := h.posts.AddComment(r.Context(), comment); err != nil {
		if errors.Is(err, db.ErrPostNotFound) {
			return apperrors.PostNotFound()
		}
		h.log.Error(r.Context(), "comment failed", err)
		return apperrors.DatabaseError("failed to add comment").WithCause(err)
	}

	return h.writePost(w, r, postID)
}

// DeleteComment handles DELETE /api/posts/comment/{post_id}/{comment_id}.
func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	postID, err := uuid.Parse(r.PathValue("post_id"))
	if err != nil {
		return apperrors.BadRequest("invalid post id")
	}

	commentID, err := uuid.Parse(r.PathValue("comment_id"))
	if err != nil {
		return apperrors.BadRequest("invalid comment id")
	}

	if err := h.posts.DeleteComment(r.Context(), postID, commentID, userCtx.UserID); err != nil {
		switch {
		case errors.Is(err, db.ErrCommentNotFound):
			return apperrors.CommentNotFound()
		case errors.Is(err, db.ErrPostNotOwned):
			return apperrors.Forbidden("comment belongs to another user")
		}
		h.log.Error(r.Context(), "comment deletion failed", err)
		return apperrors.DatabaseError("failed to delete comment").WithCause(err)
	}

	return h.writePost(w, r, postID)
}

func (h *Handlers) writePost(w http.ResponseWriter, r *http.Request, postID uuid.UUID) error {
	p, err := h.posts.GetByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, db.ErrPostNotFound) {
			return apperrors.PostNotFound()
		}
		h.log.Error(r.Context(), "post load failed", err)
		return apperrors.DatabaseError("failed to load post").WithCause(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, newResponse(p))
	return nil
}
