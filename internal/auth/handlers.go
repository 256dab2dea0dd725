package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/devconnect/backend/internal/db"
	apperrors "github.com/devconnect/backend/internal/errors"
	"github.com/devconnect/backend/internal/logger"
	"github.com/devconnect/backend/internal/metrics"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the registration payload, one error per failed field.
// Length counts bytes, and bcrypt rejects anything over 72 of them, so the
// cap keeps every accepted password hashable.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login payload.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type TokenResponse struct {
	Token string `json:"token"`
}

// UserResponse is a user record with the password hash stripped.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUserResponse(user *db.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt,
	}
}

type Handlers struct {
	authService *Service
	log         *logger.Logger
}

func NewHandlers(authService *Service) *Handlers {
	return &Handlers{
		authService: authService,
		log:         logger.Default().WithComponent("auth"),
	}
}

// Register handles POST /api/users.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) error {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if err := req.Validate(); err != nil {
		return apperrors.FromValidation(err)
	}

	token, _, err := h.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, db.ErrEmailExists) {
			return apperrors.EmailExists()
		}
		h.log.Error(r.Context(), "registration failed", err)
		return apperrors.InternalError("failed to create user").WithCause(err)
	}

	metrics.Default().IncCounter("users_registered")
	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, TokenResponse{Token: token})
	return nil
}

// Login handles POST /api/auth.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if err := req.Validate(); err != nil {
		return apperrors.FromValidation(err)
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return apperrors.InvalidCredentials()
		}
		h.log.Error(r.Context(), "login failed", err)
		return apperrors.InternalError("login failed").WithCause(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, TokenResponse{Token: token})
	return nil
}

// Me handles GET /api/auth: the authenticated user's record, sans hash.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) error {
	userCtx := GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	user, err := h.authService.GetUserByID(r.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return apperrors.NotFound("user")
		}
		h.log.Error(r.Context(), "failed to load user", err)
		return apperrors.DatabaseError("failed to load user").WithCause(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, NewUserResponse(user))
	return nil
}
