package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/devconnect/backend/internal/auth"
	"github.com/devconnect/backend/internal/db"
	apperrors "github.com/devconnect/backend/internal/errors"
	"github.com/devconnect/backend/internal/logger"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// ProfileStore is the slice of the profile repository the handlers need.
type ProfileStore interface {
	Upsert(ctx context.Context, p *db.Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*db.Profile, error)
	List(ctx context.Context) ([]*db.Profile, error)
	AddExperience(ctx context.Context, exp *db.Experience) error
	RemoveExperience(ctx context.Context, userID, expID uuid.UUID) error
	ListExperiences(ctx context.Context, userID uuid.UUID) ([]db.Experience, error)
	AddEducation(ctx context.Context, edu *db.Education) error
	RemoveEducation(ctx context.Context, userID, eduID uuid.UUID) error
	ListEducations(ctx context.Context, userID uuid.UUID) ([]db.Education, error)
}

// UserStore is the slice of the user repository the handlers need.
type UserStore interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handlers struct {
	profiles ProfileStore
	users    UserStore
	log      *logger.Logger
}

func NewHandlers(profiles ProfileStore, users UserStore) *Handlers {
	return &Handlers{
		profiles: profiles,
		users:    users,
		log:      logger.Default().WithComponent("profile"),
	}
}

type UpsertRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Status         string `json:"status"`
	Skills         string `json:"skills"`
	Bio            string `json:"bio"`
	GithubUsername string `json:"githubusername"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// Validate checks the profile payload.
func (r UpsertRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required),
		validation.Field(&r.Skills, validation.Required),
		validation.Field(&r.Website, is.URL),
	)
}

type ExperienceRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// Validate checks the experience payload.
func (r ExperienceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Company, validation.Required),
		validation.Field(&r.From, validation.Required, validation.Date(dateLayout)),
		validation.Field(&r.To, validation.Date(dateLayout)),
	)
}

type EducationRequest struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// Validate checks the education payload.
func (r EducationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.School, validation.Required),
		validation.Field(&r.Degree, validation.Required),
		validation.Field(&r.FieldOfStudy, validation.Required),
		validation.Field(&r.From, validation.Required, validation.Date(dateLayout)),
		validation.Field(&r.To, validation.Date(dateLayout)),
	)
}

// UserInfo is the owning user as embedded in profile responses.
type UserInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type SocialLinks struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

type ExperienceResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	From        string `json:"from"`
	To          string `json:"to,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description,omitempty"`
}

type EducationResponse struct {
	ID           string `json:"id"`
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to,omitempty"`
	Current      bool   `json:"current"`
	Description  string `json:"description,omitempty"`
}

type Response struct {
	User           UserInfo             `json:"user"`
	Company        string               `json:"company,omitempty"`
	Website        string               `json:"website,omitempty"`
	Location       string               `json:"location,omitempty"`
	Status         string               `json:"status"`
	Skills         []string             `json:"skills"`
	Bio            string               `json:"bio,omitempty"`
	GithubUsername string               `json:"githubusername,omitempty"`
	Social         SocialLinks          `json:"social"`
	Experience     []ExperienceResponse `json:"experience,omitempty"`
	Education      []EducationResponse  `json:"education,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// Me handles GET /api/profile/me.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	return h.writeFullProfile(w, r, userCtx.UserID)
}

// Upsert handles POST /api/profile: creates the profile on first call,
// replaces it afterwards.
func (h *Handlers) Upsert(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if err := req.Validate(); err != nil {
		return apperrors.FromValidation(err)
	}

	p := &db.Profile{
		UserID:         userCtx.UserID,
		Company:        nullString(req.Company),
		Website:        nullString(req.Website),
		Location:       nullString(req.Location),
		Status:         req.Status,
		Skills:         splitSkills(req.Skills),
		Bio:            nullString(req.Bio),
		GithubUsername: nullString(req.GithubUsername),
		Youtube:        nullString(req.Youtube),
		Twitter:        nullString(req.Twitter),
		Facebook:       nullString(req.Facebook),
		Linkedin:       nullString(req.Linkedin),
		Instagram:      nullString(req.Instagram),
	}

	if err := h.profiles.Upsert(r.Context(), p); err != nil {
		h.log.Error(r.Context(), "profile upsert failed", err)
		return apperrors.DatabaseError("failed to save profile").WithCause(err)
	}

	return h.writeFullProfile(w, r, userCtx.UserID)
}

// List handles GET /api/profile.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) error {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		h.log.Error(r.Context(), "profile list failed", err)
		return apperrors.DatabaseError("failed to list profiles").WithCause(err)
	}

	out := make([]*Response, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, newResponse(p, nil, nil))
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, out)
	return nil
}

// GetByUser handles GET /api/profile/user/{user_id}.
func (h *Handlers) GetByUser(w http.ResponseWriter, r *http.Request) error {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		return apperrors.BadRequest("invalid user id")
	}

	return h.writeFullProfile(w, r, userID)
}

// DeleteAccount handles DELETE /api/profile: removes the user, profile and
// posts in one shot.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	if err := h.users.Delete(r.Context(), userCtx.UserID); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return apperrors.NotFound("user")
		}
		h.log.Error(r.Context(), "account deletion failed", err)
		return apperrors.DatabaseError("failed to delete account").WithCause(err)
	}

	h.log.Info(r.Context(), "account deleted", map[string]interface{}{
		"user_id": userCtx.UserID.String(),
	})

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// AddExperience handles PUT /api/profile/experience.
func (h *Handlers) AddExperience(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	var req ExperienceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if err := req.Validate(); err != nil {
		return apperrors.FromValidation(err)
	}

	from, _ := time.Parse(dateLayout, req.From)
	exp := &db.Experience{
		ID:          uuid.New(),
		UserID:      userCtx.UserID,
		Title:       req.Title,
		Company:     req.Company,
		Location:    nullString(req.Location),
		From:        from,
		To:          nullDate(req.To),
		Current:     req.Current,
		Description: nullString(req.Description),
	}

	if err := h.profiles.AddExperience(r.Context(), exp); err != nil {
		if errors.Is(err, db.ErrProfileNotFound) {
			return apperrors.ProfileNotFound()
		}
		h.log.Error(r.Context(), "add experience failed", err)
		return apperrors.DatabaseError("failed to add experience").WithCause(err)
	}

	return h.writeFullProfile(w, r, userCtx.UserID)
}

// RemoveExperience handles DELETE /api/profile/experience/{exp_id}.
func (h *Handlers) RemoveExperience(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	expID, err := uuid.Parse(r.PathValue("exp_id"))
	if err != nil {
		return apperrors.BadRequest("invalid experience id")
	}

	if err := h.profiles.RemoveExperience(r.Context(), userCtx.UserID, expID); err != nil {
		if errors.Is(err, db.ErrExperienceNotFound) {
			return apperrors.NotFound("experience")
		}
		h.log.Error(r.Context(), "remove experience failed", err)
		return apperrors.DatabaseError("failed to remove experience").WithCause(err)
	}

	return h.writeFullProfile(w, r, userCtx.UserID)
}

// AddEducation handles PUT /api/profile/education.
func (h *Handlers) AddEducation(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	var req EducationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if err := req.Validate(); err != nil {
		return apperrors.FromValidation(err)
	}

	from, _ := time.Parse(dateLayout, req.From)
	edu := &db.Education{
		ID:           uuid.New(),
		UserID:       userCtx.UserID,
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         from,
		To:           nullDate(req.To),
		Current:      req.Current,
		Description:  nullString(req.Description),
	}

	if err := h.profiles.AddEducation(r.Context(), edu); err != nil {
		if errors.Is(err, db.ErrProfileNotFound) {
			return apperrors.ProfileNotFound()
		}
		h.log.Error(r.Context(), "add education failed", err)
		return apperrors.DatabaseError("failed to add education").WithCause(err)
	}

	return h.writeFullProfile(w, r, userCtx.UserID)
}

// RemoveEducation handles DELETE /api/profile/education/{edu_id}.
func (h *Handlers) RemoveEducation(w http.ResponseWriter, r *http.Request) error {
	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	eduID, err := uuid.Parse(r.PathValue("edu_id"))
	if err != nil {
		return apperrors.BadRequest("invalid education id")
	}

	if err := h.profiles.RemoveEducation(r.Context(), userCtx.UserID, eduID); err != nil {
		if errors.Is(err, db.ErrEducationNotFound) {
			return apperrors.NotFound("education")
		}
		h.log.Error(r.Context(), "remove education failed", err)
		return apperrors.DatabaseError("failed to remove education").WithCause(err)
	}

	return h.writeFullProfile(w, r, userCtx.UserID)
}

// writeFullProfile loads a profile with its experience and education and
// writes it as the response.
func (h *Handlers) writeFullProfile(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	p, err := h.profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, db.ErrProfileNotFound) {
			return apperrors.ProfileNotFound()
		}
		h.log.Error(r.Context(), "profile load failed", err)
		return apperrors.DatabaseError("failed to load profile").WithCause(err)
	}

	experiences, err := h.profiles.ListExperiences(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "experience load failed", err)
		return apperrors.DatabaseError("failed to load profile").WithCause(err)
	}

	educations, err := h.profiles.ListEducations(r.Context(), userID)
	if err != nil {
		h.log.Error(r.Context(), "education load failed", err)
		return apperrors.DatabaseError("failed to load profile").WithCause(err)
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK,
		newResponse(p, experiences, educations))
	return nil
}

func newResponse(p *db.Profile, experiences []db.Experience, educations []db.Education) *Response {
	resp := &Response{
		User: UserInfo{
			ID:     p.UserID.String(),
			Name:   p.UserName,
			Avatar: p.UserAvatar,
		},
		Company:        p.Company.String,
		Website:        p.Website.String,
		Location:       p.Location.String,
		Status:         p.Status,
		Skills:         p.Skills,
		Bio:            p.Bio.String,
		GithubUsername: p.GithubUsername.String,
		Social: SocialLinks{
			Youtube:   p.Youtube.String,
			Twitter:   p.Twitter.String,
			Facebook:  p.Facebook.String,
			Linkedin:  p.Linkedin.String,
			Instagram: p.Instagram.String,
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	for _, exp := range experiences {
		e := ExperienceResponse{
			ID:          exp.ID.String(),
			Title:       exp.Title,
			Company:     exp.Company,
			Location:    exp.Location.String,
			From:        exp.From.Format(dateLayout),
			Current:     exp.Current,
			Description: exp.Description.String,
		}
		if exp.To.Valid {
			e.To = exp.To.Time.Format(dateLayout)
		}
		resp.Experience = append(resp.Experience, e)
	}

	for _, edu := range educations {
		e := EducationResponse{
			ID:           edu.ID.String(),
			School:       edu.School,
			Degree:       edu.Degree,
			FieldOfStudy: edu.FieldOfStudy,
			From:         edu.From.Format(dateLayout),
			Current:      edu.Current,
			Description:  edu.Description.String,
		}
		if edu.To.Valid {
			e.To = edu.To.Time.Format(dateLayout)
		}
		resp.Education = append(resp.Education, e)
	}

	return resp
}

// splitSkills turns a comma separated skills string into a trimmed list.
func splitSkills(skills string) []string {
	parts := strings.Split(skills, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
