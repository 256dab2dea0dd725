package api

import (
	"net/http"

	"github.com/devconnect/backend/internal/auth"
	apperrors "github.com/devconnect/backend/internal/errors"
	"github.com/devconnect/backend/internal/github"
	"github.com/devconnect/backend/internal/health"
	"github.com/devconnect/backend/internal/metrics"
	"github.com/devconnect/backend/internal/post"
	"github.com/devconnect/backend/internal/profile"
)

type Router struct {
	mux             *http.ServeMux
	authService     *auth.Service
	authHandlers    *auth.Handlers
	profileHandlers *profile.Handlers
	postHandlers    *post.Handlers
	githubHandlers  *github.Handlers
	healthHandler   *health.Handler
	metrics         *metrics.Metrics
}

func NewRouter(
	authService *auth.Service,
	authHandlers *auth.Handlers,
	profileHandlers *profile.Handlers,
	postHandlers *post.Handlers,
	githubHandlers *github.Handlers,
	healthHandler *health.Handler,
	m *metrics.Metrics,
) *Router {
	r := &Router{
		mux:             http.NewServeMux(),
		authService:     authService,
		authHandlers:    authHandlers,
		profileHandlers: profileHandlers,
		postHandlers:    postHandlers,
		githubHandlers:  githubHandlers,
		healthHandler:   healthHandler,
		metrics:         m,
	}
	r.setupRoutes()
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	// Operational endpoints
	r.mux.HandleFunc("GET /health", r.healthHandler.HealthHandler)
	r.mux.HandleFunc("GET /health/live", r.healthHandler.LivenessHandler)
	r.mux.HandleFunc("GET /health/ready", r.healthHandler.ReadinessHandler)
	r.mux.HandleFunc("GET /metrics", r.metrics.Handler())

	// Users and sessions (no auth required)
	r.mux.HandleFunc("POST /api/users", apperrors.HandleFunc(r.authHandlers.Register))
	r.mux.HandleFunc("POST /api/auth", apperrors.HandleFunc(r.authHandlers.Login))
	r.mux.HandleFunc("GET /api/auth", r.withAuth(r.authHandlers.Me))

	// Profiles
	r.mux.HandleFunc("GET /api/profile/me", r.withAuth(r.profileHandlers.Me))
	r.mux.HandleFunc("POST /api/profile", r.withAuth(r.profileHandlers.Upsert))
	r.mux.HandleFunc("GET /api/profile", apperrors.HandleFunc(r.profileHandlers.List))
	r.mux.HandleFunc("GET /api/profile/user/{user_id}", apperrors.HandleFunc(r.profileHandlers.GetByUser))
	r.mux.HandleFunc("DELETE /api/profile", r.withAuth(r.profileHandlers.DeleteAccount))
	r.mux.HandleFunc("PUT /api/profile/experience", r.withAuth(r.profileHandlers.AddExperience))
	r.mux.HandleFunc("DELETE /api/profile/experience/{exp_id}", r.withAuth(r.profileHandlers.RemoveExperience))
	r.mux.HandleFunc("PUT /api/profile/education", r.withAuth(r.profileHandlers.AddEducation))
	r.mux.HandleFunc("DELETE /api/profile/education/{edu_id}", r.withAuth(r.profileHandlers.RemoveEducation))
	r.mux.HandleFunc("GET /api/profile/github/{username}", apperrors.HandleFunc(r.githubHandlers.Repos))

	// Posts
	r.mux.HandleFunc("POST /api/posts", r.withAuth(r.postHandlers.Create))
	r.mux.HandleFunc("GET /api/posts", apperrors.HandleFunc(r.postHandlers.List))
	r.mux.HandleFunc("GET /api/posts/{post_id}", apperrors.HandleFunc(r.postHandlers.Get))
	r.mux.HandleFunc("DELETE /api/posts/{post_id}", r.withAuth(r.postHandlers.Delete))
	r.mux.HandleFunc("PUT /api/posts/like/{post_id}", r.withAuth(r.postHandlers.Like))
	r.mux.HandleFunc("PUT /api/posts/unlike/{post_id}", r.withAuth(r.postHandlers.Unlike))
	r.mux.HandleFunc("POST /api/posts/comment/{post_id}", r.withAuth(r.postHandlers.Comment))
	r.mux.HandleFunc("DELETE /api/posts/comment/{post_id}/{comment_id}", r.withAuth(r.postHandlers.DeleteComment))
}

func (r *Router) withAuth(next apperrors.Handler) http.HandlerFunc {
	middleware := auth.Middleware(r.authService)
	handler := apperrors.HandleFunc(next)
	return func(w http.ResponseWriter, req *http.Request) {
		middleware(handler).ServeHTTP(w, req)
	}
}
