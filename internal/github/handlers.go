package github

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/devconnect/backend/internal/cache"
	apperrors "github.com/devconnect/backend/internal/errors"
	"github.com/devconnect/backend/internal/logger"
	"github.com/devconnect/backend/internal/metrics"
)

type Handlers struct {
	client   *Client
	cache    *cache.Cache
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewHandlers creates the GitHub lookup handlers. cache may be nil, in which
// case every request goes to the GitHub API.
func NewHandlers(client *Client, c *cache.Cache, cacheTTL time.Duration) *Handlers {
	return &Handlers{
		client:   client,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      logger.Default().WithComponent("github"),
	}
}

// Repos handles GET /api/profile/github/{username}.
func (h *Handlers) Repos(w http.ResponseWriter, r *http.Request) error {
	username := r.PathValue("username")
	if username == "" {
		return apperrors.BadRequest("username is required")
	}

	requestID := apperrors.GetRequestID(r.Context())
	key := "github:repos:" + username

	if h.cache != nil {
		if cached, ok := h.cache.Get(r.Context(), key); ok {
			metrics.Default().IncCounter("github_cache_hits")
			writeRawJSON(w, requestID, []byte(cached))
			return nil
		}
		metrics.Default().IncCounter("github_cache_misses")
	}

	repos, err := h.client.ListRepos(r.Context(), username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return apperrors.GithubUserNotFound()
		}
		h.log.Error(r.Context(), "github lookup failed", err, map[string]interface{}{
			"username": username,
		})
		return apperrors.GithubError("github lookup failed").WithCause(err)
	}

	payload, err := json.Marshal(repos)
	if err != nil {
		return apperrors.InternalError("failed to encode response").WithCause(err)
	}

	if h.cache != nil {
		// Best effort: a failed cache write only costs the next request
		// an API call.
		h.cache.Set(r.Context(), key, string(payload), h.cacheTTL)
	}

	writeRawJSON(w, requestID, payload)
	return nil
}

func writeRawJSON(w http.ResponseWriter, requestID string, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set(apperrors.RequestIDHeader, requestID)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
