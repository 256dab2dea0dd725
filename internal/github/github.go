// Package github looks up a user's public repositories via the GitHub API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	userAgent      = "devconnect/1.0.0"
	requestTimeout = 10 * time.Second
	// repoCount matches the original behavior: the five most recent repos.
	repoCount = 5
)

// ErrUserNotFound is returned when the GitHub user does not exist.
var ErrUserNotFound = fmt.Errorf("github user not found")

// Client provides access to the GitHub REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	// token, when set, authenticates requests and lifts the anonymous
	// rate limit.
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithToken sets a bearer token for authenticated requests.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new GitHub API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Repo is a public repository as exposed to clients.
type Repo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	HTMLURL     string `json:"htmlUrl"`
	Description string `json:"description,omitempty"`
	Stars       int    `json:"stars"`
	Watchers    int    `json:"watchers"`
	Forks       int    `json:"forks"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// ghRepoResponse is the raw GitHub API response for a repository
type ghRepoResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	FullName        string `json:"full_name"`
	HTMLURL         string `json:"html_url"`
	Description     string `json:"description"`
	StargazersCount int    `json:"stargazers_count"`
	WatchersCount   int    `json:"watchers_count"`
	ForksCount      int    `json:"forks_count"`
	CreatedAt       string `json:"created_at"`
}

type ghAPIError struct {
	Message string `json:"message"`
}

// ListRepos fetches a user's most recent public repositories.
func (c *Client) ListRepos(ctx context.Context, username string) ([]Repo, error) {
	endpoint := fmt.Sprintf("%s/users/%s/repos?per_page=%d&sort=created:asc",
		c.baseURL, url.PathEscape(username), repoCount)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github: %s", apiErrorMessage(body, resp.StatusCode))
	}

	var raw []ghRepoResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	repos := make([]Repo, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, Repo{
			ID:          r.ID,
			Name:        r.Name,
			FullName:    r.FullName,
			HTMLURL:     r.HTMLURL,
			Description: r.Description,
			Stars:       r.StargazersCount,
			Watchers:    r.WatchersCount,
			Forks:       r.ForksCount,
			CreatedAt:   r.CreatedAt,
		})
	}

	return repos, nil
}

func apiErrorMessage(body []byte, status int) string {
	var apiErr ghAPIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return fmt.Sprintf("unexpected status code: %d", status)
}
