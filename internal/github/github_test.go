package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRepos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/repos", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"id": 1,
				"name": "hello-world",
				"full_name": "octocat/hello-world",
				"html_url": "https://github.com/octocat/hello-world",
				"description": "My first repo",
				"stargazers_count": 42,
				"watchers_count": 42,
				"forks_count": 7,
				"created_at": "2011-01-26T19:01:12Z"
			}
		]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	repos, err := client.ListRepos(context.Background(), "octocat")
	require.NoError(t, err)
	require.Len(t, repos, 1)

	assert.Equal(t, int64(1), repos[0].ID)
	assert.Equal(t, "hello-world", repos[0].Name)
	assert.Equal(t, "octocat/hello-world", repos[0].FullName)
	assert.Equal(t, 42, repos[0].Stars)
	assert.Equal(t, 7, repos[0].Forks)
}

func TestListReposUserNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Not Found"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.ListRepos(context.Background(), "no-such-user")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListReposAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "API rate limit exceeded"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.ListRepos(context.Background(), "octocat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API rate limit exceeded")
}

func TestListReposSendsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithToken("test-token"))

	repos, err := client.ListRepos(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Empty(t, repos)
}
