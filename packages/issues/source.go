package issues

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/github"
	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no tracker credential is configured.
var ErrNoToken = errors.New("GITHUB_TOKEN not available")

// Source lists the open issues of a repository.
type Source interface {
	ListOpenIssues(ctx context.Context, owner, repo string) ([]Issue, error)
}

// GitHubSource reads issues through the GitHub REST API.
type GitHubSource struct {
	client  *github.Client
	token   string
	perPage int
}

// NewGitHubSource returns a source authenticated with token. An empty baseURL
// keeps the public API endpoint.
func NewGitHubSource(ctx context.Context, token, baseURL string, perPage int) (*GitHubSource, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
		}
		client.BaseURL = u
	}

	return &GitHubSource{client: client, token: token, perPage: perPage}, nil
}

// ListOpenIssues performs a single GET for the first page of open issues.
func (s *GitHubSource) ListOpenIssues(ctx context.Context, owner, repo string) ([]Issue, error) {
	if s.token == "" {
		return nil, ErrNoToken
	}

	opt := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: s.perPage},
	}
	ghIssues, resp, err := s.client.Issues.ListByRepo(ctx, owner, repo, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues for %s/%s: %w", owner, repo, err)
	}
	if resp != nil && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned status %d for %s/%s", resp.StatusCode, owner, repo)
	}

	out := make([]Issue, 0, len(ghIssues))
	for _, gi := range ghIssues {
		out = append(out, FromGitHub(gi))
	}
	return out, nil
}

// SplitRepository splits an "owner/name" identity.
func SplitRepository(fullName string) (owner, repo string, err error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: want owner/name", fullName)
	}
	return parts[0], parts[1], nil
}
