package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devflow-context/packages/config"
)

// recorder captures every API call and answers with an empty success.
type recorder struct {
	mu      sync.Mutex
	calls   []string
	missing map[string]bool
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req.Method+" "+req.URL.Path)

	if req.Method == http.MethodGet && r.missing[req.URL.Path] {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
		return
	}
	switch req.Method {
	case http.MethodPost:
		if strings.HasSuffix(req.URL.Path, "/issues/7/labels") {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func newTestClient(t *testing.T, handler http.Handler) *github.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	client.BaseURL = base
	return client
}

func issuesEvent(action string, body string, labels ...string) *github.IssuesEvent {
	ghLabels := make([]github.Label, 0, len(labels))
	for _, l := range labels {
		ghLabels = append(ghLabels, github.Label{Name: github.String(l)})
	}
	return &github.IssuesEvent{
		Action: github.String(action),
		Issue: &github.Issue{
			Number: github.Int(7),
			Title:  github.String("Fix checkout"),
			Body:   github.String(body),
			State:  github.String("open"),
			Labels: ghLabels,
		},
		Repo: &github.Repository{FullName: github.String("acme/shop")},
	}
}

func TestIssueHandler_Sync(t *testing.T) {
	tests := []struct {
		name  string
		event *github.IssuesEvent
		calls []string
	}{
		{
			name:  "ready issue gets the marker",
			event: issuesEvent("opened", "", "bug"),
			calls: []string{"POST /repos/acme/shop/issues/7/labels"},
		},
		{
			name:  "ready issue already marked",
			event: issuesEvent("labeled", "", "bug", "devflow-ready"),
			calls: nil,
		},
		{
			name:  "blocked issue loses the marker",
			event: issuesEvent("labeled", "", "bug", "blocked", "DevFlow-Ready"),
			calls: []string{"DELETE /repos/acme/shop/issues/7/labels/devflow-ready"},
		},
		{
			name:  "unready issue without marker",
			event: issuesEvent("edited", "too short"),
			calls: nil,
		},
		{
			name:  "long body is enough",
			event: issuesEvent("reopened", strings.Repeat("x", 101)),
			calls: []string{"POST /repos/acme/shop/issues/7/labels"},
		},
		{
			name:  "untracked action",
			event: issuesEvent("milestoned", "", "bug"),
			calls: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			client := newTestClient(t, rec)
			h := NewIssueHandler(config.Default().Bot)

			require.NoError(t, h.Sync(context.Background(), client, tt.event))
			assert.Equal(t, tt.calls, rec.Calls())
		})
	}
}

func TestIssueHandler_SkipsClosed(t *testing.T) {
	rec := &recorder{}
	client := newTestClient(t, rec)
	event := issuesEvent("labeled", "", "bug")
	event.Issue.State = github.String("closed")

	require.NoError(t, NewIssueHandler(config.Default().Bot).Sync(context.Background(), client, event))
	assert.Empty(t, rec.Calls())
}

func TestIssueHandler_InvalidRepository(t *testing.T) {
	client := newTestClient(t, &recorder{})
	event := issuesEvent("opened", "", "bug")
	event.Repo.FullName = github.String("shop")

	err := NewIssueHandler(config.Default().Bot).Sync(context.Background(), client, event)
	assert.Error(t, err)
}

func TestInstallationHandler_Sync(t *testing.T) {
	rec := &recorder{missing: map[string]bool{
		"/repos/acme/shop/labels/devflow-ready": true,
		"/repos/acme/shop/labels/blocked":       true,
	}}
	client := newTestClient(t, rec)
	h := NewInstallationHandler(config.Default().Bot)

	event := &github.InstallationRepositoriesEvent{
		Action: github.String("added"),
		RepositoriesAdded: []*github.Repository{
			{FullName: github.String("acme/shop")},
			{FullName: github.String("not-a-repo")},
		},
	}
	require.NoError(t, h.Sync(context.Background(), client, event))

	var posts []string
	for _, call := range rec.Calls() {
		if strings.HasPrefix(call, "POST ") {
			posts = append(posts, call)
		}
	}
	assert.Len(t, rec.Calls(), 7+2)
	assert.Equal(t, []string{"POST /repos/acme/shop/labels", "POST /repos/acme/shop/labels"}, posts)
}

func TestInstallationHandler_Removed(t *testing.T) {
	rec := &recorder{}
	client := newTestClient(t, rec)

	event := &github.InstallationRepositoriesEvent{
		Action:              github.String("removed"),
		RepositoriesRemoved: []*github.Repository{{FullName: github.String("acme/shop")}},
	}
	require.NoError(t, NewInstallationHandler(config.Default().Bot).Sync(context.Background(), client, event))
	assert.Empty(t, rec.Calls())
}
