package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labelServer fakes the label endpoints of one repository.
type labelServer struct {
	mu       sync.Mutex
	existing map[string]bool
	created  []string
	failOn   string
}

func (s *labelServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const prefix = "/repos/acme/shop/labels"
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, prefix+"/"):
		name := strings.TrimPrefix(r.URL.Path, prefix+"/")
		if !s.existing[name] {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"name": name})
	case r.Method == http.MethodPost && r.URL.Path == prefix:
		var label github.Label
		if err := json.NewDecoder(r.Body).Decode(&label); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if label.GetName() == s.failOn {
			http.Error(w, `{"message":"Validation Failed"}`, http.StatusUnprocessableEntity)
			return
		}
		s.created = append(s.created, label.GetName())
		s.existing[label.GetName()] = true
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(label)
	default:
		http.NotFound(w, r)
	}
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

func TestReadinessLabels(t *testing.T) {
	labels := ReadinessLabels("devflow-ready", "0e8a16")

	var names []string
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	assert.Equal(t, []string{
		"ai-agent-ready", "complexity-low", "complexity-medium", "complexity-high",
		"blocked", "needs discussion", "devflow-ready",
	}, names)

	// the shared vocabulary is not modified
	assert.Len(t, readinessLabels, 6)
}

func TestEnsureLabels(t *testing.T) {
	srv := &labelServer{existing: map[string]bool{"blocked": true}}
	client := newTestClient(t, srv)

	err := EnsureLabels(context.Background(), client, "acme", "shop", ReadinessLabels("devflow-ready", "0e8a16"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ai-agent-ready", "complexity-low", "complexity-medium", "complexity-high",
		"needs discussion", "devflow-ready",
	}, srv.created)

	// second pass finds everything
	srv.created = nil
	require.NoError(t, EnsureLabels(context.Background(), client, "acme", "shop", ReadinessLabels("devflow-ready", "0e8a16")))
	assert.Empty(t, srv.created)
}

func TestEnsureLabels_ContinuesAfterFailure(t *testing.T) {
	srv := &labelServer{existing: map[string]bool{}, failOn: "complexity-low"}
	client := newTestClient(t, srv)

	err := EnsureLabels(context.Background(), client, "acme", "shop", readinessLabels)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "complexity-low")
	assert.Len(t, srv.created, 5)
}

func TestIssueLabels(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/shop/issues/7/labels", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		var names []string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&names))
		calls = append(calls, r.Method+" "+strings.Join(names, ","))
		_, _ = w.Write([]byte(`[{"name":"devflow-ready"}]`))
	})
	mux.HandleFunc("/repos/acme/shop/issues/7/labels/devflow-ready", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, r.Method+" devflow-ready")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/repos/acme/shop/issues/8/labels/devflow-ready", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Label does not exist"}`, http.StatusNotFound)
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	require.NoError(t, AddIssueLabel(ctx, client, "acme", "shop", 7, "devflow-ready"))
	require.NoError(t, RemoveIssueLabel(ctx, client, "acme", "shop", 7, "devflow-ready"))
	require.NoError(t, RemoveIssueLabel(ctx, client, "acme", "shop", 8, "devflow-ready"))

	assert.Equal(t, []string{"POST devflow-ready", "DELETE devflow-ready"}, calls)
}

func TestIssueLabels_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))

	err := AddIssueLabel(context.Background(), client, "acme", "shop", 7, "devflow-ready")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to add label "devflow-ready" to #7`)

	err = RemoveIssueLabel(context.Background(), client, "acme", "shop", 7, "devflow-ready")
	require.Error(t, err)
}
