package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gogitlab "github.com/xanzy/go-gitlab"

	"github.com/escomp-ci/pr-issue-closer/internal/platform"
)

func newTestPlatform(t *testing.T, handler http.Handler) *Platform {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	p, err := New("test-token", "owner/repo", WithBaseURL(server.URL))
	require.NoError(t, err)
	return p
}

func TestFetchPullRequest(t *testing.T) {
	p := newTestPlatform(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "merge_requests/42")
		assert.Equal(t, "test-token", r.Header.Get("PRIVATE-TOKEN"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"iid":         42,
			"title":       "Rework the reader",
			"description": "Closes #3",
			"state":       "merged",
			"web_url":     "https://example.test/owner/repo/-/merge_requests/42",
		})
	}))

	pr, err := p.FetchPullRequest(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "Closes #3", pr.Body)
	assert.True(t, pr.Merged)
}

func TestFetchPullRequest_OpenIsNotMerged(t *testing.T) {
	p := newTestPlatform(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"iid":   42,
			"state": "opened",
		})
	}))

	pr, err := p.FetchPullRequest(context.Background(), 42)

	require.NoError(t, err)
	assert.False(t, pr.Merged)
}

func TestCloseIssue(t *testing.T) {
	var updated map[string]any
	p := newTestPlatform(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/issues/3"), "unexpected path %s", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&updated))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 3, "iid": 3, "state": "closed"})
	}))

	err := p.CloseIssue(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, "close", updated["state_event"])
}

func TestCloseIssue_NotFound(t *testing.T) {
	p := newTestPlatform(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "404 Not Found"}`)
	}))

	err := p.CloseIssue(context.Background(), 3)

	require.ErrorIs(t, err, platform.ErrNotFound)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       error
	}{
		{name: "unauthorized", statusCode: http.StatusUnauthorized, want: platform.ErrUnauthorized},
		{name: "forbidden", statusCode: http.StatusForbidden, want: platform.ErrUnauthorized},
		{name: "not found", statusCode: http.StatusNotFound, want: platform.ErrNotFound},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, want: platform.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &gogitlab.Response{Response: &http.Response{StatusCode: tt.statusCode}}
			err := mapError(resp, fmt.Errorf("api failure"))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMapError_NoResponse(t *testing.T) {
	original := fmt.Errorf("connection refused")
	assert.Equal(t, original, mapError(nil, original))
}
