package watch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-github/v72/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *github.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := github.NewClient(nil)
	var err error
	client.BaseURL, err = client.BaseURL.Parse(server.URL + "/")
	require.NoError(t, err)
	return client
}

func TestGenerate_YieldsMergedPRs(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/issues", r.URL.Path)
		query := r.URL.Query().Get("q")
		assert.Contains(t, query, "repo:escomp-ci/reader")
		assert.Contains(t, query, "is:pr is:merged")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"total_count": 2,
			"items": []map[string]any{
				{"number": 7},
				{"number": 9},
			},
		})
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	generator := NewGenerator(client, []Repo{{Owner: "escomp-ci", Repo: "reader"}}, time.Minute)
	out := generator.Generate(ctx)

	first := <-out
	require.NoError(t, first.Err)
	assert.Equal(t, MergedPR{Owner: "escomp-ci", Repo: "reader", Number: 7}, first.PR)

	second := <-out
	require.NoError(t, second.Err)
	assert.Equal(t, MergedPR{Owner: "escomp-ci", Repo: "reader", Number: 9}, second.PR)

	cancel()
	for range out {
		// Drain until the generator closes the channel
	}
}

func TestGenerate_ReportsSearchErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	generator := NewGenerator(client, []Repo{{Owner: "escomp-ci", Repo: "reader"}}, time.Minute)
	out := generator.Generate(ctx)

	item := <-out
	require.Error(t, item.Err)
	assert.Contains(t, item.Err.Error(), "escomp-ci/reader")

	cancel()
	for range out {
	}
}
