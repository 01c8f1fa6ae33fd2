// Package gitlab implements the platform abstraction on top of the GitLab
// API. GitLab merge requests honor the same closing-keyword convention as
// GitHub pull requests.
package gitlab

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xanzy/go-gitlab"

	"github.com/escomp-ci/pr-issue-closer/internal/platform"
)

// Platform talks to a single GitLab project.
type Platform struct {
	client  *gitlab.Client
	token   string
	project string // namespace/project path, or a numeric project ID
}

// Option configures the GitLab platform.
type Option func(*Platform)

// WithBaseURL points the client at a custom API endpoint (for testing).
func WithBaseURL(baseURL string) Option {
	return func(p *Platform) {
		p.client, _ = gitlab.NewClient(p.token, gitlab.WithBaseURL(baseURL+"/api/v4"))
	}
}

// New creates a GitLab-backed platform for the given project path,
// authenticated with token.
func New(token string, project string, opts ...Option) (*Platform, error) {
	client, err := gitlab.NewClient(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create gitlab client: %w", err)
	}

	p := &Platform{
		client:  client,
		token:   token,
		project: project,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// FetchPullRequest fetches the merge request with the given IID.
func (p *Platform) FetchPullRequest(ctx context.Context, number int) (*platform.PullRequest, error) {
	mr, resp, err := p.client.MergeRequests.GetMergeRequest(p.project, number, nil, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch merge request !%d: %w", number, mapError(resp, err))
	}

	return &platform.PullRequest{
		Number: mr.IID,
		Title:  mr.Title,
		Body:   mr.Description,
		URL:    mr.WebURL,
		Merged: mr.State == "merged",
	}, nil
}

// CloseIssue closes the issue with the given IID. Closing an already-closed
// issue succeeds without changing anything.
func (p *Platform) CloseIssue(ctx context.Context, number int) error {
	opts := &gitlab.UpdateIssueOptions{
		StateEvent: gitlab.Ptr("close"),
	}
	_, resp, err := p.client.Issues.UpdateIssue(p.project, number, opts, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to close #%d: %w", number, mapError(resp, err))
	}
	return nil
}

// mapError converts go-gitlab failures into the platform sentinel taxonomy.
func mapError(resp *gitlab.Response, err error) error {
	if resp == nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %v", platform.ErrUnauthorized, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", platform.ErrNotFound, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", platform.ErrRateLimited, err)
	}
	return err
}
