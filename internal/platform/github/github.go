// Package github implements the platform abstraction on top of the GitHub
// API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v72/github"
	"golang.org/x/oauth2"

	"github.com/escomp-ci/pr-issue-closer/internal/platform"
	"github.com/escomp-ci/pr-issue-closer/internal/transport"
)

// Platform talks to a single GitHub repository.
type Platform struct {
	client *github.Client
	owner  string
	repo   string
}

// Option configures the GitHub platform.
type Option func(*Platform)

// WithBaseURL points the client at a custom API endpoint (for testing).
func WithBaseURL(rawURL string) Option {
	return func(p *Platform) {
		p.client.BaseURL, _ = p.client.BaseURL.Parse(rawURL + "/")
	}
}

// New creates a GitHub-backed platform for owner/repo, authenticated with
// token. The token is held by the underlying HTTP client and never logged.
func New(ctx context.Context, token string, owner string, repo string, opts ...Option) *Platform {
	tokenSource := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := oauth2.NewClient(ctx, tokenSource)
	httpClient.Transport = transport.WithRateLimiting(httpClient.Transport)

	p := &Platform{
		client: github.NewClient(httpClient),
		owner:  owner,
		repo:   repo,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Platform) FetchPullRequest(ctx context.Context, number int) (*platform.PullRequest, error) {
	pr, _, err := p.client.PullRequests.Get(ctx, p.owner, p.repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull request #%d: %w", number, mapError(err))
	}

	return &platform.PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		Body:   pr.GetBody(),
		URL:    pr.GetHTMLURL(),
		Merged: pr.GetMerged(),
	}, nil
}

// CloseIssue closes the issue or pull request with the given number. GitHub
// treats pull requests as issues, so one call covers both. Closing an
// already-closed issue succeeds without changing anything.
func (p *Platform) CloseIssue(ctx context.Context, number int) error {
	req := &github.IssueRequest{
		State:       github.Ptr("closed"),
		StateReason: github.Ptr("completed"),
	}
	_, _, err := p.client.Issues.Edit(ctx, p.owner, p.repo, number, req)
	if err != nil {
		return fmt.Errorf("failed to close #%d: %w", number, mapError(err))
	}
	return nil
}

// mapError converts go-github errors into the platform sentinel taxonomy.
func mapError(err error) error {
	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return fmt.Errorf("%w: %v", platform.ErrRateLimited, err)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %v", platform.ErrRateLimited, err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", platform.ErrUnauthorized, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", platform.ErrNotFound, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", platform.ErrRateLimited, err)
		}
	}

	return err
}
