// Package platform abstracts the hosting platform operations the closer
// depends on: fetching a pull request and closing issues.
package platform

import (
	"context"
	"errors"
)

// PullRequest is a read-only snapshot of a pull request at the time of the
// triggering event.
type PullRequest struct {
	Number int

	Title  string
	Body   string
	URL    string
	Merged bool
}

var (
	// ErrUnauthorized indicates the credential was rejected by the platform.
	// Fatal for the whole run.
	ErrUnauthorized = errors.New("credential rejected by platform")

	// ErrNotFound indicates a referenced item does not exist. Non-fatal,
	// scoped to a single reference.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates the platform throttled the request. Retried
	// with backoff before escalating.
	ErrRateLimited = errors.New("rate limited")
)

// IssueCloser is the narrow capability set the core operation needs from a
// hosting platform. Implementations map their platform's failures onto the
// sentinel errors above so callers can classify them with errors.Is.
type IssueCloser interface {
	FetchPullRequest(ctx context.Context, number int) (*PullRequest, error)
	CloseIssue(ctx context.Context, number int) error
}
