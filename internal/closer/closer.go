// Package closer implements the close-referenced-issues operation: given a
// merged pull request, close every issue its description marks for closure.
package closer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/escomp-ci/pr-issue-closer/internal/platform"
	"github.com/escomp-ci/pr-issue-closer/internal/refs"
	"github.com/escomp-ci/pr-issue-closer/internal/telemetry"
)

// ErrNotMerged indicates the pull request has not been merged. Closing its
// linked issues would be premature, so the whole run is refused.
var ErrNotMerged = errors.New("pull request is not merged")

// Closer closes the issues referenced for closure by merged pull requests.
type Closer struct {
	platform  platform.IssueCloser
	telemetry *telemetry.Provider

	maxAttempts    int
	initialBackoff time.Duration
}

// Option configures a Closer.
type Option func(*Closer)

// WithRetryPolicy overrides the rate-limit retry policy.
func WithRetryPolicy(maxAttempts int, initialBackoff time.Duration) Option {
	return func(c *Closer) {
		c.maxAttempts = maxAttempts
		c.initialBackoff = initialBackoff
	}
}

// New creates a Closer backed by the given platform. tel may be nil.
func New(p platform.IssueCloser, tel *telemetry.Provider, opts ...Option) *Closer {
	c := &Closer{
		platform:       p,
		telemetry:      tel,
		maxAttempts:    3,
		initialBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Close fetches the pull request, extracts closure references from its
// description, and closes each referenced issue exactly once. Per-reference
// failures are recorded in the report and do not stop the run; credential
// rejection, an unmerged pull request, and rate-limit exhaustion abort it.
func (c *Closer) Close(ctx context.Context, prNumber int) (Report, error) {
	report := Report{
		RunID:      telemetry.NewRunID(),
		PullNumber: prNumber,
	}

	ctx, endRun := c.telemetry.StartRun(ctx, report.RunID, prNumber)
	defer endRun()

	pr, err := c.platform.FetchPullRequest(ctx, prNumber)
	if err != nil {
		return report, err
	}
	if !pr.Merged {
		return report, fmt.Errorf("refusing to process pull request #%d: %w", prNumber, ErrNotMerged)
	}

	numbers := refs.Scan(pr.Body)
	if len(numbers) == 0 {
		log.Printf("[closer] No closure references found in PR #%d", prNumber)
		return report, nil
	}
	log.Printf("[closer] PR #%d references %d issue(s) for closure", prNumber, len(numbers))

	for _, number := range numbers {
		err := c.closeWithRetry(ctx, number)
		c.telemetry.RecordClose(ctx, number, err)

		switch {
		case err == nil:
			log.Printf("[closer] Closed #%d", number)
			report.Closed = append(report.Closed, number)
		case errors.Is(err, platform.ErrUnauthorized), errors.Is(err, platform.ErrRateLimited):
			return report, err
		case errors.Is(err, platform.ErrNotFound):
			log.Printf("[closer] Skipping #%d: not found", number)
			report.Failed = append(report.Failed, FailedClose{Number: number, Err: err})
		default:
			log.Printf("[closer] Failed to close #%d: %v", number, err)
			report.Failed = append(report.Failed, FailedClose{Number: number, Err: err})
		}
	}

	return report, nil
}

// closeWithRetry retries rate-limited close attempts with exponential
// backoff. Other failures are returned immediately.
func (c *Closer) closeWithRetry(ctx context.Context, number int) error {
	delay := c.initialBackoff

	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err = c.platform.CloseIssue(ctx, number)
		if err == nil || !errors.Is(err, platform.ErrRateLimited) {
			return err
		}
		if attempt == c.maxAttempts {
			break
		}

		log.Printf("[closer] Rate limited closing #%d, retrying in %s (attempt %d/%d)", number, delay, attempt, c.maxAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("rate limit retries exhausted for #%d: %w", number, err)
}
