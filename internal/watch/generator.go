// Package watch polls for recently merged pull requests and feeds them to
// the closer.
package watch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/go-github/v72/github"
)

// MergedPR identifies a merged pull request discovered by the watcher.
type MergedPR struct {
	Owner  string
	Repo   string
	Number int
}

type PROrError struct {
	PR  MergedPR
	Err error
}

// Generator periodically searches the configured repositories for pull
// requests merged since the previous check.
type Generator struct {
	checkInterval time.Duration
	githubClient  *github.Client
	repos         []Repo
}

func NewGenerator(githubClient *github.Client, repos []Repo, checkInterval time.Duration) *Generator {
	return &Generator{
		checkInterval: checkInterval,
		githubClient:  githubClient,
		repos:         repos,
	}
}

// Generate yields merged pull requests as they are discovered. The channel
// is closed when ctx is cancelled.
func (g *Generator) Generate(ctx context.Context) chan PROrError {
	out := make(chan PROrError)

	go func() {
		defer close(out)

		ticker := time.Tick(g.checkInterval)
		since := time.Now().Add(-g.checkInterval)
		for {
			checkStart := time.Now()
			for _, repo := range g.repos {
				prs, err := g.searchMerged(ctx, repo, since)
				if err != nil {
					select {
					case out <- PROrError{Err: fmt.Errorf("failed to search %s/%s: %w", repo.Owner, repo.Repo, err)}:
					case <-ctx.Done():
						return
					}
					continue
				}
				if len(prs) == 0 {
					log.Printf("[watch] No newly merged PRs in %s/%s", repo.Owner, repo.Repo)
				}

				for _, pr := range prs {
					log.Printf("[watch] Yielding merged PR #%d in %s/%s", pr.Number, pr.Owner, pr.Repo)
					select {
					case out <- PROrError{PR: pr}:
					case <-ctx.Done():
						return
					}
				}
			}
			since = checkStart

			log.Printf("[watch] Waiting for next check (up to %v)", g.checkInterval)
			select {
			case <-ticker:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (g *Generator) searchMerged(ctx context.Context, repo Repo, since time.Time) ([]MergedPR, error) {
	query := fmt.Sprintf("repo:%s/%s is:pr is:merged merged:>=%s", repo.Owner, repo.Repo, since.UTC().Format(time.RFC3339))
	result, _, err := g.githubClient.Search.Issues(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("error searching pull requests: %w", err)
	}

	// Convert search results into simpler structures
	prs := []MergedPR{}
	for _, issue := range result.Issues {
		if issue == nil || issue.Number == nil {
			log.Print("[watch] Warning: unexpected nil, skipping result")
			continue
		}
		prs = append(prs, MergedPR{
			Owner:  repo.Owner,
			Repo:   repo.Repo,
			Number: *issue.Number,
		})
	}
	return prs, nil
}
