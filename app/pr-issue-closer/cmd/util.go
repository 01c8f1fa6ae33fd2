package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/google/go-github/v72/github"
	"golang.org/x/oauth2"

	"github.com/escomp-ci/pr-issue-closer/internal/platform"
	githubplatform "github.com/escomp-ci/pr-issue-closer/internal/platform/github"
	gitlabplatform "github.com/escomp-ci/pr-issue-closer/internal/platform/gitlab"
	"github.com/escomp-ci/pr-issue-closer/internal/telemetry"
	"github.com/escomp-ci/pr-issue-closer/internal/transport"
)

func setupContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		log.Println("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		log.Fatal("Forcing shutdown")
	}()

	return ctx
}

func createGithubClient(ctx context.Context, token string) *github.Client {
	tokenSource := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := oauth2.NewClient(ctx, tokenSource)
	httpClient.Transport = transport.WithRateLimiting(httpClient.Transport)
	return github.NewClient(httpClient)
}

func createPlatform(ctx context.Context) (platform.IssueCloser, error) {
	switch cfg.Provider {
	case "github":
		parts := strings.Split(cfg.QualifiedRepoName, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid repository format '%s', expected owner/repo", cfg.QualifiedRepoName)
		}
		return githubplatform.New(ctx, cfg.AccessToken, parts[0], parts[1]), nil
	case "gitlab":
		p, err := gitlabplatform.New(cfg.AccessToken, cfg.QualifiedRepoName)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider '%s'", cfg.Provider)
	}
}

func createTelemetryProvider(ctx context.Context) (*telemetry.Provider, error) {
	telemetryConfig := telemetry.Config{
		Enabled:  cfg.TelemetryEndpoint != "",
		Endpoint: cfg.TelemetryEndpoint,
		Version:  version,
	}
	return telemetry.NewProvider(ctx, telemetryConfig)
}
