package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/escomp-ci/pr-issue-closer/internal/closer"
	githubplatform "github.com/escomp-ci/pr-issue-closer/internal/platform/github"
	"github.com/escomp-ci/pr-issue-closer/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run in polling mode",
	Long: `Continuously polls the configured repositories for newly merged pull
requests and closes the issues referenced by each one. Only GitHub
repositories are supported in this mode.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&cfg.WatchConfigPath, "config", "watch.yaml", "Path to the watch configuration file")
	watchCmd.Flags().StringVar(&cfg.AccessToken, "access_token", "", "API token with write access to the watched repositories' issues")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	if cfg.Provider != "github" {
		return fmt.Errorf("watch mode supports the github provider only, got '%s'", cfg.Provider)
	}
	if cfg.AccessToken == "" {
		return fmt.Errorf("no access token provided via --access_token or environment")
	}

	watchConfig, err := watch.LoadConfig(cfg.WatchConfigPath)
	if err != nil {
		return err
	}
	checkInterval := time.Duration(watchConfig.Interval)

	log.Printf("Watching %d repositories, checking every %s", len(watchConfig.Repos), checkInterval)

	githubClient := createGithubClient(ctx, cfg.AccessToken)

	tel, err := createTelemetryProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Printf("Failed to shut down telemetry: %v", err)
		}
	}()

	generator := watch.NewGenerator(githubClient, watchConfig.Repos, checkInterval)
	for item := range generator.Generate(ctx) {
		if item.Err != nil {
			log.Printf("Watch error: %v", item.Err)
			continue
		}

		pr := item.PR
		p := githubplatform.New(ctx, cfg.AccessToken, pr.Owner, pr.Repo)
		c := closer.New(p, tel)

		report, err := c.Close(ctx, pr.Number)
		if err != nil {
			log.Printf("Failed to process PR #%d in %s/%s: %v", pr.Number, pr.Owner, pr.Repo, err)
			continue
		}
		log.Print(report.Summary())
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
