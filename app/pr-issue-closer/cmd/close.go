package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/escomp-ci/pr-issue-closer/internal/closer"
)

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close issues referenced by a single merged pull request",
	Long: `Closes every issue referenced for closure in the given pull request's
description. This mode is designed to be triggered by a CI job on merge
events.

The run exits 0 when it completes, including when individual close attempts
failed and were logged. It exits non-zero on total failure: credential
rejected, pull request not merged, or rate limit retries exhausted.`,
	RunE: runClose,
}

func init() {
	closeCmd.Flags().StringVar(&cfg.AccessToken, "access_token", "", "API token with write access to the repository's issues")
	closeCmd.Flags().IntVar(&cfg.PullNumber, "pull_num", 0, "Pull request number to process")
	closeCmd.Flags().StringVar(&cfg.QualifiedRepoName, "repo", "", "Repository name in the format 'owner/repo'")

	_ = closeCmd.MarkFlagRequired("pull_num")
	_ = closeCmd.MarkFlagRequired("repo")

	rootCmd.AddCommand(closeCmd)
}

func runClose(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	if cfg.PullNumber <= 0 {
		return fmt.Errorf("invalid pull request number %d", cfg.PullNumber)
	}
	if cfg.AccessToken == "" {
		return fmt.Errorf("no access token provided via --access_token or environment")
	}

	log.Printf("Processing pull request #%d in %s", cfg.PullNumber, cfg.QualifiedRepoName)

	p, err := createPlatform(ctx)
	if err != nil {
		return err
	}

	tel, err := createTelemetryProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(ctx); err != nil {
			log.Printf("Failed to shut down telemetry: %v", err)
		}
	}()

	c := closer.New(p, tel)
	report, err := c.Close(ctx, cfg.PullNumber)
	if err != nil {
		return fmt.Errorf("close run failed: %w", err)
	}

	fmt.Println(report.Summary())
	return nil
}
