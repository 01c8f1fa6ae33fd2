package cmd

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/escomp-ci/pr-issue-closer/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "pr-issue-closer",
	Short: "Closes issues referenced by merged pull requests",
	Long: `pr-issue-closer reads a merged pull request's description, extracts
closure references such as "Closes #123" or "Fixes #45", and closes each
referenced issue via the hosting platform's API.`,
	PersistentPreRun: loadRootConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(_ *cobra.Command, _ []string) {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Flags win over the environment
	env := config.Load()
	if cfg.AccessToken == "" {
		if token, err := env.Token(cfg.Provider); err == nil {
			cfg.AccessToken = token
		}
	}
	if cfg.TelemetryEndpoint == "" {
		cfg.TelemetryEndpoint = env.TelemetryEndpoint
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfg.Provider, "provider", "github", "Hosting platform: github or gitlab")
	rootCmd.PersistentFlags().StringVar(&cfg.TelemetryEndpoint, "telemetry-endpoint", "", "OTLP/HTTP endpoint for trace export; telemetry is disabled when empty")
}
