// Package config provides environment-backed configuration for
// pr-issue-closer.
package config

import (
	"fmt"
	"os"
)

// Config holds settings sourced from the environment. Command-line flags
// take precedence over these values.
type Config struct {
	GitHubToken       string
	GitLabToken       string
	TelemetryEndpoint string
}

// Load loads configuration from environment variables
func Load() Config {
	return Config{
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		GitLabToken:       os.Getenv("GITLAB_TOKEN"),
		TelemetryEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

// Token returns the credential for the given provider, or an error when the
// environment supplies none.
func (c Config) Token(provider string) (string, error) {
	switch provider {
	case "github":
		if c.GitHubToken == "" {
			return "", fmt.Errorf("missing required environment variable: GITHUB_TOKEN")
		}
		return c.GitHubToken, nil
	case "gitlab":
		if c.GitLabToken == "" {
			return "", fmt.Errorf("missing required environment variable: GITLAB_TOKEN")
		}
		return c.GitLabToken, nil
	default:
		return "", fmt.Errorf("unknown provider '%s'", provider)
	}
}
