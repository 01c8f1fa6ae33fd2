package cmd

var cfg = Config{}

// Config holds settings shared across commands, populated from flags with
// environment fallbacks applied by the root command.
type Config struct {
	// Common config
	AccessToken       string
	Provider          string
	TelemetryEndpoint string

	// Close options
	QualifiedRepoName string
	PullNumber        int

	// Watch options
	WatchConfigPath string
}
